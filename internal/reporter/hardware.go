package reporter

import (
	"os"
	"runtime"

	"github.com/deepteams/intrapred/internal/dsp"
)

// Hardware collects the host summary.
func Hardware() HardwareSummary {
	hostname, _ := os.Hostname()
	f := dsp.HostFeatures()
	var simd []string
	if f.SSE41 {
		simd = append(simd, "sse4.1")
	}
	if f.AVX2 {
		simd = append(simd, "avx2")
	}
	if f.NEON {
		simd = append(simd, "neon")
	}
	return HardwareSummary{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		SIMD:     simd,
	}
}
