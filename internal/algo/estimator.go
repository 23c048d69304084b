package algo

import (
	"fmt"

	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/pool"
)

// EstimatorMethod selects the cheap cost used to screen candidate modes.
type EstimatorMethod int

const (
	EstimatorSSD EstimatorMethod = iota
	EstimatorSAD
	EstimatorSATDDCT
	EstimatorSATDHadamard
)

var estimatorNames = [...]string{"ssd", "sad", "satd-dct", "satd"}

func (m EstimatorMethod) String() string {
	if m < 0 || int(m) >= len(estimatorNames) {
		return fmt.Sprintf("EstimatorMethod(%d)", int(m))
	}
	return estimatorNames[m]
}

// EstimatorNames lists the accepted estimator names.
func EstimatorNames() []string { return estimatorNames[:] }

// ParseEstimator returns the method named s.
func ParseEstimator(s string) (EstimatorMethod, error) {
	for i, n := range estimatorNames {
		if s == n {
			return EstimatorMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown estimator %q", s)
}

// Estimate returns the cheap cost of the packed n×n prediction pred against
// the source block src. It has no side effects.
func Estimate(method EstimatorMethod, pred, src []byte, srcStride, n int) int64 {
	switch method {
	case EstimatorSSD:
		return dsp.SSD(src, srcStride, pred, n, n, n)
	case EstimatorSAD:
		return dsp.SAD(src, srcStride, pred, n, n, n)
	}
	res := pool.Coeffs(n * n)
	defer pool.PutCoeffs(res)
	dsp.Diff(res, src, srcStride, pred, n, n)
	if method == EstimatorSATDDCT {
		return dsp.DCTSATD(res, n)
	}
	return dsp.HadamardSATD(res, n)
}
