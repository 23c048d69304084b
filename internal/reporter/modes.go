package reporter

import (
	"fmt"
	"sort"
)

// ModeName returns a readable name for an intra mode.
func ModeName(mode int) string {
	switch mode {
	case 0:
		return "planar"
	case 1:
		return "DC"
	case 10:
		return "horizontal"
	case 26:
		return "vertical"
	}
	return fmt.Sprintf("angular %d", mode)
}

// TopModes returns the n most used modes of hist, most used first. Modes
// never used are left out.
func TopModes(hist []int, n int) []ModeCount {
	var out []ModeCount
	for m, c := range hist {
		if c > 0 {
			out = append(out, ModeCount{Mode: m, Name: ModeName(m), Count: c})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
