package algo

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/dsp"
)

// ModeSet is the set of intra modes a strategy may evaluate, one bit per
// mode. The zero value is empty.
type ModeSet uint64

const allModesMask = ModeSet(1)<<dsp.NumIntraModes - 1

// AllModes returns a set with all 35 modes enabled.
func AllModes() ModeSet { return allModesMask }

// HVPlusModes returns planar, DC, horizontal and vertical.
func HVPlusModes() ModeSet {
	var s ModeSet
	for _, m := range []int{dsp.ModePlanar, dsp.ModeDC, dsp.ModeHorizontal, dsp.ModeVertical} {
		s.Enable(m, true)
	}
	return s
}

// DCModes returns a set holding only DC.
func DCModes() ModeSet { return 1 << dsp.ModeDC }

// PlanarModes returns a set holding only planar.
func PlanarModes() ModeSet { return 1 << dsp.ModePlanar }

// DisableAll clears the set.
func (s *ModeSet) DisableAll() { *s = 0 }

// Enable adds or, with flag false, removes mode.
func (s *ModeSet) Enable(mode int, flag bool) {
	assert.That(mode >= 0 && mode < dsp.NumIntraModes, "invalid intra mode %d", mode)
	if flag {
		*s |= 1 << mode
	} else {
		*s &^= 1 << mode
	}
}

// Has reports whether mode is enabled.
func (s ModeSet) Has(mode int) bool {
	return mode >= 0 && mode < dsp.NumIntraModes && s&(1<<mode) != 0
}

// Count returns the number of enabled modes.
func (s ModeSet) Count() int { return bits.OnesCount64(uint64(s & allModesMask)) }

// Modes returns the enabled modes in ascending order.
func (s ModeSet) Modes() []int {
	out := make([]int, 0, s.Count())
	for m := 0; m < dsp.NumIntraModes; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s ModeSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range s.Modes() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", m)
	}
	b.WriteByte('}')
	return b.String()
}

// Subset names a preset ModeSet.
type Subset int

const (
	SubsetAll Subset = iota
	SubsetHVPlus
	SubsetDC
	SubsetPlanar
)

var subsetNames = [...]string{"all", "HV+", "DC", "planar"}

func (s Subset) String() string {
	if s < 0 || int(s) >= len(subsetNames) {
		return fmt.Sprintf("Subset(%d)", int(s))
	}
	return subsetNames[s]
}

// Modes returns the preset's mode set.
func (s Subset) Modes() ModeSet {
	switch s {
	case SubsetHVPlus:
		return HVPlusModes()
	case SubsetDC:
		return DCModes()
	case SubsetPlanar:
		return PlanarModes()
	}
	return AllModes()
}

// SubsetNames lists the accepted preset names.
func SubsetNames() []string { return subsetNames[:] }

// ParseSubset returns the preset named s.
func ParseSubset(s string) (Subset, error) {
	for i, n := range subsetNames {
		if strings.EqualFold(s, n) {
			return Subset(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode subset %q", s)
}
