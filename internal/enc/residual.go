package enc

import (
	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/cabac"
)

// ctxIdxMap gives the sig_coeff_flag context of each 4x4 TB position.
var ctxIdxMap = [16]uint8{0, 1, 4, 5, 2, 3, 4, 5, 6, 6, 8, 8, 7, 7, 8, 8}

var lastGroupIdx = [32]uint8{
	0, 1, 2, 3, 4, 4, 5, 5, 6, 6, 6, 6, 7, 7, 7, 7,
	8, 8, 8, 8, 8, 8, 8, 8, 9, 9, 9, 9, 9, 9, 9, 9,
}

var lastMinInGroup = [10]uint8{0, 1, 2, 3, 4, 6, 8, 12, 16, 24}

// coefRemainBinReduction is the prefix length at which
// coeff_abs_level_remaining switches from Rice to Exp-Golomb.
const coefRemainBinReduction = 3

// encodeResidual codes residual_coding for the quantized levels of a
// (1<<log2)² luma TB. At least one level must be non-zero.
func encodeResidual(w cabac.Writer, levels []int16, log2, scan int) {
	n := 1 << log2
	sbLog2 := log2 - 2
	sbW := 1 << sbLog2
	sbScan := scanOrder[sbLog2][scan]
	cScan := scanOrder[2][scan]

	at := func(s, c pos) int16 {
		return levels[(int(s.y)<<2+int(c.y))*n+int(s.x)<<2+int(c.x)]
	}

	lastSb, lastPos := -1, -1
	for i := len(sbScan) - 1; i >= 0 && lastSb < 0; i-- {
		for p := 15; p >= 0; p-- {
			if at(sbScan[i], cScan[p]) != 0 {
				lastSb, lastPos = i, p
				break
			}
		}
	}
	assert.That(lastSb >= 0, "residual coding of an all-zero block")

	lastX := int(sbScan[lastSb].x)<<2 + int(cScan[lastPos].x)
	lastY := int(sbScan[lastSb].y)<<2 + int(cScan[lastPos].y)
	if scan == scanVer {
		lastX, lastY = lastY, lastX
	}
	encodeLastPosition(w, lastX, lastY, log2)

	var csbf [64]bool
	greater1Ctx := 1
	for i := lastSb; i >= 0; i-- {
		s := sbScan[i]
		xS, yS := int(s.x), int(s.y)

		var abs [16]int32
		var neg [16]bool
		nonZero := false
		for p := 0; p < 16; p++ {
			v := int32(at(s, cScan[p]))
			if v < 0 {
				neg[p] = true
				v = -v
			}
			abs[p] = v
			nonZero = nonZero || v != 0
		}

		right := xS+1 < sbW && csbf[yS*sbW+xS+1]
		below := yS+1 < sbW && csbf[(yS+1)*sbW+xS]

		inferSbDc := false
		if i < lastSb && i > 0 {
			ctxInc := 0
			if right || below {
				ctxInc = 1
			}
			w.EncodeBin(b2i(nonZero), cabac.CtxCodedSubBlock+ctxInc)
			csbf[yS*sbW+xS] = nonZero
			inferSbDc = true
		} else {
			csbf[yS*sbW+xS] = true
		}
		if !csbf[yS*sbW+xS] {
			continue
		}

		prevCsbf := b2i(right) | b2i(below)<<1
		start := 15
		if i == lastSb {
			start = lastPos - 1
		}
		for p := start; p >= 0; p-- {
			if p == 0 && inferSbDc {
				assert.That(abs[0] != 0, "inferred DC of sub-block %d is zero", i)
				break
			}
			cp := cScan[p]
			sig := abs[p] != 0
			w.EncodeBin(b2i(sig), cabac.CtxSig+sigCtx(log2, scan, xS, yS, int(cp.x), int(cp.y), prevCsbf))
			if sig {
				inferSbDc = false
			}
		}

		// Significant positions in reverse scan order.
		var list [16]int
		count := 0
		first := 15
		if i == lastSb {
			first = lastPos
		}
		for p := first; p >= 0; p-- {
			if abs[p] != 0 {
				list[count] = p
				count++
			}
		}
		if count == 0 {
			continue
		}

		ctxSet := 0
		if i > 0 {
			ctxSet = 2
		}
		if greater1Ctx == 0 {
			ctxSet++
		}
		c1 := 1
		firstG1 := -1
		for k := 0; k < min(8, count); k++ {
			p := list[k]
			g1 := abs[p] > 1
			w.EncodeBin(b2i(g1), cabac.CtxGreater1+ctxSet*4+c1)
			if g1 {
				c1 = 0
				if firstG1 < 0 {
					firstG1 = p
				}
			} else if c1 > 0 && c1 < 3 {
				c1++
			}
		}
		greater1Ctx = c1
		if firstG1 >= 0 {
			w.EncodeBin(b2i(abs[firstG1] > 2), cabac.CtxGreater2+ctxSet)
		}

		for k := 0; k < count; k++ {
			w.EncodeBypass(b2i(neg[list[k]]))
		}

		rice := 0
		for k := 0; k < count; k++ {
			p := list[k]
			base := int32(1)
			if k < 8 {
				base = 2
				if p == firstG1 {
					base = 3
				}
			}
			if abs[p] < base {
				continue
			}
			encodeRemaining(w, uint32(abs[p]-base), rice)
			if abs[p] > 3<<rice {
				rice = min(rice+1, 4)
			}
		}
	}
}

// sigCtx derives the sig_coeff_flag context increment of the coefficient
// at (xP, yP) inside sub-block (xS, yS).
func sigCtx(log2, scan, xS, yS, xP, yP, prevCsbf int) int {
	if log2 == 2 {
		return int(ctxIdxMap[yP<<2+xP])
	}
	if xS == 0 && yS == 0 && xP == 0 && yP == 0 {
		return 0
	}
	var ctx int
	switch prevCsbf {
	case 0:
		switch s := xP + yP; {
		case s == 0:
			ctx = 2
		case s < 3:
			ctx = 1
		}
	case 1:
		switch yP {
		case 0:
			ctx = 2
		case 1:
			ctx = 1
		}
	case 2:
		switch xP {
		case 0:
			ctx = 2
		case 1:
			ctx = 1
		}
	default:
		ctx = 2
	}
	if xS != 0 || yS != 0 {
		ctx += 3
	}
	if log2 == 3 {
		if scan == scanDiag {
			return ctx + 9
		}
		return ctx + 15
	}
	return ctx + 21
}

func encodeLastPosition(w cabac.Writer, x, y, log2 int) {
	px, sx := lastPrefixSuffix(x)
	py, sy := lastPrefixSuffix(y)
	encodeLastPrefix(w, px, log2, cabac.CtxLastXPrefix)
	encodeLastPrefix(w, py, log2, cabac.CtxLastYPrefix)
	if px > 3 {
		w.EncodeBypassBins(uint32(sx), px>>1-1)
	}
	if py > 3 {
		w.EncodeBypassBins(uint32(sy), py>>1-1)
	}
}

func lastPrefixSuffix(v int) (prefix, suffix int) {
	prefix = int(lastGroupIdx[v])
	if prefix > 3 {
		suffix = v - int(lastMinInGroup[prefix])
	}
	return prefix, suffix
}

func encodeLastPrefix(w cabac.Writer, prefix, log2, base int) {
	offset := 3*(log2-2) + (log2-1)>>2
	shift := (log2 + 1) >> 2
	cMax := log2<<1 - 1
	for b := 0; b < prefix; b++ {
		w.EncodeBin(1, base+offset+b>>shift)
	}
	if prefix < cMax {
		w.EncodeBin(0, base+offset+prefix>>shift)
	}
}

// encodeRemaining codes coeff_abs_level_remaining with Rice parameter rice.
func encodeRemaining(w cabac.Writer, v uint32, rice int) {
	if v < coefRemainBinReduction<<rice {
		length := int(v >> rice)
		w.EncodeBypassBins(1<<(length+1)-2, length+1)
		w.EncodeBypassBins(v&(1<<rice-1), rice)
		return
	}
	length := rice
	v -= coefRemainBinReduction << rice
	for v >= 1<<length {
		v -= 1 << length
		length++
	}
	prefix := coefRemainBinReduction + length + 1 - rice
	w.EncodeBypassBins(1<<prefix-2, prefix)
	w.EncodeBypassBins(v, length)
}
