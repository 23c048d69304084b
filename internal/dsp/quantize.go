package dsp

// HEVC quantizer scales indexed by qp%6.
var (
	quantScales   = [6]int64{26214, 23302, 20560, 18396, 16384, 14564}
	dequantScales = [6]int64{40, 45, 51, 57, 64, 72}
)

// Quantize maps transform coefficients to levels with the intra rounding
// offset (171/512) and returns the number of non-zero levels.
func Quantize(levels, coeffs []int16, qp, log2 int) int {
	n := 1 << (2 * log2)
	transformShift := 15 - BitDepth - log2
	qBits := uint(14 + qp/6 + transformShift)
	scale := quantScales[qp%6]
	add := int64(171) << (qBits - 9)

	nz := 0
	for i := 0; i < n; i++ {
		c := int64(coeffs[i])
		sign := c < 0
		if sign {
			c = -c
		}
		l := (c*scale + add) >> qBits
		if l > 32767 {
			l = 32767
		}
		if l != 0 {
			nz++
		}
		if sign {
			l = -l
		}
		levels[i] = int16(l)
	}
	return nz
}

// Dequantize scales levels back to transform coefficients with a flat
// scaling list.
func Dequantize(coeffs, levels []int16, qp, log2 int) {
	n := 1 << (2 * log2)
	bdShift := uint(BitDepth + log2 - 5)
	scale := (16 * dequantScales[qp%6]) << uint(qp/6)
	rnd := int64(1) << (bdShift - 1)
	for i := 0; i < n; i++ {
		if levels[i] == 0 {
			coeffs[i] = 0
			continue
		}
		v := (int64(levels[i])*scale + rnd) >> bdShift
		if v < -32768 {
			v = -32768
		} else if v > 32767 {
			v = 32767
		}
		coeffs[i] = int16(v)
	}
}
