package dsp

// intraPredAngle is the displacement per row/column, in 1/32 sample units,
// of the angular modes 2..34.
var intraPredAngle = [NumIntraModes]int{
	0, 0,
	32, 26, 21, 17, 13, 9, 5, 2, 0, -2, -5, -9, -13, -17, -21, -26,
	-32, -26, -21, -17, -13, -9, -5, -2, 0, 2, 5, 9, 13, 17, 21, 26, 32,
}

// invAngle is 256*32/angle for the modes with a negative angle.
var invAngle = [NumIntraModes]int{
	11: -4096, 12: -1638, 13: -910, 14: -630, 15: -482, 16: -390, 17: -315,
	18: -256, 19: -315, 20: -390, 21: -482, 22: -630, 23: -910, 24: -1638, 25: -4096,
}

// borderCenter is the index of the top-left corner sample p[-1][-1].
const borderCenter = 2 * MaxBlock

// AvailFunc reports whether the reconstructed sample at (x, y) may be used
// as a reference for the block being predicted.
type AvailFunc func(x, y int) bool

// Neighbors holds the 4n+1 reference samples of an n×n block, stored from
// bottom-left to top-right: index borderCenter-1-y is p[-1][y], borderCenter
// is p[-1][-1] and borderCenter+1+x is p[x][-1]. Both the unfiltered and the
// smoothed samples are kept so that all 35 modes can be predicted from one
// Load.
type Neighbors struct {
	raw      [4*MaxBlock + 1]uint8
	filtered [4*MaxBlock + 1]uint8
	log2     int
	n        int
}

// Load gathers the reference samples of the n×n block at (x0, y0) from the
// reconstruction plane, substitutes the unavailable ones and precomputes the
// smoothed copy. strong enables bilinear smoothing for 32x32 blocks.
func (nb *Neighbors) Load(recon []byte, stride, x0, y0, log2 int, avail AvailFunc, strong bool) {
	n := 1 << log2
	nb.log2 = log2
	nb.n = n
	lo := borderCenter - 2*n
	hi := borderCenter + 2*n

	var ok [4*MaxBlock + 1]bool
	found := false
	for i := lo; i <= hi; i++ {
		var x, y int
		switch {
		case i < borderCenter:
			x, y = x0-1, y0+(borderCenter-1-i)
		case i == borderCenter:
			x, y = x0-1, y0-1
		default:
			x, y = x0+(i-borderCenter-1), y0-1
		}
		if avail(x, y) {
			ok[i] = true
			found = true
			nb.raw[i] = recon[y*stride+x]
		}
	}

	if !found {
		for i := lo; i <= hi; i++ {
			nb.raw[i] = 1 << (BitDepth - 1)
		}
	} else {
		if !ok[lo] {
			for i := lo + 1; i <= hi; i++ {
				if ok[i] {
					nb.raw[lo] = nb.raw[i]
					break
				}
			}
		}
		for i := lo + 1; i <= hi; i++ {
			if !ok[i] {
				nb.raw[i] = nb.raw[i-1]
			}
		}
	}

	nb.smooth(strong)
}

func (nb *Neighbors) smooth(strong bool) {
	n := nb.n
	lo := borderCenter - 2*n
	hi := borderCenter + 2*n
	s := &nb.raw
	f := &nb.filtered

	if strong && n == 32 {
		const thresh = 1 << (BitDepth - 5)
		c := int(s[borderCenter])
		top := int(s[hi])
		left := int(s[lo])
		flatTop := abs(c+top-2*int(s[borderCenter+n])) < thresh
		flatLeft := abs(c+left-2*int(s[borderCenter-n])) < thresh
		if flatTop && flatLeft {
			f[borderCenter] = s[borderCenter]
			f[hi] = s[hi]
			f[lo] = s[lo]
			for k := 0; k < 2*n-1; k++ {
				f[borderCenter+1+k] = uint8(((63-k)*c + (k+1)*top + 32) >> 6)
				f[borderCenter-1-k] = uint8(((63-k)*c + (k+1)*left + 32) >> 6)
			}
			return
		}
	}

	f[lo] = s[lo]
	f[hi] = s[hi]
	for i := lo + 1; i < hi; i++ {
		f[i] = uint8((int(s[i-1]) + 2*int(s[i]) + int(s[i+1]) + 2) >> 2)
	}
}

// useFiltered reports whether mode predicts from the smoothed samples.
func useFiltered(mode, n int) bool {
	if mode == ModeDC || n == 4 {
		return false
	}
	d := abs(mode - ModeVertical)
	if h := abs(mode - ModeHorizontal); h < d {
		d = h
	}
	var thresh int
	switch n {
	case 8:
		thresh = 7
	case 16:
		thresh = 1
	default:
		thresh = 0
	}
	return d > thresh
}

// Predict writes the n×n prediction for mode into the packed buffer dst.
func (nb *Neighbors) Predict(mode int, dst []byte) {
	p := &nb.raw
	if useFiltered(mode, nb.n) {
		p = &nb.filtered
	}
	switch {
	case mode == ModePlanar:
		predPlanar(p, nb.log2, dst)
	case mode == ModeDC:
		predDC(p, nb.log2, dst)
	default:
		predAngular(p, mode, nb.n, dst)
	}
}

func predPlanar(p *[4*MaxBlock + 1]uint8, log2 int, dst []byte) {
	n := 1 << log2
	const c = borderCenter
	topRight := int(p[c+1+n])
	bottomLeft := int(p[c-1-n])
	for y := 0; y < n; y++ {
		left := int(p[c-1-y])
		for x := 0; x < n; x++ {
			top := int(p[c+1+x])
			dst[y*n+x] = uint8(((n-1-x)*left + (x+1)*topRight + (n-1-y)*top + (y+1)*bottomLeft + n) >> (log2 + 1))
		}
	}
}

func predDC(p *[4*MaxBlock + 1]uint8, log2 int, dst []byte) {
	n := 1 << log2
	const c = borderCenter
	sum := n
	for k := 0; k < n; k++ {
		sum += int(p[c+1+k]) + int(p[c-1-k])
	}
	dc := sum >> (log2 + 1)
	for i := 0; i < n*n; i++ {
		dst[i] = uint8(dc)
	}
	if n < 32 {
		dst[0] = uint8((int(p[c-1]) + 2*dc + int(p[c+1]) + 2) >> 2)
		for k := 1; k < n; k++ {
			dst[k] = uint8((int(p[c+1+k]) + 3*dc + 2) >> 2)
			dst[k*n] = uint8((int(p[c-1-k]) + 3*dc + 2) >> 2)
		}
	}
}

func predAngular(p *[4*MaxBlock + 1]uint8, mode, n int, dst []byte) {
	const c = borderCenter
	angle := intraPredAngle[mode]

	// ref[refOff+k] is the projected reference array, k in [-n, 2n].
	var ref [3*MaxBlock + 1]int
	const refOff = MaxBlock
	vertical := mode >= 18

	// along(k) reads the main reference edge, across(k) the other one.
	along := func(k int) int {
		if vertical {
			return int(p[c+k])
		}
		return int(p[c-k])
	}
	across := func(k int) int {
		if vertical {
			return int(p[c-k])
		}
		return int(p[c+k])
	}

	for k := 0; k <= n; k++ {
		ref[refOff+k] = along(k)
	}
	last := (n * angle) >> 5
	if angle < 0 && last < -1 {
		inv := invAngle[mode]
		for k := last; k <= -1; k++ {
			ref[refOff+k] = across((k*inv + 128) >> 8)
		}
	} else {
		for k := n + 1; k <= 2*n; k++ {
			ref[refOff+k] = along(k)
		}
	}

	for j := 0; j < n; j++ {
		idx := ((j + 1) * angle) >> 5
		fact := ((j + 1) * angle) & 31
		for i := 0; i < n; i++ {
			var v int
			if fact != 0 {
				v = ((32-fact)*ref[refOff+i+idx+1] + fact*ref[refOff+i+idx+2] + 16) >> 5
			} else {
				v = ref[refOff+i+idx+1]
			}
			if vertical {
				dst[j*n+i] = uint8(v)
			} else {
				dst[i*n+j] = uint8(v)
			}
		}
	}

	if n < 32 {
		switch mode {
		case ModeVertical:
			for y := 0; y < n; y++ {
				dst[y*n] = clip8(int(p[c+1]) + ((int(p[c-1-y]) - int(p[c])) >> 1))
			}
		case ModeHorizontal:
			for x := 0; x < n; x++ {
				dst[x] = clip8(int(p[c-1]) + ((int(p[c+1+x]) - int(p[c])) >> 1))
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
