package dsp

// intCos[j] is the HEVC integer approximation of 64·√2·cos(jπ/64) for
// j = 1..31, with intCos[0] = intCos[16]·√2 = 64 for the DC row and
// intCos[32] = 0. Every row of the 4..32 point DCT matrices is built from it.
var intCos = [33]int32{
	64, 90, 90, 90, 89, 88, 87, 85, 83, 82, 80, 78, 75, 73, 70, 67,
	64, 61, 57, 54, 50, 46, 43, 38, 36, 31, 25, 22, 18, 13, 9, 4,
	0,
}

// dstMatrix is the 4x4 DST-VII used for intra luma 4x4 residuals.
var dstMatrix = [4 * 4]int32{
	29, 55, 74, 84,
	74, 74, 0, -74,
	84, -29, -74, 55,
	55, -84, 74, -29,
}

// dctMatrix[log2-2] holds the n×n DCT matrix, row k = basis function k.
var dctMatrix [4][]int32

func initTransformMatrices() {
	for log2 := 2; log2 <= 5; log2++ {
		n := 1 << log2
		step := 32 >> log2
		m := make([]int32, n*n)
		for k := 0; k < n; k++ {
			for i := 0; i < n; i++ {
				m[k*n+i] = cos64((2*i + 1) * k * step)
			}
		}
		dctMatrix[log2-2] = m
	}
}

// cos64 returns the integer cosine for angle a·π/64.
func cos64(a int) int32 {
	a %= 128
	if a > 64 {
		a = 128 - a
	}
	if a > 32 {
		return -intCos[64-a]
	}
	if a == 0 {
		return 64
	}
	return intCos[a]
}

// DCTMatrix returns the n×n integer DCT matrix for log2 n in [2,5].
func DCTMatrix(log2 int) []int32 {
	return dctMatrix[log2-2]
}

func transformMatrix(log2 int, useDST bool) []int32 {
	if useDST && log2 == 2 {
		return dstMatrix[:]
	}
	return dctMatrix[log2-2]
}

// FwdTransform computes the 2-D forward transform of the packed n×n residual
// res into coeffs, with the HM intermediate shifts for 8-bit video. useDST
// selects the DST-VII for 4x4 blocks.
func FwdTransform(coeffs []int16, res []int16, log2 int, useDST bool) {
	n := 1 << log2
	t := transformMatrix(log2, useDST)
	shift1 := uint(log2 - 1 + BitDepth - 8)
	shift2 := uint(log2 + 6)
	rnd1 := int32(1) << (shift1 - 1)
	rnd2 := int32(1) << (shift2 - 1)

	var tmp [MaxTB * MaxTB]int32

	// Horizontal pass.
	for r := 0; r < n; r++ {
		row := res[r*n : r*n+n]
		for k := 0; k < n; k++ {
			basis := t[k*n : k*n+n]
			var s int32
			for i, v := range row {
				s += basis[i] * int32(v)
			}
			tmp[r*n+k] = (s + rnd1) >> shift1
		}
	}

	// Vertical pass.
	for k := 0; k < n; k++ {
		basis := t[k*n : k*n+n]
		for c := 0; c < n; c++ {
			var s int32
			for r := 0; r < n; r++ {
				s += basis[r] * tmp[r*n+c]
			}
			coeffs[k*n+c] = clip16((s + rnd2) >> shift2)
		}
	}
}

// InvTransform reconstructs the packed n×n residual from coeffs.
func InvTransform(res []int16, coeffs []int16, log2 int, useDST bool) {
	n := 1 << log2
	t := transformMatrix(log2, useDST)
	const shift1 = 7
	shift2 := uint(20 - BitDepth)
	rnd2 := int32(1) << (shift2 - 1)

	var tmp [MaxTB * MaxTB]int32

	// Vertical pass.
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			var s int32
			for k := 0; k < n; k++ {
				s += t[k*n+r] * int32(coeffs[k*n+c])
			}
			tmp[r*n+c] = int32(clip16((s + 64) >> shift1))
		}
	}

	// Horizontal pass.
	for r := 0; r < n; r++ {
		row := tmp[r*n : r*n+n]
		for i := 0; i < n; i++ {
			var s int32
			for k, v := range row {
				s += t[k*n+i] * v
			}
			res[r*n+i] = clip16((s + rnd2) >> shift2)
		}
	}
}

// hadamard applies an in-place unnormalised n-point Walsh-Hadamard butterfly
// to v[off], v[off+stride], ...
func hadamard(v []int32, off, stride, n int) {
	for h := 1; h < n; h <<= 1 {
		for i := 0; i < n; i += 2 * h {
			for j := i; j < i+h; j++ {
				a := v[off+j*stride]
				b := v[off+(j+h)*stride]
				v[off+j*stride] = a + b
				v[off+(j+h)*stride] = a - b
			}
		}
	}
}

// satdTile is the largest square the SATD kernels transform at once; larger
// blocks are tiled.
const satdTile = 32

func hadamardSATD(res []int16, n int) int64 {
	if n > satdTile {
		return tiled(res, n, hadamardSATD)
	}
	var v [satdTile * satdTile]int32
	for i := 0; i < n*n; i++ {
		v[i] = int32(res[i])
	}
	for r := 0; r < n; r++ {
		hadamard(v[:], r*n, 1, n)
	}
	for c := 0; c < n; c++ {
		hadamard(v[:], c, n, n)
	}
	var sum int64
	for i := 0; i < n*n; i++ {
		sum += int64(abs32(v[i]))
	}
	return sum
}

func dctSATD(res []int16, n int) int64 {
	if n > satdTile {
		return tiled(res, n, dctSATD)
	}
	var coeffs [satdTile * satdTile]int16
	log2 := log2Of(n)
	FwdTransform(coeffs[:n*n], res, log2, false)
	var sum int64
	for _, c := range coeffs[:n*n] {
		if c < 0 {
			sum -= int64(c)
		} else {
			sum += int64(c)
		}
	}
	return sum
}

// tiled evaluates f on each satdTile×satdTile quadrant of a packed n×n block.
func tiled(res []int16, n int, f func([]int16, int) int64) int64 {
	var tile [satdTile * satdTile]int16
	var sum int64
	for ty := 0; ty < n; ty += satdTile {
		for tx := 0; tx < n; tx += satdTile {
			for y := 0; y < satdTile; y++ {
				copy(tile[y*satdTile:(y+1)*satdTile], res[(ty+y)*n+tx:])
			}
			sum += f(tile[:], satdTile)
		}
	}
	return sum
}

func log2Of(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
