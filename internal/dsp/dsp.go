// Package dsp implements the pixel-domain kernels of the intra search: HEVC
// intra prediction, the integer DCT/DST transforms, Hadamard and DCT based
// SATD, block distortion and scalar quantization.
//
// All kernels work on 8-bit luma. Source and reconstruction blocks are
// addressed as (slice, stride); prediction and residual blocks are packed
// n×n buffers.
package dsp

import "golang.org/x/sys/cpu"

// BitDepth is the sample bit depth handled by the kernels.
const BitDepth = 8

// MaxBlock is the largest square block the prediction kernels accept. Blocks
// above MaxTB are only predicted for cost estimation.
const MaxBlock = 64

// MaxTB is the largest transform size.
const MaxTB = 32

// Intra prediction modes.
const (
	ModePlanar     = 0
	ModeDC         = 1
	ModeHorizontal = 10
	ModeVertical   = 26
	NumIntraModes  = 35
)

// Kernel dispatch. Init sets these to the pure-Go implementations.
var (
	SSD          func(a []byte, aStride int, b []byte, bStride int, w, h int) int64
	SAD          func(a []byte, aStride int, b []byte, bStride int, w, h int) int64
	HadamardSATD func(res []int16, n int) int64
	DCTSATD      func(res []int16, n int) int64
)

// Features describes the host SIMD capabilities, for diagnostics.
type Features struct {
	SSE41 bool
	AVX2  bool
	NEON  bool
}

// HostFeatures reports the SIMD extensions of the running CPU.
func HostFeatures() Features {
	return Features{
		SSE41: cpu.X86.HasSSE41,
		AVX2:  cpu.X86.HasAVX2,
		NEON:  cpu.ARM64.HasASIMD,
	}
}

// Init initialises the transform tables and the dispatch variables.
func Init() {
	initTransformMatrices()

	SSD = ssd
	SAD = sad
	HadamardSATD = hadamardSATD
	DCTSATD = dctSATD
}

func init() {
	Init()
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

func clip8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clip16(v int32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}
