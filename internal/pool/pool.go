// Package pool provides bucketed sync.Pool instances for the per-trial block
// buffers of the mode search. Buffers are organized by square block size so a
// 4x4 trial never pins a 64x64 allocation.
package pool

import "sync"

// Size classes, in elements, for the square block sizes 4x4 .. 64x64.
const (
	Size4x4   = 16
	Size8x8   = 64
	Size16x16 = 256
	Size32x32 = 1024
	Size64x64 = 4096
)

const numBuckets = 5

var sizes = [numBuckets]int{Size4x4, Size8x8, Size16x16, Size32x32, Size64x64}

// bucketIndex returns the pool index for a given element count.
func bucketIndex(size int) int {
	switch {
	case size <= Size4x4:
		return 0
	case size <= Size8x8:
		return 1
	case size <= Size16x16:
		return 2
	case size <= Size32x32:
		return 3
	default:
		return 4
	}
}

var (
	pixelPools [numBuckets]sync.Pool
	coeffPools [numBuckets]sync.Pool
)

func init() {
	for i := range sizes {
		sz := sizes[i]
		pixelPools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
		coeffPools[i] = sync.Pool{
			New: func() any {
				c := make([]int16, sz)
				return &c
			},
		}
	}
}

// Pixels returns a byte slice of length size from the pool. The contents are
// not cleared. The caller must call PutPixels when done.
func Pixels(size int) []byte {
	bp := pixelPools[bucketIndex(size)].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// PutPixels returns a slice obtained from Pixels. Slices smaller than the
// smallest class are dropped.
func PutPixels(b []byte) {
	c := cap(b)
	if c < Size4x4 {
		return
	}
	b = b[:c]
	pixelPools[bucketIndex(c)].Put(&b)
}

// Coeffs returns a zeroed int16 slice of length size from the pool.
func Coeffs(size int) []int16 {
	cp := coeffPools[bucketIndex(size)].Get().(*[]int16)
	c := *cp
	if cap(c) < size {
		c = make([]int16, size)
		*cp = c
		return c
	}
	c = c[:size]
	clear(c)
	return c
}

// PutCoeffs returns a slice obtained from Coeffs.
func PutCoeffs(c []int16) {
	n := cap(c)
	if n < Size4x4 {
		return
	}
	c = c[:n]
	coeffPools[bucketIndex(n)].Put(&c)
}
