package dsp

import "math"

func ssd(a []byte, aStride int, b []byte, bStride int, w, h int) int64 {
	var sum int64
	for y := 0; y < h; y++ {
		ra := a[y*aStride : y*aStride+w]
		rb := b[y*bStride : y*bStride+w]
		for x := range ra {
			d := int64(ra[x]) - int64(rb[x])
			sum += d * d
		}
	}
	return sum
}

func sad(a []byte, aStride int, b []byte, bStride int, w, h int) int64 {
	var sum int64
	for y := 0; y < h; y++ {
		ra := a[y*aStride : y*aStride+w]
		rb := b[y*bStride : y*bStride+w]
		for x := range ra {
			d := int64(ra[x]) - int64(rb[x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum
}

// Diff writes the packed n×n residual a-b into dst.
func Diff(dst []int16, a []byte, aStride int, b []byte, bStride int, n int) {
	for y := 0; y < n; y++ {
		ra := a[y*aStride : y*aStride+n]
		rb := b[y*bStride : y*bStride+n]
		d := dst[y*n : y*n+n]
		for x := range d {
			d[x] = int16(ra[x]) - int16(rb[x])
		}
	}
}

// Reconstruct writes clip(pred+res) into dst. pred and res are packed n×n.
func Reconstruct(dst []byte, dstStride int, pred []byte, res []int16, n int) {
	for y := 0; y < n; y++ {
		row := dst[y*dstStride : y*dstStride+n]
		for x := range row {
			row[x] = clip8(int(pred[y*n+x]) + int(res[y*n+x]))
		}
	}
}

// PSNR converts a sum of squared errors over count samples to decibels.
// A zero error is reported as 99 dB.
func PSNR(sse int64, count int) float64 {
	if sse <= 0 || count <= 0 {
		return 99
	}
	mse := float64(sse) / float64(count)
	return 10 * math.Log10(255*255/mse)
}
