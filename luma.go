package intrapred

import (
	"image"

	"github.com/deepteams/intrapred/internal/enc"
)

// BT.601 limited range luma weights in 16-bit fixed point.
const (
	yR     = 16839
	yG     = 33059
	yB     = 6420
	yRound = 16<<16 + 1<<15
)

func rgbToY(r, g, b uint32) byte {
	return byte((yR*r + yG*g + yB*b + yRound) >> 16)
}

// lumaPlane extracts the 8-bit luma of img. YCbCr and Gray images are
// copied as is; everything else goes through RGB.
func lumaPlane(img image.Image) *enc.Plane {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := enc.NewPlane(w, h)
	switch src := img.(type) {
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			copy(p.Pix[y*p.Stride:y*p.Stride+w], src.Y[src.YOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			copy(p.Pix[y*p.Stride:y*p.Stride+w], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	default:
		for y := 0; y < h; y++ {
			row := p.Pix[y*p.Stride:]
			for x := 0; x < w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = rgbToY(r>>8, g>>8, bl>>8)
			}
		}
	}
	return p
}

// grayImage returns the top-left w×h samples of p as an image.
func grayImage(p *enc.Plane, w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(g.Pix[y*g.Stride:y*g.Stride+w], p.Pix[p.Off(0, y):])
	}
	return g
}
