package enc

// Plane is an 8-bit sample plane.
type Plane struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
}

// NewPlane allocates a zeroed w×h plane.
func NewPlane(w, h int) *Plane {
	return &Plane{Pix: make([]byte, w*h), Stride: w, Width: w, Height: h}
}

// Off returns the index of sample (x, y) in Pix.
func (p *Plane) Off(x, y int) int {
	return y*p.Stride + x
}

// At returns sample (x, y).
func (p *Plane) At(x, y int) byte {
	return p.Pix[y*p.Stride+x]
}

// Block returns the slice starting at sample (x, y), for (slice, stride)
// kernel calls.
func (p *Plane) Block(x, y int) []byte {
	return p.Pix[y*p.Stride+x:]
}

// Padded returns a copy of p whose dimensions are rounded up to a multiple
// of align, the extra columns and rows replicating the last ones.
func (p *Plane) Padded(align int) *Plane {
	w := (p.Width + align - 1) / align * align
	h := (p.Height + align - 1) / align * align
	out := NewPlane(w, h)
	for y := 0; y < h; y++ {
		sy := min(y, p.Height-1)
		row := out.Pix[y*w : y*w+w]
		copy(row, p.Pix[sy*p.Stride:sy*p.Stride+p.Width])
		last := row[p.Width-1]
		for x := p.Width; x < w; x++ {
			row[x] = last
		}
	}
	return out
}
