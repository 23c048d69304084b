package enc

import (
	"math"

	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/dsp"
)

// SeqParams are the sequence level limits of the transform tree.
type SeqParams struct {
	Log2CtbSize                     int
	Log2MinCbSize                   int
	Log2MinTbSize                   int
	Log2MaxTbSize                   int
	MaxTransformHierarchyDepthIntra int
	StrongIntraSmoothing            bool
}

// DefaultSeqParams returns 32x32 CTBs, 16x16 coding blocks and 4..32
// transforms with one level of transform hierarchy.
func DefaultSeqParams() SeqParams {
	return SeqParams{
		Log2CtbSize:                     5,
		Log2MinCbSize:                   4,
		Log2MinTbSize:                   2,
		Log2MaxTbSize:                   5,
		MaxTransformHierarchyDepthIntra: 1,
		StrongIntraSmoothing:            true,
	}
}

// RDCostFunc combines a distortion (sum of squared errors) and a rate in
// bits into the cost minimised by the search.
type RDCostFunc func(distortion int64, rate float64) float64

// LambdaForQP returns the HM intra lambda for qp.
func LambdaForQP(qp int) float64 {
	return 0.57 * math.Pow(2, float64(qp-12)/3)
}

// LambdaCost returns distortion + lambda·rate.
func LambdaCost(lambda float64) RDCostFunc {
	return func(distortion int64, rate float64) float64 {
		return float64(distortion) + lambda*rate
	}
}

// Stats counts the work done by the analysis.
type Stats struct {
	Estimates   int64 // cheap estimator evaluations
	ModeTrials  int64 // full evaluations of a candidate mode
	SplitTrials int64 // split alternatives evaluated
	LeafCodings int64 // transform blocks predicted, quantized and rate-estimated
}

// Context is the encoder state shared by one picture analysis.
type Context struct {
	Source *Plane
	Recon  *Plane
	Seq    SeqParams
	Cost   RDCostFunc
	Arena  Arena
	Stats  Stats

	// modes holds the committed luma mode of every 4x4 block, or -1 before
	// the block is coded.
	modes      []int8
	modeStride int

	ctbsPerRow int
}

// NewContext returns the analysis state for src, whose dimensions must be
// multiples of the CTB size. cost is used for every RD comparison.
func NewContext(src *Plane, seq SeqParams, cost RDCostFunc) *Context {
	ctb := 1 << seq.Log2CtbSize
	assert.That(src.Width%ctb == 0 && src.Height%ctb == 0,
		"source %dx%d is not a multiple of the CTB size %d", src.Width, src.Height, ctb)
	c := &Context{
		Source:     src,
		Recon:      NewPlane(src.Width, src.Height),
		Seq:        seq,
		Cost:       cost,
		modeStride: src.Width >> 2,
		ctbsPerRow: src.Width / ctb,
	}
	c.modes = make([]int8, (src.Width>>2)*(src.Height>>2))
	for i := range c.modes {
		c.modes[i] = -1
	}
	c.Arena.Reset()
	return c
}

// zAddr returns the z-scan order address of the 4x4 block holding (x, y).
func (c *Context) zAddr(x, y int) int {
	ctbLog2 := c.Seq.Log2CtbSize
	ctb := (y>>ctbLog2)*c.ctbsPerRow + (x >> ctbLog2)
	mask := (1 << ctbLog2) - 1
	bx, by := (x&mask)>>2, (y&mask)>>2
	var z int
	for b := 0; b < ctbLog2-2; b++ {
		z |= (bx >> b & 1) << (2 * b)
		z |= (by >> b & 1) << (2*b + 1)
	}
	return ctb<<(2*(ctbLog2-2)) | z
}

// Available reports whether the sample (xN, yN) precedes the block at
// (xCurr, yCurr) in z-scan order and lies inside the picture.
func (c *Context) Available(xCurr, yCurr, xN, yN int) bool {
	if xN < 0 || yN < 0 || xN >= c.Source.Width || yN >= c.Source.Height {
		return false
	}
	return c.zAddr(xN, yN) < c.zAddr(xCurr, yCurr)
}

// LoadNeighbors gathers the reference samples of the block at (x0, y0) from
// the reconstruction.
func (c *Context) LoadNeighbors(nb *dsp.Neighbors, x0, y0, log2 int) {
	avail := func(x, y int) bool { return c.Available(x0, y0, x, y) }
	nb.Load(c.Recon.Pix, c.Recon.Stride, x0, y0, log2, avail, c.Seq.StrongIntraSmoothing)
}

// ModeAt returns the committed luma mode covering (x, y), or -1.
func (c *Context) ModeAt(x, y int) int {
	return int(c.modes[(y>>2)*c.modeStride+(x>>2)])
}

func (c *Context) setMode(x, y, log2, mode int) {
	n := 1 << (log2 - 2)
	for j := 0; j < n; j++ {
		row := c.modes[((y>>2)+j)*c.modeStride+(x>>2):]
		for i := 0; i < n; i++ {
			row[i] = int8(mode)
		}
	}
}
