package enc

import (
	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/pool"
)

// NewTB allocates a node for the TB at (x0, y0) of cb.
func (c *Context) NewTB(cb *CodingBlock, parent NodeID, x0, y0, xBase, yBase, log2, blkIdx, trafoDepth int) NodeID {
	id := c.Arena.New()
	tb := c.Arena.Node(id)
	tb.X, tb.Y = x0, y0
	tb.XBase, tb.YBase = xBase, yBase
	tb.Log2Size = log2
	tb.BlkIdx = blkIdx
	tb.TrafoDepth = trafoDepth
	tb.CB = cb
	tb.Parent = parent
	return id
}

// CodeLeaf predicts, transforms, quantizes and reconstructs the leaf TB id
// with its IntraMode, estimating the rate of cbf_luma and the residual
// against ctx, which is adapted. The reconstruction is written to the
// picture so that later blocks of the same trial can predict from it.
func (c *Context) CodeLeaf(ctx *cabac.ContextTable, id NodeID) {
	tb := c.Arena.Node(id)
	log2 := tb.Log2Size
	assert.That(log2 >= c.Seq.Log2MinTbSize && log2 <= c.Seq.Log2MaxTbSize,
		"leaf TB size %d outside [%d,%d]", log2, c.Seq.Log2MinTbSize, c.Seq.Log2MaxTbSize)
	c.Stats.LeafCodings++

	n := 1 << log2
	nn := n * n
	src := c.Source.Block(tb.X, tb.Y)

	var nb dsp.Neighbors
	c.LoadNeighbors(&nb, tb.X, tb.Y, log2)
	pred := pool.Pixels(nn)
	defer pool.PutPixels(pred)
	nb.Predict(tb.IntraMode, pred)

	res := pool.Coeffs(nn)
	defer pool.PutCoeffs(res)
	coeffs := pool.Coeffs(nn)
	defer pool.PutCoeffs(coeffs)

	dsp.Diff(res, src, c.Source.Stride, pred, n, n)
	dsp.FwdTransform(coeffs, res, log2, tb.UseDST())
	if tb.Levels == nil {
		tb.Levels = pool.Coeffs(nn)
	}
	tb.CBF = dsp.Quantize(tb.Levels, coeffs, tb.CB.QP, log2) > 0

	est := cabac.NewEstimator(ctx)
	EncodeLeaf(est, tb)
	tb.Rate = est.Bits()

	if tb.Recon == nil {
		tb.Recon = pool.Pixels(nn)
	}
	if tb.CBF {
		dsp.Dequantize(coeffs, tb.Levels, tb.CB.QP, log2)
		dsp.InvTransform(res, coeffs, log2, tb.UseDST())
		dsp.Reconstruct(tb.Recon, n, pred, res, n)
	} else {
		copy(tb.Recon, pred)
	}
	c.writeRecon(tb)

	tb.Distortion = dsp.SSD(src, c.Source.Stride, tb.Recon, n, n, n)
	tb.Cost = c.Cost(tb.Distortion, tb.Rate)
}

func (c *Context) writeRecon(tb *TB) {
	n := tb.Size()
	for y := 0; y < n; y++ {
		copy(c.Recon.Pix[c.Recon.Off(tb.X, tb.Y+y):], tb.Recon[y*n:y*n+n])
	}
}

// Commit writes the reconstruction and the luma modes of the tree rooted at
// id back into the picture, and records the modes on the coding block. It
// is called for the winner of a comparison, whose samples may have been
// overwritten by a losing trial.
func (c *Context) Commit(id NodeID) {
	tb := c.Arena.Node(id)
	if tb.SelectsMode {
		idx := 0
		if tb.CB.IntraSplit() {
			idx = tb.BlkIdx
		}
		tb.CB.IntraModes[idx] = tb.IntraMode
	}
	if tb.Split {
		for _, ch := range tb.Children {
			c.Commit(ch)
		}
		return
	}
	c.writeRecon(tb)
	c.setMode(tb.X, tb.Y, tb.Log2Size, tb.IntraMode)
}

// MeasureTree re-codes the tree rooted at id against ctx and recomputes the
// distortion of its reconstruction, returning the resulting RD cost.
func (c *Context) MeasureTree(ctx *cabac.ContextTable, id NodeID) (distortion int64, rate, cost float64) {
	est := cabac.NewEstimator(ctx)
	c.EncodeTree(est, id)
	distortion = c.treeDistortion(id)
	return distortion, est.Bits(), c.Cost(distortion, est.Bits())
}

func (c *Context) treeDistortion(id NodeID) int64 {
	tb := c.Arena.Node(id)
	if tb.Split {
		var d int64
		for _, ch := range tb.Children {
			d += c.treeDistortion(ch)
		}
		return d
	}
	n := tb.Size()
	return dsp.SSD(c.Source.Block(tb.X, tb.Y), c.Source.Stride, tb.Recon, n, n, n)
}
