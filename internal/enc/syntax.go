package enc

import (
	"slices"

	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/dsp"
)

// MPMCandidates derives the three most probable modes of the prediction
// block at (x, y) from its left and above neighbours.
func (c *Context) MPMCandidates(x, y int) [3]int {
	candA := c.neighbourMode(x, y, x-1, y, false)
	candB := c.neighbourMode(x, y, x, y-1, true)

	if candA == candB {
		if candA < 2 {
			return [3]int{dsp.ModePlanar, dsp.ModeDC, dsp.ModeVertical}
		}
		return [3]int{candA, 2 + ((candA + 29) % 32), 2 + ((candA - 2 + 1) % 32)}
	}
	var third int
	switch {
	case candA != dsp.ModePlanar && candB != dsp.ModePlanar:
		third = dsp.ModePlanar
	case candA != dsp.ModeDC && candB != dsp.ModeDC:
		third = dsp.ModeDC
	default:
		third = dsp.ModeVertical
	}
	return [3]int{candA, candB, third}
}

func (c *Context) neighbourMode(x, y, xN, yN int, above bool) int {
	if !c.Available(x, y, xN, yN) {
		return dsp.ModeDC
	}
	// The above neighbour is not used across a CTB row boundary.
	if above && yN < (y>>c.Seq.Log2CtbSize)<<c.Seq.Log2CtbSize {
		return dsp.ModeDC
	}
	m := c.ModeAt(xN, yN)
	assert.That(m >= 0, "neighbour (%d,%d) of (%d,%d) has no committed mode", xN, yN, x, y)
	return m
}

// EncodeIntraMode codes the luma mode of the prediction block at (x, y):
// prev_intra_luma_pred_flag followed by mpm_idx or rem_intra_luma_pred_mode.
func (c *Context) EncodeIntraMode(w cabac.Writer, x, y, mode int) {
	assert.That(mode >= 0 && mode < dsp.NumIntraModes, "invalid intra mode %d", mode)
	cands := c.MPMCandidates(x, y)
	idx := slices.Index(cands[:], mode)
	if idx >= 0 {
		w.EncodeBin(1, cabac.CtxPrevIntraLuma)
		switch idx {
		case 0:
			w.EncodeBypass(0)
		case 1:
			w.EncodeBypassBins(0b10, 2)
		default:
			w.EncodeBypassBins(0b11, 2)
		}
		return
	}
	w.EncodeBin(0, cabac.CtxPrevIntraLuma)
	slices.Sort(cands[:])
	rem := mode
	for i := 2; i >= 0; i-- {
		if rem > cands[i] {
			rem--
		}
	}
	w.EncodeBypassBins(uint32(rem), 5)
}

// EncodeSplitTransform codes split_transform_flag for a TB of size 1<<log2.
func EncodeSplitTransform(w cabac.Writer, log2 int, split bool) {
	w.EncodeBin(b2i(split), cabac.CtxSplitTransform+5-log2)
}

// EncodeCbfLuma codes cbf_luma at the given transform depth.
func EncodeCbfLuma(w cabac.Writer, trafoDepth int, cbf bool) {
	ctx := cabac.CtxCbfLuma
	if trafoDepth == 0 {
		ctx++
	}
	w.EncodeBin(b2i(cbf), ctx)
}

// SplitMode reports whether split_transform_flag is coded for a TB of size
// 1<<log2 at trafoDepth in cb and, when it is not, the inferred value.
func (c *Context) SplitMode(cb *CodingBlock, log2, trafoDepth int) (signalled, inferred bool) {
	s := &c.Seq
	if log2 <= s.Log2MaxTbSize && log2 > s.Log2MinTbSize &&
		trafoDepth < cb.MaxTrafoDepth(s) && !(cb.IntraSplit() && trafoDepth == 0) {
		return true, false
	}
	return false, log2 > s.Log2MaxTbSize || (cb.IntraSplit() && trafoDepth == 0)
}

// EncodeCUHeader codes the coding quadtree flags that lead to cb and its
// part_mode. Every coding block of the picture has the same size.
func (c *Context) EncodeCUHeader(w cabac.Writer, cb *CodingBlock) {
	target := c.Seq.Log2CtbSize - cb.Log2Size
	for d := 0; d < target; d++ {
		size := 1 << (c.Seq.Log2CtbSize - d)
		if cb.X%size != 0 || cb.Y%size != 0 {
			continue
		}
		c.encodeSplitCU(w, cb.X, cb.Y, d, target, true)
	}
	if cb.Log2Size > c.Seq.Log2MinCbSize {
		c.encodeSplitCU(w, cb.X, cb.Y, target, target, false)
		return
	}
	w.EncodeBin(b2i(cb.PartMode == Part2Nx2N), cabac.CtxPartMode)
}

func (c *Context) encodeSplitCU(w cabac.Writer, x, y, depth, cbDepth int, split bool) {
	ctx := cabac.CtxSplitCU
	if cbDepth > depth {
		if c.Available(x, y, x-1, y) {
			ctx++
		}
		if c.Available(x, y, x, y-1) {
			ctx++
		}
	}
	w.EncodeBin(b2i(split), ctx)
}

// EncodeTree codes the transform tree rooted at id in analysis order: the
// intra mode where it is selected, split flags, then cbf and residuals of
// the leaves.
func (c *Context) EncodeTree(w cabac.Writer, id NodeID) {
	tb := c.Arena.Node(id)
	if tb.SelectsMode {
		c.EncodeIntraMode(w, tb.X, tb.Y, tb.IntraMode)
	}
	if signalled, _ := c.SplitMode(tb.CB, tb.Log2Size, tb.TrafoDepth); signalled {
		EncodeSplitTransform(w, tb.Log2Size, tb.Split)
	}
	if tb.Split {
		for _, ch := range tb.Children {
			c.EncodeTree(w, ch)
		}
		return
	}
	EncodeLeaf(w, tb)
}

// EncodeLeaf codes cbf_luma and the residual of a leaf TB.
func EncodeLeaf(w cabac.Writer, tb *TB) {
	EncodeCbfLuma(w, tb.TrafoDepth, tb.CBF)
	if tb.CBF {
		encodeResidual(w, tb.Levels, tb.Log2Size, tb.ScanIdx())
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
