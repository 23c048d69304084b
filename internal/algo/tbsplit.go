package algo

import (
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/enc"
)

// TBSplitBruteForce codes a TB both directly and split into four, when the
// sequence limits allow both, and keeps the cheaper. A direct coding wins
// ties.
type TBSplitBruteForce struct{}

// Analyze codes the TB at id unsplit and split, as allowed, and commits the
// cheaper.
func (s TBSplitBruteForce) Analyze(ectx *enc.Context, ctx *cabac.ContextTable, mode IntraPredMode, id enc.NodeID, req Request) enc.NodeID {
	signalled, forced := ectx.SplitMode(req.CB, req.Log2Size, req.TrafoDepth)
	sel := selection{ectx: ectx}

	if !forced {
		leaf := cloneNode(ectx, id)
		trial := ctx.Snapshot()
		var flagBits float64
		if signalled {
			est := cabac.NewEstimator(&trial)
			enc.EncodeSplitTransform(est, req.Log2Size, false)
			flagBits = est.Bits()
		}
		ectx.CodeLeaf(&trial, leaf)
		tb := ectx.Arena.Node(leaf)
		tb.Rate += flagBits
		tb.Cost = ectx.Cost(tb.Distortion, tb.Rate)
		sel.offer(leaf, &trial)
	}

	if signalled || forced {
		ectx.Stats.SplitTrials++
		node := cloneNode(ectx, id)
		trial := ctx.Snapshot()
		var rate float64
		if signalled {
			est := cabac.NewEstimator(&trial)
			enc.EncodeSplitTransform(est, req.Log2Size, true)
			rate = est.Bits()
		}
		var dist int64
		for i := range 4 {
			ch := mode.Analyze(ectx, &trial, s, req.child(node, i))
			ctb := ectx.Arena.Node(ch)
			dist += ctb.Distortion
			rate += ctb.Rate
			ectx.Arena.Node(node).Children[i] = ch
		}
		tb := ectx.Arena.Node(node)
		tb.Split = true
		tb.Distortion = dist
		tb.Rate = rate
		tb.Cost = ectx.Cost(dist, rate)
		sel.offer(node, &trial)
	}

	ectx.Arena.Release(id)
	return sel.commit(ctx)
}

// cloneNode allocates a node with the geometry and mode of id.
func cloneNode(ectx *enc.Context, id enc.NodeID) enc.NodeID {
	c := ectx.Arena.New()
	src := ectx.Arena.Node(id)
	dst := ectx.Arena.Node(c)
	*dst = enc.TB{
		X: src.X, Y: src.Y,
		XBase: src.XBase, YBase: src.YBase,
		Log2Size:    src.Log2Size,
		BlkIdx:      src.BlkIdx,
		TrafoDepth:  src.TrafoDepth,
		CB:          src.CB,
		Parent:      src.Parent,
		SelectsMode: src.SelectsMode,
		IntraMode:   src.IntraMode,
	}
	return c
}
