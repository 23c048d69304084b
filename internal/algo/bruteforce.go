package algo

import (
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/enc"
)

// BruteForce fully evaluates every enabled mode and keeps the one with the
// lowest RD cost, the lowest mode index winning ties.
type BruteForce struct {
	Modes ModeSet
}

// Analyze fully evaluates every enabled mode and commits the cheapest.
func (a *BruteForce) Analyze(ectx *enc.Context, ctx *cabac.ContextTable, split TBSplit, req Request) enc.NodeID {
	checkRequest(req, a.Modes)
	if !req.selectsMode() {
		return inherit(ectx, ctx, a, split, req)
	}
	return refine(ectx, ctx, a, split, req, a.Modes)
}

// refine runs a full trial of every mode in modes, in ascending order, and
// commits the cheapest.
func refine(ectx *enc.Context, ctx *cabac.ContextTable, self IntraPredMode, split TBSplit, req Request, modes ModeSet) enc.NodeID {
	sel := selection{ectx: ectx}
	for _, m := range modes.Modes() {
		trial := ctx.Snapshot()
		id := trialMode(ectx, &trial, self, split, req, m)
		sel.offer(id, &trial)
	}
	return sel.commit(ctx)
}
