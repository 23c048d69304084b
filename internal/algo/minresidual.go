package algo

import (
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/enc"
)

// MinResidual picks the mode with the lowest cheap estimate and codes only
// that one. The zero Estimator is EstimatorSSD.
type MinResidual struct {
	Modes     ModeSet
	Estimator EstimatorMethod
}

// Analyze runs a single full trial of the mode with the lowest estimate.
func (a *MinResidual) Analyze(ectx *enc.Context, ctx *cabac.ContextTable, split TBSplit, req Request) enc.NodeID {
	checkRequest(req, a.Modes)
	if !req.selectsMode() {
		return inherit(ectx, ctx, a, split, req)
	}

	ranking := screen(ectx, req, a.Modes, a.Estimator)
	best := ranking[0]
	for _, r := range ranking[1:] {
		if r.cost < best.cost {
			best = r
		}
	}

	trial := ctx.Snapshot()
	id := trialMode(ectx, &trial, a, split, req, best.mode)
	sel := selection{ectx: ectx}
	sel.offer(id, &trial)
	return sel.commit(ctx)
}
