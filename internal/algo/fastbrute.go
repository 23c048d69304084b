package algo

import (
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/enc"
)

// FastBrute ranks every enabled mode by a cheap estimate and fully
// evaluates only the KeepNBest best ranked ones. At least one candidate is
// always refined. The zero Estimator is EstimatorSSD; use
// EstimatorSATDHadamard for the default screening.
type FastBrute struct {
	Modes     ModeSet
	KeepNBest int
	Estimator EstimatorMethod

	// RefineMPM adds the enabled most probable modes to the refined set.
	RefineMPM bool
}

// Analyze screens the enabled modes, fully evaluates the refined set and
// commits the cheapest.
func (a *FastBrute) Analyze(ectx *enc.Context, ctx *cabac.ContextTable, split TBSplit, req Request) enc.NodeID {
	checkRequest(req, a.Modes)
	if !req.selectsMode() {
		return inherit(ectx, ctx, a, split, req)
	}
	return refine(ectx, ctx, a, split, req, a.candidates(ectx, req))
}

// candidates returns the modes to refine: the KeepNBest best ranked, plus
// the enabled MPMs when RefineMPM is set.
func (a *FastBrute) candidates(ectx *enc.Context, req Request) ModeSet {
	ranking := screen(ectx, req, a.Modes, a.Estimator)
	rank(ranking)
	keep := max(1, min(a.KeepNBest, len(ranking)))

	var set ModeSet
	for _, r := range ranking[:keep] {
		set.Enable(r.mode, true)
	}
	if a.RefineMPM {
		for _, m := range ectx.MPMCandidates(req.X0, req.Y0) {
			if a.Modes.Has(m) {
				set.Enable(m, true)
			}
		}
	}
	return set
}
