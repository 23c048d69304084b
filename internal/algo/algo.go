// Package algo implements the intra mode decision: the strategies that pick
// the luma prediction mode of a transform block, and the transform split
// decision they recurse through.
//
// A strategy is called for one TB position. It evaluates candidate modes on
// private copies of the caller's context table, keeps the cheapest trial
// and commits only that trial's contexts, reconstruction and mode map.
package algo

import (
	"fmt"
	"slices"

	"github.com/deepteams/intrapred/internal/assert"
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/enc"
	"github.com/deepteams/intrapred/internal/pool"
)

// Request locates the TB to analyze.
type Request struct {
	CB            *enc.CodingBlock
	Parent        enc.NodeID
	X0, Y0        int
	XBase, YBase  int
	Log2Size      int
	BlkIdx        int
	TrafoDepth    int
	MaxTrafoDepth int
	IntraSplit    bool
}

// RootRequest returns the request for the transform tree root of cb.
func RootRequest(cb *enc.CodingBlock, seq *enc.SeqParams) Request {
	return Request{
		CB:            cb,
		X0:            cb.X,
		Y0:            cb.Y,
		XBase:         cb.X,
		YBase:         cb.Y,
		Log2Size:      cb.Log2Size,
		MaxTrafoDepth: cb.MaxTrafoDepth(seq),
		IntraSplit:    cb.IntraSplit(),
	}
}

// child returns the request for quadrant i of the TB r describes.
func (r Request) child(parent enc.NodeID, i int) Request {
	half := 1 << (r.Log2Size - 1)
	c := r
	c.Parent = parent
	c.XBase, c.YBase = r.X0, r.Y0
	c.X0 = r.X0 + (i&1)*half
	c.Y0 = r.Y0 + (i>>1)*half
	c.Log2Size = r.Log2Size - 1
	c.BlkIdx = i
	c.TrafoDepth = r.TrafoDepth + 1
	return c
}

// selectsMode reports whether the intra mode is chosen at this TB: at the
// root for 2Nx2N and at depth 1 for NxN.
func (r Request) selectsMode() bool {
	if r.IntraSplit {
		return r.TrafoDepth == 1
	}
	return r.TrafoDepth == 0
}

// IntraPredMode chooses the intra mode of a TB. Analyze returns the kept
// node; ctx then reflects exactly the coding of that node.
type IntraPredMode interface {
	Analyze(ectx *enc.Context, ctx *cabac.ContextTable, split TBSplit, req Request) enc.NodeID
}

// TBSplit decides whether the TB id, whose mode is already set, is coded
// directly or split into four, calling mode for the children.
type TBSplit interface {
	Analyze(ectx *enc.Context, ctx *cabac.ContextTable, mode IntraPredMode, id enc.NodeID, req Request) enc.NodeID
}

// Kind names a mode decision strategy.
type Kind int

const (
	KindBruteForce Kind = iota
	KindFastBrute
	KindMinResidual
)

var kindNames = [...]string{"brute-force", "fast-brute", "min-residual"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindNames lists the accepted strategy names.
func KindNames() []string { return kindNames[:] }

// ParseKind returns the strategy named s.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown intra mode strategy %q", s)
}

// Params are the strategy tunables.
type Params struct {
	Modes ModeSet

	// Fast brute.
	KeepNBest     int
	FastEstimator EstimatorMethod
	RefineMPM     bool

	// Min residual.
	MinResidualEstimator EstimatorMethod
}

// DefaultParams returns all modes, 5 refined candidates and Hadamard SATD.
func DefaultParams() Params {
	return Params{
		Modes:                AllModes(),
		KeepNBest:            5,
		FastEstimator:        EstimatorSATDHadamard,
		MinResidualEstimator: EstimatorSATDHadamard,
	}
}

// New returns the strategy kind configured with p.
func New(kind Kind, p Params) IntraPredMode {
	switch kind {
	case KindBruteForce:
		return &BruteForce{Modes: p.Modes}
	case KindFastBrute:
		return &FastBrute{Modes: p.Modes, KeepNBest: p.KeepNBest, Estimator: p.FastEstimator, RefineMPM: p.RefineMPM}
	case KindMinResidual:
		return &MinResidual{Modes: p.Modes, Estimator: p.MinResidualEstimator}
	}
	panic(fmt.Sprintf("algo: unknown strategy %d", int(kind)))
}

func checkRequest(req Request, modes ModeSet) {
	assert.That(modes.Count() > 0, "intra mode analysis with no enabled mode")
	assert.That(req.TrafoDepth <= req.MaxTrafoDepth,
		"trafoDepth %d exceeds maxTrafoDepth %d", req.TrafoDepth, req.MaxTrafoDepth)
	assert.That(req.Log2Size >= 2 && req.Log2Size <= 6, "log2TbSize %d outside [2,6]", req.Log2Size)
	assert.That(req.CB != nil, "request without coding block")
}

func newNode(ectx *enc.Context, req Request) enc.NodeID {
	return ectx.NewTB(req.CB, req.Parent, req.X0, req.Y0, req.XBase, req.YBase,
		req.Log2Size, req.BlkIdx, req.TrafoDepth)
}

// inherit codes a TB whose mode was chosen above it: the mode is taken from
// the parent and the split decision is made directly on ctx.
func inherit(ectx *enc.Context, ctx *cabac.ContextTable, self IntraPredMode, split TBSplit, req Request) enc.NodeID {
	id := newNode(ectx, req)
	mode := dsp.ModeDC
	if req.Parent != enc.NoNode {
		mode = ectx.Arena.Node(req.Parent).IntraMode
	}
	ectx.Arena.Node(id).IntraMode = mode
	return split.Analyze(ectx, ctx, self, id, req)
}

// trialMode fully evaluates mode at the TB of req against ctx, which must be
// a private copy: the mode syntax, then the split decision of the tree.
func trialMode(ectx *enc.Context, ctx *cabac.ContextTable, self IntraPredMode, split TBSplit, req Request, mode int) enc.NodeID {
	ectx.Stats.ModeTrials++
	id := newNode(ectx, req)
	tb := ectx.Arena.Node(id)
	tb.SelectsMode = true
	tb.IntraMode = mode

	est := cabac.NewEstimator(ctx)
	ectx.EncodeIntraMode(est, req.X0, req.Y0, mode)

	id = split.Analyze(ectx, ctx, self, id, req)
	tb = ectx.Arena.Node(id)
	tb.Rate += est.Bits()
	tb.Cost = ectx.Cost(tb.Distortion, tb.Rate)
	return id
}

// selection keeps the cheapest of a series of trials, each coded against its
// own copy of the caller's context table. Losers are released as soon as
// they lose. Ties keep the earlier trial.
type selection struct {
	ectx *enc.Context
	best enc.NodeID
	cost float64
	ctx  cabac.ContextTable
}

func (s *selection) offer(id enc.NodeID, ctx *cabac.ContextTable) {
	cost := s.ectx.Arena.Node(id).Cost
	if s.best != enc.NoNode && !(cost < s.cost) {
		s.ectx.Arena.Release(id)
		return
	}
	s.ectx.Arena.Release(s.best)
	s.best = id
	s.cost = cost
	s.ctx = *ctx
}

// commit copies the winner's contexts into ctx and its reconstruction and
// modes into the picture.
func (s *selection) commit(ctx *cabac.ContextTable) enc.NodeID {
	assert.That(s.best != enc.NoNode, "no candidate was evaluated")
	ctx.Restore(s.ctx)
	s.ectx.Commit(s.best)
	return s.best
}

type ranked struct {
	mode int
	cost int64
}

// screen returns the cheap estimate of every mode in modes, in ascending
// mode order. The reconstruction is only read.
func screen(ectx *enc.Context, req Request, modes ModeSet, method EstimatorMethod) []ranked {
	n := 1 << req.Log2Size
	var nb dsp.Neighbors
	ectx.LoadNeighbors(&nb, req.X0, req.Y0, req.Log2Size)
	pred := pool.Pixels(n * n)
	defer pool.PutPixels(pred)
	src := ectx.Source.Block(req.X0, req.Y0)

	out := make([]ranked, 0, modes.Count())
	for _, m := range modes.Modes() {
		nb.Predict(m, pred)
		out = append(out, ranked{mode: m, cost: Estimate(method, pred, src, ectx.Source.Stride, n)})
		ectx.Stats.Estimates++
	}
	return out
}

// rank sorts r by ascending estimate, keeping mode order among equals.
func rank(r []ranked) {
	slices.SortStableFunc(r, func(a, b ranked) int {
		switch {
		case a.cost < b.cost:
			return -1
		case a.cost > b.cost:
			return 1
		}
		return 0
	})
}
