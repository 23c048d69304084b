package algo

import (
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/enc"
)

const testQP = 27

func texturedPlane(w, h int, seed int64) *enc.Plane {
	rng := rand.New(rand.NewSource(seed))
	p := enc.NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 60 + 2*x + y + rng.Intn(24)
			if (x/8+y/8)%2 == 0 {
				v += 40
			}
			p.Pix[y*p.Stride+x] = byte(min(v, 255))
		}
	}
	return p
}

func newTestContext(seq enc.SeqParams, seed int64) *enc.Context {
	return enc.NewContext(texturedPlane(64, 64, seed), seq, enc.LambdaCost(enc.LambdaForQP(testQP)))
}

func seq8x8() enc.SeqParams {
	seq := enc.DefaultSeqParams()
	seq.Log2MinCbSize = 3
	return seq
}

// prepared returns a fresh picture in which every coding block of size
// 1<<log2 preceding (x, y) in coding order has been coded with DC.
func prepared(seq enc.SeqParams, x, y, log2 int) *enc.Context {
	ectx := newTestContext(seq, 7)
	ctx := cabac.NewContextTable(testQP)
	dc := &MinResidual{Modes: DCModes(), Estimator: EstimatorSAD}
	ctbLog2 := seq.Log2CtbSize
	ctb := 1 << ctbLog2
	perCTB := 1 << (2 * (ctbLog2 - log2))
	for cy := 0; cy < ectx.Source.Height; cy += ctb {
		for cx := 0; cx < ectx.Source.Width; cx += ctb {
			for z := 0; z < perCTB; z++ {
				var bx, by int
				for b := 0; b < ctbLog2-log2; b++ {
					bx |= (z >> (2 * b) & 1) << b
					by |= (z >> (2*b + 1) & 1) << b
				}
				px, py := cx+bx<<log2, cy+by<<log2
				if px == x && py == y {
					ectx.Arena.Reset()
					ectx.Stats = enc.Stats{}
					return ectx
				}
				cb := &enc.CodingBlock{X: px, Y: py, Log2Size: log2, QP: testQP}
				dc.Analyze(ectx, ctx, TBSplitBruteForce{}, RootRequest(cb, &ectx.Seq))
			}
		}
	}
	panic("block outside the picture")
}

type run struct {
	ectx  *enc.Context
	ctx   *cabac.ContextTable
	start cabac.ContextTable
	cb    *enc.CodingBlock
	root  enc.NodeID
}

// analyzeCB runs strategy on the coding block at (x, y) of a fresh picture.
func analyzeCB(t *testing.T, strategy IntraPredMode, seq enc.SeqParams, x, y, log2 int, part enc.PartMode) *run {
	t.Helper()
	r := &run{
		ectx: prepared(seq, x, y, log2),
		ctx:  cabac.NewContextTable(testQP),
		cb:   &enc.CodingBlock{X: x, Y: y, Log2Size: log2, PartMode: part, QP: testQP},
	}
	r.start = r.ctx.Snapshot()
	r.root = strategy.Analyze(r.ectx, r.ctx, TBSplitBruteForce{}, RootRequest(r.cb, &r.ectx.Seq))
	r.cb.Root = r.root
	return r
}

func treeSize(a *enc.Arena, id enc.NodeID) int {
	tb := a.Node(id)
	n := 1
	if tb.Split {
		for _, c := range tb.Children {
			n += treeSize(a, c)
		}
	}
	return n
}

func TestModeSetPresets(t *testing.T) {
	tests := []struct {
		subset Subset
		count  int
		modes  string
	}{
		{SubsetAll, 35, ""},
		{SubsetHVPlus, 4, "{0,1,10,26}"},
		{SubsetDC, 1, "{1}"},
		{SubsetPlanar, 1, "{0}"},
	}
	for _, tt := range tests {
		t.Run(tt.subset.String(), func(t *testing.T) {
			s := tt.subset.Modes()
			if s.Count() != tt.count {
				t.Errorf("Count = %d, want %d", s.Count(), tt.count)
			}
			if tt.modes != "" && s.String() != tt.modes {
				t.Errorf("modes = %s, want %s", s, tt.modes)
			}
		})
	}
}

func TestModeSetEnable(t *testing.T) {
	s := AllModes()
	s.DisableAll()
	if s.Count() != 0 {
		t.Fatalf("Count after DisableAll = %d", s.Count())
	}
	s.Enable(34, true)
	s.Enable(3, true)
	s.Enable(3, true)
	if got := s.Modes(); len(got) != 2 || got[0] != 3 || got[1] != 34 {
		t.Errorf("Modes = %v, want [3 34]", got)
	}
	s.Enable(34, false)
	if s.Has(34) || !s.Has(3) || s.Has(35) || s.Has(-1) {
		t.Errorf("membership wrong for %s", s)
	}
}

func TestModeSetEnableRejectsInvalidMode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Enable(35) did not panic")
		}
	}()
	var s ModeSet
	s.Enable(35, true)
}

func TestParseNames(t *testing.T) {
	for _, n := range SubsetNames() {
		s, err := ParseSubset(n)
		if err != nil || s.String() != n {
			t.Errorf("ParseSubset(%q) = %v, %v", n, s, err)
		}
	}
	if s, err := ParseSubset("hv+"); err != nil || s != SubsetHVPlus {
		t.Errorf("ParseSubset is not case-insensitive: %v, %v", s, err)
	}
	for _, n := range EstimatorNames() {
		m, err := ParseEstimator(n)
		if err != nil || m.String() != n {
			t.Errorf("ParseEstimator(%q) = %v, %v", n, m, err)
		}
	}
	for _, n := range KindNames() {
		k, err := ParseKind(n)
		if err != nil || k.String() != n {
			t.Errorf("ParseKind(%q) = %v, %v", n, k, err)
		}
	}
	if _, err := ParseEstimator("sse"); err == nil {
		t.Error("ParseEstimator accepted an unknown name")
	}
	if _, err := ParseKind("exhaustive"); err == nil {
		t.Error("ParseKind accepted an unknown name")
	}
}

func TestEstimate(t *testing.T) {
	const n = 8
	src := make([]byte, n*n)
	pred := make([]byte, n*n)
	for i := range src {
		src[i] = 100
		pred[i] = 98
	}
	tests := []struct {
		method EstimatorMethod
		want   int64
	}{
		{EstimatorSSD, n * n * 4},
		{EstimatorSAD, n * n * 2},
		{EstimatorSATDHadamard, n * n * 2},
	}
	for _, tt := range tests {
		if got := Estimate(tt.method, pred, src, n, n); got != tt.want {
			t.Errorf("%v = %d, want %d", tt.method, got, tt.want)
		}
	}
	if got := Estimate(EstimatorSATDDCT, src, src, n, n); got != 0 {
		t.Errorf("satd-dct of identical blocks = %d", got)
	}
}

func TestBruteForceDeterministic(t *testing.T) {
	a := analyzeCB(t, &BruteForce{Modes: AllModes()}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	b := analyzeCB(t, &BruteForce{Modes: AllModes()}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	ta, tb := a.ectx.Arena.Node(a.root), b.ectx.Arena.Node(b.root)
	if ta.IntraMode != tb.IntraMode || ta.Cost != tb.Cost {
		t.Fatalf("runs differ: mode %d cost %v vs mode %d cost %v", ta.IntraMode, ta.Cost, tb.IntraMode, tb.Cost)
	}
	if !a.ctx.Equal(b.ctx) {
		t.Error("committed contexts differ between identical runs")
	}
	if got := a.ectx.Stats.ModeTrials; got != 35 {
		t.Errorf("ModeTrials = %d, want 35", got)
	}
}

func TestBruteForceHonorsModeSet(t *testing.T) {
	r := analyzeCB(t, &BruteForce{Modes: HVPlusModes()}, seq8x8(), 16, 8, 3, enc.Part2Nx2N)
	mode := r.ectx.Arena.Node(r.root).IntraMode
	if !HVPlusModes().Has(mode) {
		t.Errorf("selected disabled mode %d", mode)
	}
	if r.ectx.Stats.ModeTrials != 4 {
		t.Errorf("ModeTrials = %d, want 4", r.ectx.Stats.ModeTrials)
	}
	if r.cb.IntraModes[0] != mode {
		t.Errorf("CB mode = %d, want %d", r.cb.IntraModes[0], mode)
	}
}

// The winner is the argmin of the cost and a full trial of it reproduces
// that cost.
func TestBruteForcePicksMinimum(t *testing.T) {
	r := analyzeCB(t, &BruteForce{Modes: AllModes()}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	best := r.ectx.Arena.Node(r.root)
	for _, m := range AllModes().Modes() {
		var one ModeSet
		one.Enable(m, true)
		s := analyzeCB(t, &BruteForce{Modes: one}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
		c := s.ectx.Arena.Node(s.root).Cost
		if c < best.Cost {
			t.Errorf("mode %d cost %v beats winner %d cost %v", m, c, best.IntraMode, best.Cost)
		}
		if m == best.IntraMode && c != best.Cost {
			t.Errorf("winner cost %v not reproduced by a single trial: %v", best.Cost, c)
		}
	}
}

func TestFastBruteLargeKeepMatchesBruteForce(t *testing.T) {
	bf := analyzeCB(t, &BruteForce{Modes: AllModes()}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	fb := analyzeCB(t, &FastBrute{Modes: AllModes(), KeepNBest: 32 + 3, Estimator: EstimatorSATDHadamard},
		seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	a, b := bf.ectx.Arena.Node(bf.root), fb.ectx.Arena.Node(fb.root)
	if a.IntraMode != b.IntraMode || a.Cost != b.Cost {
		t.Errorf("fast brute picked %d (%v), brute force %d (%v)", b.IntraMode, b.Cost, a.IntraMode, a.Cost)
	}
}

func TestFastBruteRefinementCount(t *testing.T) {
	tests := []struct {
		keep, trials int
	}{
		{0, 1},
		{1, 1},
		{5, 5},
		{32, 32},
	}
	for _, tt := range tests {
		fb := &FastBrute{Modes: AllModes(), KeepNBest: tt.keep, Estimator: EstimatorSATDHadamard}
		r := analyzeCB(t, fb, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
		if r.ectx.Stats.ModeTrials != int64(tt.trials) {
			t.Errorf("keep %d: ModeTrials = %d, want %d", tt.keep, r.ectx.Stats.ModeTrials, tt.trials)
		}
		if r.ectx.Stats.Estimates != 35 {
			t.Errorf("keep %d: Estimates = %d, want 35", tt.keep, r.ectx.Stats.Estimates)
		}
	}
}

func TestFastBruteKeepsBestRanked(t *testing.T) {
	fb := &FastBrute{Modes: AllModes(), KeepNBest: 1, Estimator: EstimatorSAD}
	r := analyzeCB(t, fb, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	want := cheapestMode(t, EstimatorSAD, 8, 8, 3)
	if got := r.ectx.Arena.Node(r.root).IntraMode; got != want {
		t.Errorf("mode = %d, want best ranked %d", got, want)
	}
}

func TestFastBruteRefineMPM(t *testing.T) {
	fb := &FastBrute{Modes: AllModes(), KeepNBest: 1, Estimator: EstimatorSATDHadamard, RefineMPM: true}
	r := analyzeCB(t, fb, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	trials := r.ectx.Stats.ModeTrials
	if trials < 3 || trials > 4 {
		t.Errorf("ModeTrials = %d, want 3 MPMs plus the best ranked mode", trials)
	}
}

// rankedModes returns the enabled modes of the TB at (x, y) in Fast Brute
// rank order.
func rankedModes(method EstimatorMethod, x, y, log2 int) []int {
	ectx := prepared(seq8x8(), x, y, log2)
	cb := &enc.CodingBlock{X: x, Y: y, Log2Size: log2, QP: testQP}
	r := screen(ectx, RootRequest(cb, &ectx.Seq), AllModes(), method)
	rank(r)
	modes := make([]int, len(r))
	for i := range r {
		modes[i] = r[i].mode
	}
	return modes
}

func TestFastBruteCandidates(t *testing.T) {
	ranking := rankedModes(EstimatorSATDHadamard, 8, 8, 3)
	tests := []struct {
		keep, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{5, 5},
		{34, 34},
		{40, 35},
	}
	for _, tt := range tests {
		ectx := prepared(seq8x8(), 8, 8, 3)
		cb := &enc.CodingBlock{X: 8, Y: 8, Log2Size: 3, QP: testQP}
		fb := &FastBrute{Modes: AllModes(), KeepNBest: tt.keep, Estimator: EstimatorSATDHadamard}
		got := fb.candidates(ectx, RootRequest(cb, &ectx.Seq))

		var want ModeSet
		for _, m := range ranking[:tt.want] {
			want.Enable(m, true)
		}
		if got != want {
			t.Errorf("keep %d: candidates %v, want best ranked %v", tt.keep, got.Modes(), want.Modes())
		}
	}
}

// The Fast Brute winner is the true RD minimum of the five best ranked
// modes, each measured by a single-mode brute force.
func TestFastBruteRefinesBestRanked(t *testing.T) {
	const keep = 5
	for _, pos := range []struct{ x, y int }{{8, 8}, {16, 8}, {8, 16}, {24, 24}} {
		ranking := rankedModes(EstimatorSATDHadamard, pos.x, pos.y, 3)
		top := ranking[:keep]

		wantMode, wantCost := -1, math.Inf(1)
		for _, m := range slices.Sorted(slices.Values(top)) {
			var one ModeSet
			one.Enable(m, true)
			r := analyzeCB(t, &BruteForce{Modes: one}, seq8x8(), pos.x, pos.y, 3, enc.Part2Nx2N)
			if c := r.ectx.Arena.Node(r.root).Cost; c < wantCost {
				wantMode, wantCost = m, c
			}
		}

		fb := &FastBrute{Modes: AllModes(), KeepNBest: keep, Estimator: EstimatorSATDHadamard}
		r := analyzeCB(t, fb, seq8x8(), pos.x, pos.y, 3, enc.Part2Nx2N)
		got := r.ectx.Arena.Node(r.root)
		if got.IntraMode != wantMode || got.Cost != wantCost {
			t.Errorf("(%d,%d): fast brute picked %d (%v), best of %v is %d (%v)",
				pos.x, pos.y, got.IntraMode, got.Cost, top, wantMode, wantCost)
		}
		if !slices.Contains(top, got.IntraMode) {
			t.Errorf("(%d,%d): mode %d is not among the best ranked %v", pos.x, pos.y, got.IntraMode, top)
		}
	}
}

func TestFastBruteKeepZeroMatchesKeepOne(t *testing.T) {
	zero := analyzeCB(t, &FastBrute{Modes: AllModes(), KeepNBest: 0, Estimator: EstimatorSATDHadamard},
		seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	one := analyzeCB(t, &FastBrute{Modes: AllModes(), KeepNBest: 1, Estimator: EstimatorSATDHadamard},
		seq8x8(), 8, 8, 3, enc.Part2Nx2N)
	a, b := zero.ectx.Arena.Node(zero.root), one.ectx.Arena.Node(one.root)
	if a.IntraMode != b.IntraMode || a.Cost != b.Cost {
		t.Errorf("keep 0 picked %d (%v), keep 1 %d (%v)", a.IntraMode, a.Cost, b.IntraMode, b.Cost)
	}
	if want := rankedModes(EstimatorSATDHadamard, 8, 8, 3)[0]; a.IntraMode != want {
		t.Errorf("keep 0 picked %d, want best ranked %d", a.IntraMode, want)
	}
}

// cheapestMode returns the argmin of the cheap estimate for the TB at
// (x, y) of an untouched picture, the lowest mode winning ties.
func cheapestMode(t *testing.T, method EstimatorMethod, x, y, log2 int) int {
	t.Helper()
	ectx := prepared(seq8x8(), x, y, log2)
	n := 1 << log2
	var nb dsp.Neighbors
	ectx.LoadNeighbors(&nb, x, y, log2)
	pred := make([]byte, n*n)
	best, bestCost := -1, int64(math.MaxInt64)
	for m := 0; m < dsp.NumIntraModes; m++ {
		nb.Predict(m, pred)
		if c := Estimate(method, pred, ectx.Source.Block(x, y), ectx.Source.Stride, n); c < bestCost {
			best, bestCost = m, c
		}
	}
	return best
}

func TestMinResidual(t *testing.T) {
	for _, method := range []EstimatorMethod{EstimatorSSD, EstimatorSAD, EstimatorSATDDCT, EstimatorSATDHadamard} {
		t.Run(method.String(), func(t *testing.T) {
			r := analyzeCB(t, &MinResidual{Modes: AllModes(), Estimator: method}, seq8x8(), 8, 8, 3, enc.Part2Nx2N)
			if r.ectx.Stats.ModeTrials != 1 {
				t.Errorf("ModeTrials = %d, want 1", r.ectx.Stats.ModeTrials)
			}
			if r.ectx.Stats.Estimates != 35 {
				t.Errorf("Estimates = %d, want 35", r.ectx.Stats.Estimates)
			}
			want := cheapestMode(t, method, 8, 8, 3)
			if got := r.ectx.Arena.Node(r.root).IntraMode; got != want {
				t.Errorf("mode = %d, want %d", got, want)
			}
		})
	}
}

// Without any reference sample every prediction is flat 128, so all modes
// tie and the lowest wins.
func TestMinResidualTieAtOrigin(t *testing.T) {
	r := analyzeCB(t, &MinResidual{Modes: AllModes(), Estimator: EstimatorSSD}, seq8x8(), 0, 0, 3, enc.Part2Nx2N)
	if got := r.ectx.Arena.Node(r.root).IntraMode; got != dsp.ModePlanar {
		t.Errorf("mode = %d, want planar", got)
	}
	var s ModeSet
	s.Enable(5, true)
	s.Enable(20, true)
	r = analyzeCB(t, &MinResidual{Modes: s, Estimator: EstimatorSSD}, seq8x8(), 0, 0, 3, enc.Part2Nx2N)
	if got := r.ectx.Arena.Node(r.root).IntraMode; got != 5 {
		t.Errorf("mode = %d, want 5", got)
	}
}

// The committed context equals the caller's context after coding the kept
// tree, and the recorded cost matches a re-measurement.
func TestCommittedContextMatchesWinner(t *testing.T) {
	strategies := map[string]func() IntraPredMode{
		"brute-force": func() IntraPredMode { return &BruteForce{Modes: AllModes()} },
		"fast-brute": func() IntraPredMode {
			return &FastBrute{Modes: AllModes(), KeepNBest: 5, Estimator: EstimatorSATDHadamard}
		},
		"min-residual": func() IntraPredMode {
			return &MinResidual{Modes: AllModes(), Estimator: EstimatorSATDHadamard}
		},
	}
	geometries := []struct {
		name string
		seq  enc.SeqParams
		x, y int
		log2 int
		part enc.PartMode
	}{
		{"8x8", seq8x8(), 8, 16, 3, enc.Part2Nx2N},
		{"8x8-NxN", seq8x8(), 8, 16, 3, enc.PartNxN},
		{"16x16", enc.DefaultSeqParams(), 16, 16, 4, enc.Part2Nx2N},
		{"32x32", func() enc.SeqParams { s := enc.DefaultSeqParams(); s.Log2MinCbSize = 5; return s }(), 32, 0, 5, enc.Part2Nx2N},
	}
	for name, newStrategy := range strategies {
		for _, g := range geometries {
			t.Run(name+"/"+g.name, func(t *testing.T) {
				r := analyzeCB(t, newStrategy(), g.seq, g.x, g.y, g.log2, g.part)
				tb := r.ectx.Arena.Node(r.root)

				replay := r.start.Snapshot()
				dist, rate, cost := r.ectx.MeasureTree(&replay, r.root)
				if !replay.Equal(r.ctx) {
					t.Error("caller context differs from a replay of the kept tree")
				}
				if dist != tb.Distortion {
					t.Errorf("distortion = %d, replay %d", tb.Distortion, dist)
				}
				if math.Abs(rate-tb.Rate) > 1e-6 || math.Abs(cost-tb.Cost) > 1e-6 {
					t.Errorf("rate/cost = %v/%v, replay %v/%v", tb.Rate, tb.Cost, rate, cost)
				}
				if live, want := r.ectx.Arena.Live(), treeSize(&r.ectx.Arena, r.root); live != want {
					t.Errorf("arena holds %d nodes, kept tree has %d", live, want)
				}
			})
		}
	}
}

func TestNxNSelectsFourModes(t *testing.T) {
	r := analyzeCB(t, &BruteForce{Modes: HVPlusModes()}, seq8x8(), 8, 8, 3, enc.PartNxN)
	root := r.ectx.Arena.Node(r.root)
	if !root.Split || root.SelectsMode {
		t.Fatalf("NxN root: split %v selectsMode %v", root.Split, root.SelectsMode)
	}
	if r.ectx.Stats.ModeTrials != 16 {
		t.Errorf("ModeTrials = %d, want 4 per prediction block", r.ectx.Stats.ModeTrials)
	}
	for i, c := range root.Children {
		ch := r.ectx.Arena.Node(c)
		if !ch.SelectsMode || ch.Log2Size != 2 || ch.BlkIdx != i {
			t.Errorf("child %d: selectsMode %v log2 %d blkIdx %d", i, ch.SelectsMode, ch.Log2Size, ch.BlkIdx)
		}
		if r.cb.IntraModes[i] != ch.IntraMode {
			t.Errorf("CB mode %d = %d, want %d", i, r.cb.IntraModes[i], ch.IntraMode)
		}
		if got := r.ectx.ModeAt(ch.X, ch.Y); got != ch.IntraMode {
			t.Errorf("mode map at child %d = %d, want %d", i, got, ch.IntraMode)
		}
	}
}

// Children of a split 2Nx2N TB inherit the mode selected at the root.
func TestSplitChildrenInheritMode(t *testing.T) {
	seq := enc.DefaultSeqParams()
	seq.MaxTransformHierarchyDepthIntra = 2
	r := analyzeCB(t, &BruteForce{Modes: HVPlusModes()}, seq, 16, 16, 4, enc.Part2Nx2N)
	root := r.ectx.Arena.Node(r.root)
	var check func(id enc.NodeID)
	check = func(id enc.NodeID) {
		tb := r.ectx.Arena.Node(id)
		if tb.IntraMode != root.IntraMode {
			t.Errorf("TB at (%d,%d) depth %d has mode %d, want %d", tb.X, tb.Y, tb.TrafoDepth, tb.IntraMode, root.IntraMode)
		}
		if id != r.root && tb.SelectsMode {
			t.Errorf("TB at depth %d selects a mode", tb.TrafoDepth)
		}
		if tb.Split {
			for _, c := range tb.Children {
				check(c)
			}
		}
	}
	check(r.root)
	if r.ectx.Stats.ModeTrials != 4 {
		t.Errorf("ModeTrials = %d, want 4", r.ectx.Stats.ModeTrials)
	}
}

func TestPassThroughWithoutParentUsesDC(t *testing.T) {
	ectx := newTestContext(seq8x8(), 3)
	cb := &enc.CodingBlock{X: 8, Y: 8, Log2Size: 3, QP: testQP}
	req := RootRequest(cb, &ectx.Seq)
	req.TrafoDepth = 1
	req.Log2Size = 2
	req.MaxTrafoDepth = 1
	ctx := cabac.NewContextTable(testQP)
	id := (&BruteForce{Modes: AllModes()}).Analyze(ectx, ctx, TBSplitBruteForce{}, req)
	if got := ectx.Arena.Node(id).IntraMode; got != dsp.ModeDC {
		t.Errorf("mode = %d, want DC", got)
	}
	if ectx.Stats.ModeTrials != 0 {
		t.Errorf("ModeTrials = %d, want 0", ectx.Stats.ModeTrials)
	}
}

func TestAnalyzeContractViolations(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Request)
		set  ModeSet
		want string
	}{
		{"empty set", func(*Request) {}, 0, "no enabled mode"},
		{"depth", func(r *Request) { r.TrafoDepth = r.MaxTrafoDepth + 1 }, AllModes(), "exceeds maxTrafoDepth"},
		{"size", func(r *Request) { r.Log2Size = 7 }, AllModes(), "outside [2,6]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ectx := newTestContext(seq8x8(), 1)
			cb := &enc.CodingBlock{X: 8, Y: 8, Log2Size: 3, QP: testQP}
			req := RootRequest(cb, &ectx.Seq)
			tt.mod(&req)
			ctx := cabac.NewContextTable(testQP)
			before := ctx.Snapshot()
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("no panic")
				}
				if msg, _ := r.(string); !strings.Contains(msg, tt.want) {
					t.Errorf("panic %q does not mention %q", msg, tt.want)
				}
				if !ctx.Equal(&before) {
					t.Error("context modified before the panic")
				}
			}()
			(&MinResidual{Modes: tt.set}).Analyze(ectx, ctx, TBSplitBruteForce{}, req)
		})
	}
}

func TestSelectionKeepsFirstOnTie(t *testing.T) {
	ectx := newTestContext(seq8x8(), 1)
	a, b := ectx.Arena.New(), ectx.Arena.New()
	ectx.Arena.Node(a).Cost = 10
	ectx.Arena.Node(b).Cost = 10
	ctxA, ctxB := cabac.NewContextTable(10), cabac.NewContextTable(40)

	sel := selection{ectx: ectx}
	sel.offer(a, ctxA)
	sel.offer(b, ctxB)
	if sel.best != a {
		t.Fatalf("best = %d, want first offer %d", sel.best, a)
	}
	if !sel.ctx.Equal(ctxA) {
		t.Error("selection kept the loser's contexts")
	}
	if ectx.Arena.Live() != 1 {
		t.Errorf("Live = %d, loser not released", ectx.Arena.Live())
	}

	c := ectx.Arena.New()
	ectx.Arena.Node(c).Cost = 9.5
	sel.offer(c, ctxB)
	if sel.best != c || !sel.ctx.Equal(ctxB) {
		t.Error("cheaper offer did not replace the best")
	}
}

func TestRank(t *testing.T) {
	r := []ranked{{0, 5}, {1, 3}, {2, 5}, {3, 3}, {4, 1}}
	rank(r)
	want := []int{4, 1, 3, 0, 2}
	for i, m := range want {
		if r[i].mode != m {
			t.Fatalf("rank order = %v, want modes %v", r, want)
		}
	}
}

func TestNew(t *testing.T) {
	p := DefaultParams()
	if _, ok := New(KindBruteForce, p).(*BruteForce); !ok {
		t.Error("brute-force kind")
	}
	fb, ok := New(KindFastBrute, p).(*FastBrute)
	if !ok || fb.KeepNBest != 5 || fb.Estimator != EstimatorSATDHadamard || fb.RefineMPM {
		t.Errorf("fast-brute = %+v", fb)
	}
	mr, ok := New(KindMinResidual, p).(*MinResidual)
	if !ok || mr.Estimator != EstimatorSATDHadamard || mr.Modes != AllModes() {
		t.Errorf("min-residual = %+v", mr)
	}
}

func BenchmarkFastBrute16x16(b *testing.B) {
	seq := enc.DefaultSeqParams()
	fb := &FastBrute{Modes: AllModes(), KeepNBest: 5, Estimator: EstimatorSATDHadamard}
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		ectx := prepared(seq, 16, 16, 4)
		ctx := cabac.NewContextTable(testQP)
		b.StartTimer()
		cb := &enc.CodingBlock{X: 16, Y: 16, Log2Size: 4, QP: testQP}
		fb.Analyze(ectx, ctx, TBSplitBruteForce{}, RootRequest(cb, &ectx.Seq))
	}
}
