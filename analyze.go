package intrapred

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/deepteams/intrapred/internal/algo"
	"github.com/deepteams/intrapred/internal/cabac"
	"github.com/deepteams/intrapred/internal/dsp"
	"github.com/deepteams/intrapred/internal/enc"
	"github.com/deepteams/intrapred/internal/logging"
)

// NumModes is the number of HEVC intra prediction modes.
const NumModes = dsp.NumIntraModes

// ErrEmptyImage is returned for an image without pixels.
var ErrEmptyImage = errors.New("intrapred: empty image")

// Stats counts the work done by the search.
type Stats struct {
	Estimates   int64 // cheap estimator evaluations
	ModeTrials  int64 // full RD evaluations of a candidate mode
	SplitTrials int64 // transform split alternatives evaluated
	LeafCodings int64 // transform blocks coded
}

// Result is the outcome of a picture analysis.
type Result struct {
	Width, Height             int
	PaddedWidth, PaddedHeight int
	QP                        int
	Strategy                  string
	Subset                    string

	CodingBlocks     int
	PredictionBlocks int
	ModeHistogram    [NumModes]int

	// EstimatedBits is the analysis rate estimate of the CU headers and
	// transform trees, excluding the slice termination.
	EstimatedBits float64
	// Payload is the CABAC coded picture, nil when skipped.
	Payload []byte
	// ContextsMatch reports that the payload pass ended with the same
	// context states as the analysis.
	ContextsMatch bool

	// PSNR of the luma reconstruction over the visible area.
	PSNR     float64
	Recon    *image.Gray
	Stats    Stats
	Duration time.Duration

	modes      []int8
	modeStride int
}

// ModeAt returns the luma mode chosen for the sample (x, y) of the padded
// picture.
func (r *Result) ModeAt(x, y int) int {
	return int(r.modes[(y>>2)*r.modeStride+(x>>2)])
}

// Analyze runs the mode decision over img.
func Analyze(img image.Image, opts *Options) (*Result, error) {
	return AnalyzeContext(context.Background(), img, opts)
}

// AnalyzeContext is Analyze with cancellation, checked between coding tree
// blocks.
func AnalyzeContext(ctx context.Context, img image.Image, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("intrapred: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	start := time.Now()
	seq := cfg.SeqParams()
	ctbSize := 1 << seq.Log2CtbSize
	src := lumaPlane(img).Padded(ctbSize)
	ectx := enc.NewContext(src, seq, enc.LambdaCost(enc.LambdaForQP(cfg.QP)))
	strategy := cfg.NewStrategy()

	log.Info("analysis configured",
		slog.Int("width", b.Dx()), slog.Int("height", b.Dy()),
		slog.String("strategy", cfg.Strategy.String()),
		slog.String("subset", cfg.Subset.String()),
		slog.Int("qp", cfg.QP),
		slog.Int("ctb", ctbSize), slog.Int("cb", 1<<cfg.Log2CbSize),
		slog.String("part", cfg.PartMode.String()))

	res := &Result{
		Width:        b.Dx(),
		Height:       b.Dy(),
		PaddedWidth:  src.Width,
		PaddedHeight: src.Height,
		QP:           cfg.QP,
		Strategy:     cfg.Strategy.String(),
		Subset:       cfg.Subset.String(),
	}

	tables := cabac.NewContextTable(cfg.QP)
	order := zOrder(seq.Log2CtbSize, cfg.Log2CbSize)
	ctbsX, ctbsY := src.Width/ctbSize, src.Height/ctbSize
	ctbs := make([][]*enc.CodingBlock, 0, ctbsX*ctbsY)

	for cy := 0; cy < ctbsY; cy++ {
		for cx := 0; cx < ctbsX; cx++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			x0, y0 := cx*ctbSize, cy*ctbSize
			trials := ectx.Stats.ModeTrials
			blocks := make([]*enc.CodingBlock, 0, len(order))
			for _, p := range order {
				cb := &enc.CodingBlock{
					X:        x0 + p.x,
					Y:        y0 + p.y,
					Log2Size: cfg.Log2CbSize,
					PartMode: cfg.PartMode,
					QP:       cfg.QP,
				}
				res.EstimatedBits += analyzeCB(ectx, tables, strategy, cb)
				blocks = append(blocks, cb)
			}
			ctbs = append(ctbs, blocks)
			log.Debug("ctb analyzed", slog.Int("x", x0), slog.Int("y", y0),
				slog.Int64("mode_trials", ectx.Stats.ModeTrials-trials))
			if opts.Progress != nil {
				opts.Progress(len(ctbs), ctbsX*ctbsY)
			}
		}
	}

	for _, blocks := range ctbs {
		for _, cb := range blocks {
			res.CodingBlocks++
			n := 1
			if cb.IntraSplit() {
				n = 4
			}
			for _, m := range cb.IntraModes[:n] {
				res.ModeHistogram[m]++
				res.PredictionBlocks++
			}
		}
	}

	if !opts.SkipPayload {
		var final *cabac.ContextTable
		res.Payload, final = encodePayload(ectx, ctbs, cfg.QP)
		res.ContextsMatch = final.Equal(tables)
		if !res.ContextsMatch {
			log.Warn("payload contexts diverge from the analysis")
		}
	}

	sse := dsp.SSD(src.Pix, src.Stride, ectx.Recon.Pix, ectx.Recon.Stride, res.Width, res.Height)
	res.PSNR = dsp.PSNR(sse, res.Width*res.Height)
	res.Recon = grayImage(ectx.Recon, res.Width, res.Height)
	res.Stats = Stats(ectx.Stats)
	res.modeStride = src.Width >> 2
	res.modes = make([]int8, res.modeStride*(src.Height>>2))
	for y := 0; y < src.Height; y += 4 {
		for x := 0; x < src.Width; x += 4 {
			res.modes[(y>>2)*res.modeStride+(x>>2)] = int8(ectx.ModeAt(x, y))
		}
	}
	res.Duration = time.Since(start)

	log.Info("analysis complete",
		slog.Int("coding_blocks", res.CodingBlocks),
		slog.Float64("psnr", res.PSNR),
		slog.Float64("estimated_bits", res.EstimatedBits),
		slog.Int("payload_bytes", len(res.Payload)),
		slog.Int64("mode_trials", res.Stats.ModeTrials),
		slog.Duration("elapsed", res.Duration))
	return res, nil
}

// analyzeCB codes the CU header of cb and runs the mode decision on its
// transform tree, returning the estimated bits of both.
func analyzeCB(ectx *enc.Context, tables *cabac.ContextTable, strategy algo.IntraPredMode, cb *enc.CodingBlock) float64 {
	est := cabac.NewEstimator(tables)
	ectx.EncodeCUHeader(est, cb)
	cb.Root = strategy.Analyze(ectx, tables, algo.TBSplitBruteForce{}, algo.RootRequest(cb, &ectx.Seq))
	return est.Bits() + ectx.Arena.Node(cb.Root).Rate
}

// encodePayload codes the kept trees, one slice over the whole picture.
func encodePayload(ectx *enc.Context, ctbs [][]*enc.CodingBlock, qp int) ([]byte, *cabac.ContextTable) {
	w := cabac.NewEncoder(cabac.NewContextTable(qp), ectx.Source.Width*ectx.Source.Height/4)
	for i, blocks := range ctbs {
		for _, cb := range blocks {
			ectx.EncodeCUHeader(w, cb)
			ectx.EncodeTree(w, cb.Root)
		}
		last := 0
		if i == len(ctbs)-1 {
			last = 1
		}
		w.EncodeTerminate(last)
	}
	return w.Finish(), w.Contexts()
}

type point struct{ x, y int }

// zOrder returns the offsets of the coding blocks of a CTB in coding order.
func zOrder(log2Ctb, log2Cb int) []point {
	levels := log2Ctb - log2Cb
	out := make([]point, 1<<(2*levels))
	for z := range out {
		var bx, by int
		for b := 0; b < levels; b++ {
			bx |= (z >> (2 * b) & 1) << b
			by |= (z >> (2*b + 1) & 1) << b
		}
		out[z] = point{bx << log2Cb, by << log2Cb}
	}
	return out
}
