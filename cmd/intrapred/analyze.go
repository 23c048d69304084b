package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/intrapred"
	"github.com/deepteams/intrapred/internal/logging"
	"github.com/deepteams/intrapred/internal/reporter"
)

type analyzeArgs struct {
	params     []string
	strategy   string
	subset     string
	qp         int
	jsonOutput bool
	chartPath  string
	reconPath  string
	payload    string
	logLevel   string
	noProgress bool
}

func newAnalyzeCmd() *cobra.Command {
	var a analyzeArgs
	cmd := &cobra.Command{
		Use:   "analyze [flags] <image>",
		Short: "Run the intra mode decision over an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, &a, args[0])
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&a.params, "param", "p", nil, "engine option as ID=value, repeatable (see 'intrapred options')")
	f.StringVarP(&a.strategy, "strategy", "s", "", "shorthand for IntraPredMode")
	f.StringVar(&a.subset, "subset", "", "shorthand for IntraPredMode-Subset")
	f.IntVarP(&a.qp, "qp", "q", 0, "shorthand for QP")
	f.BoolVar(&a.jsonOutput, "json", false, "write NDJSON events to stdout")
	f.StringVar(&a.chartPath, "chart", "", "write the mode histogram as SVG to this path")
	f.StringVar(&a.reconPath, "recon", "", "write the luma reconstruction as PNG to this path")
	f.StringVar(&a.payload, "payload", "", "write the CABAC payload to this path")
	f.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	f.BoolVar(&a.noProgress, "no-progress", false, "hide the progress bar")
	return cmd
}

func buildOptions(cmd *cobra.Command, a *analyzeArgs) (*intrapred.Options, error) {
	opts := intrapred.DefaultOptions()
	for _, p := range a.params {
		id, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("--param %q: want ID=value", p)
		}
		if err := opts.Set(strings.TrimSpace(id), value); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("strategy") {
		if err := opts.Set("IntraPredMode", a.strategy); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("subset") {
		if err := opts.Set("IntraPredMode-Subset", a.subset); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("qp") {
		if err := opts.Set("QP", fmt.Sprint(a.qp)); err != nil {
			return nil, err
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, a *analyzeArgs, input string) error {
	level, ok := logging.ParseLevel(a.logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", a.logLevel)
	}
	opts, err := buildOptions(cmd, a)
	if err != nil {
		return err
	}
	opts.Logger = logging.New(logging.Config{
		Level:   level,
		Output:  cmd.ErrOrStderr(),
		Enabled: true,
		JSON:    a.jsonOutput,
	})

	var rep reporter.Reporter
	if a.jsonOutput {
		rep = reporter.NewJSONReporter(cmd.OutOrStdout())
	} else {
		bar := cmd.ErrOrStderr()
		if a.noProgress {
			bar = io.Discard
		}
		rep = reporter.NewTerminalReporter(cmd.OutOrStdout(), bar)
	}

	img, err := readImage(cmd.InOrStdin(), input)
	if err != nil {
		rep.Error(err)
		return err
	}

	var cfg reporter.ConfigSummary
	for _, o := range intrapred.OptionIDs() {
		v, _ := opts.Get(o.ID)
		cfg.Options = append(cfg.Options, [2]string{o.ID, v})
	}
	rep.Hardware(reporter.Hardware())
	rep.Config(cfg)

	started := false
	opts.Progress = func(done, total int) {
		if !started {
			rep.AnalysisStarted(total)
			started = true
		}
		rep.AnalysisProgress(done, total)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := intrapred.AnalyzeContext(ctx, img, opts)
	if err != nil {
		rep.Error(err)
		return err
	}

	rep.Input(reporter.InputSummary{
		File:         input,
		Width:        res.Width,
		Height:       res.Height,
		PaddedWidth:  res.PaddedWidth,
		PaddedHeight: res.PaddedHeight,
	})
	rep.AnalysisComplete(outcome(res))

	if a.chartPath != "" {
		title := fmt.Sprintf("%s, %s modes, QP %d", res.Strategy, res.Subset, res.QP)
		if err := writeFile(a.chartPath, func(w io.Writer) error {
			return reporter.WriteModeChart(w, title, res.ModeHistogram[:])
		}); err != nil {
			return err
		}
	}
	if a.reconPath != "" {
		if err := writeFile(a.reconPath, func(w io.Writer) error { return png.Encode(w, res.Recon) }); err != nil {
			return err
		}
	}
	if a.payload != "" {
		if err := os.WriteFile(a.payload, res.Payload, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func outcome(res *intrapred.Result) reporter.Outcome {
	return reporter.Outcome{
		Strategy:         res.Strategy,
		Subset:           res.Subset,
		QP:               res.QP,
		CodingBlocks:     res.CodingBlocks,
		PredictionBlocks: res.PredictionBlocks,
		PSNR:             res.PSNR,
		EstimatedBits:    res.EstimatedBits,
		PayloadBytes:     len(res.Payload),
		ContextsMatch:    res.ContextsMatch,
		Estimates:        res.Stats.Estimates,
		ModeTrials:       res.Stats.ModeTrials,
		SplitTrials:      res.Stats.SplitTrials,
		LeafCodings:      res.Stats.LeafCodings,
		Duration:         res.Duration,
		Histogram:        res.ModeHistogram[:],
	}
}

// readImage decodes path, or stdin for "-".
func readImage(stdin io.Reader, path string) (image.Image, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
