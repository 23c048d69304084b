package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter prints human-friendly sections to out and draws the CTB
// progress bar on bar.
type TerminalReporter struct {
	mu       sync.Mutex
	out      io.Writer
	bar      io.Writer
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	bold     *color.Color
}

// NewTerminalReporter creates a terminal reporter.
func NewTerminalReporter(out, bar io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:    out,
		bar:    bar,
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		bold:   color.New(color.Bold),
	}
}

func (r *TerminalReporter) section(title string) {
	fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label padded to width followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	padded := fmt.Sprintf("%-*s", width, label)
	fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(padded), value)
}

func (r *TerminalReporter) Hardware(s HardwareSummary) {
	r.section("HARDWARE")
	r.printLabel(9, "Hostname:", s.Hostname)
	r.printLabel(9, "Platform:", fmt.Sprintf("%s/%s, %d CPUs", s.OS, s.Arch, s.NumCPU))
	simd := "none"
	if len(s.SIMD) > 0 {
		simd = strings.Join(s.SIMD, ", ")
	}
	r.printLabel(9, "SIMD:", simd)
}

func (r *TerminalReporter) Input(s InputSummary) {
	r.section("INPUT")
	r.printLabel(7, "File:", s.File)
	size := fmt.Sprintf("%dx%d", s.Width, s.Height)
	if s.PaddedWidth != s.Width || s.PaddedHeight != s.Height {
		size += fmt.Sprintf(" (padded to %dx%d)", s.PaddedWidth, s.PaddedHeight)
	}
	r.printLabel(7, "Size:", size)
}

func (r *TerminalReporter) Config(s ConfigSummary) {
	r.section("CONFIG")
	w := 0
	for _, kv := range s.Options {
		w = max(w, len(kv[0])+1)
	}
	for _, kv := range s.Options {
		r.printLabel(w, kv[0]+":", kv[1])
	}
}

func (r *TerminalReporter) AnalysisStarted(totalCTBs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = progressbar.NewOptions64(
		int64(totalCTBs),
		progressbar.OptionSetDescription("CTBs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.bar),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Analyzing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) AnalysisProgress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		return
	}
	_ = r.progress.Set64(int64(min(done, total)))
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

func (r *TerminalReporter) AnalysisComplete(o Outcome) {
	r.finishProgress()

	r.section("RESULTS")
	const w = 12
	r.printLabel(w, "Strategy:", fmt.Sprintf("%s over %s modes at QP %d", o.Strategy, o.Subset, o.QP))
	r.printLabel(w, "Blocks:", fmt.Sprintf("%d coding, %d prediction", o.CodingBlocks, o.PredictionBlocks))
	r.printLabel(w, "PSNR:", r.bold.Sprintf("%.2f dB", o.PSNR))
	rate := fmt.Sprintf("%.0f bits estimated", o.EstimatedBits)
	if o.PayloadBytes > 0 {
		rate += fmt.Sprintf(", %d bytes coded", o.PayloadBytes)
	}
	r.printLabel(w, "Rate:", rate)
	r.printLabel(w, "Search:", fmt.Sprintf("%d estimates, %d mode trials, %d split trials, %d leaves",
		o.Estimates, o.ModeTrials, o.SplitTrials, o.LeafCodings))
	r.printLabel(w, "Time:", o.Duration.Round(1e6).String())

	var parts []string
	for _, m := range TopModes(o.Histogram, 5) {
		parts = append(parts, fmt.Sprintf("%s %d", m.Name, m.Count))
	}
	if len(parts) > 0 {
		r.printLabel(w, "Top modes:", strings.Join(parts, ", "))
	}
	if o.PayloadBytes > 0 && !o.ContextsMatch {
		r.Warning("payload contexts diverge from the analysis")
	}
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err error) {
	fmt.Fprintln(r.bar)
	_, _ = r.red.Fprintf(r.bar, "ERROR %v\n", err)
}
