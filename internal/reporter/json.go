package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// JSONReporter writes one JSON object per event. Progress events are
// emitted at every completed 10% step.
type JSONReporter struct {
	mu         sync.Mutex
	writer     io.Writer
	lastBucket int
	now        func() time.Time
}

// NewJSONReporter creates a JSON reporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w, now: time.Now}
}

func (r *JSONReporter) write(v map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v["timestamp"] = r.now().Unix()
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(s HardwareSummary) {
	r.write(map[string]any{
		"type":     "hardware",
		"hostname": s.Hostname,
		"os":       s.OS,
		"arch":     s.Arch,
		"num_cpu":  s.NumCPU,
		"simd":     s.SIMD,
	})
}

func (r *JSONReporter) Input(s InputSummary) {
	r.write(map[string]any{
		"type":          "input",
		"file":          s.File,
		"width":         s.Width,
		"height":        s.Height,
		"padded_width":  s.PaddedWidth,
		"padded_height": s.PaddedHeight,
	})
}

func (r *JSONReporter) Config(s ConfigSummary) {
	opts := make(map[string]string, len(s.Options))
	for _, kv := range s.Options {
		opts[kv[0]] = kv[1]
	}
	r.write(map[string]any{"type": "config", "options": opts})
}

func (r *JSONReporter) AnalysisStarted(totalCTBs int) {
	r.mu.Lock()
	r.lastBucket = 0
	r.mu.Unlock()
	r.write(map[string]any{"type": "analysis_started", "total_ctbs": totalCTBs})
}

func (r *JSONReporter) AnalysisProgress(done, total int) {
	if total <= 0 {
		return
	}
	bucket := done * 10 / total
	r.mu.Lock()
	if bucket <= r.lastBucket {
		r.mu.Unlock()
		return
	}
	r.lastBucket = bucket
	r.mu.Unlock()
	r.write(map[string]any{
		"type":    "analysis_progress",
		"done":    done,
		"total":   total,
		"percent": float64(done) * 100 / float64(total),
	})
}

func (r *JSONReporter) AnalysisComplete(o Outcome) {
	r.write(map[string]any{
		"type":              "analysis_complete",
		"strategy":          o.Strategy,
		"subset":            o.Subset,
		"qp":                o.QP,
		"coding_blocks":     o.CodingBlocks,
		"prediction_blocks": o.PredictionBlocks,
		"psnr":              o.PSNR,
		"estimated_bits":    o.EstimatedBits,
		"payload_bytes":     o.PayloadBytes,
		"contexts_match":    o.ContextsMatch,
		"estimates":         o.Estimates,
		"mode_trials":       o.ModeTrials,
		"split_trials":      o.SplitTrials,
		"leaf_codings":      o.LeafCodings,
		"duration_ms":       o.Duration.Milliseconds(),
		"histogram":         o.Histogram,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{"type": "warning", "message": message})
}

func (r *JSONReporter) Error(err error) {
	r.write(map[string]any{"type": "error", "message": err.Error()})
}
