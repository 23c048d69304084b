// Package reporter presents analysis progress and results on a terminal,
// as NDJSON events, or as a mode histogram chart.
package reporter

import "time"

// HardwareSummary describes the host.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int
	SIMD     []string
}

// InputSummary describes the analyzed picture.
type InputSummary struct {
	File                      string
	Width, Height             int
	PaddedWidth, PaddedHeight int
}

// ConfigSummary lists the effective engine options as ID/value pairs.
type ConfigSummary struct {
	Options [][2]string
}

// ModeCount is the number of prediction blocks coded with a mode.
type ModeCount struct {
	Mode  int
	Name  string
	Count int
}

// Outcome holds the results of one analysis.
type Outcome struct {
	Strategy         string
	Subset           string
	QP               int
	CodingBlocks     int
	PredictionBlocks int
	PSNR             float64
	EstimatedBits    float64
	PayloadBytes     int
	ContextsMatch    bool
	Estimates        int64
	ModeTrials       int64
	SplitTrials      int64
	LeafCodings      int64
	Duration         time.Duration
	Histogram        []int
}
