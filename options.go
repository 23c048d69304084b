package intrapred

import (
	"log/slog"

	"github.com/deepteams/intrapred/internal/config"
)

// Progress reports the number of coding tree blocks analyzed out of total.
type Progress func(done, total int)

// Options controls the analysis. Engine options are addressed by ID, see
// OptionIDs.
type Options struct {
	cfg *config.Config

	// Logger receives the configuration and a per-picture summary, and
	// per-CTB records at debug level. Nil discards.
	Logger *slog.Logger

	// Progress is called after every coding tree block. Nil disables it.
	Progress Progress

	// SkipPayload disables the CABAC payload pass.
	SkipPayload bool
}

// DefaultOptions returns the fast-brute strategy over all modes at QP 27
// with 16x16 coding blocks in 32x32 CTBs.
func DefaultOptions() *Options {
	return &Options{cfg: config.NewConfig()}
}

// Set assigns an engine option by ID.
func (o *Options) Set(id, value string) error {
	return o.config().Set(id, value)
}

// Get returns the current value of an engine option.
func (o *Options) Get(id string) (string, error) {
	return o.config().Get(id)
}

// Validate reports whether the options can be used together.
func (o *Options) Validate() error {
	return o.config().Validate()
}

func (o *Options) config() *config.Config {
	if o.cfg == nil {
		o.cfg = config.NewConfig()
	}
	return o.cfg
}

// OptionInfo describes one engine option.
type OptionInfo struct {
	ID      string
	Type    string
	Range   string
	Default string
	Help    string
}

// OptionIDs lists every engine option in declaration order.
func OptionIDs() []OptionInfo {
	ds := config.Descriptors()
	out := make([]OptionInfo, len(ds))
	for i, d := range ds {
		out[i] = OptionInfo{ID: d.ID, Type: d.Kind.String(), Range: d.Range(), Default: d.Default, Help: d.Help}
	}
	return out
}

// Sentinel errors of option handling, for errors.Is.
var (
	ErrUnknownOption   = config.ErrUnknownOption
	ErrOutOfRange      = config.ErrOutOfRange
	ErrInvalidChoice   = config.ErrInvalidChoice
	ErrInvalidGeometry = config.ErrInvalidGeometry
)
