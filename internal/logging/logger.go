// Package logging configures the structured logger of the analysis tools.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the level and destination of log output.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
	JSON    bool
}

// DefaultConfig logs at info level as text on stderr.
func DefaultConfig() Config {
	return Config{
		Level:   slog.LevelInfo,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// New returns a logger for cfg. A disabled config yields a logger that
// drops every record.
func New(cfg Config) *slog.Logger {
	if !cfg.Enabled {
		return Discard()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Discard returns a logger without output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
