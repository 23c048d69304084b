package config

import (
	"errors"
	"testing"

	"github.com/deepteams/intrapred/internal/algo"
	"github.com/deepteams/intrapred/internal/enc"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Strategy != algo.KindFastBrute {
		t.Errorf("expected Strategy=fast-brute, got %v", cfg.Strategy)
	}
	if cfg.Subset != algo.SubsetAll {
		t.Errorf("expected Subset=all, got %v", cfg.Subset)
	}
	if cfg.KeepNBest != 5 {
		t.Errorf("expected KeepNBest=5, got %d", cfg.KeepNBest)
	}
	if cfg.FastEstimator != algo.EstimatorSATDHadamard || cfg.MinResidualEstimator != algo.EstimatorSATDHadamard {
		t.Errorf("expected satd estimators, got %v and %v", cfg.FastEstimator, cfg.MinResidualEstimator)
	}
	if cfg.RefineMPM {
		t.Error("expected RefineMPM=false")
	}
	if cfg.QP != 27 || cfg.Log2CtbSize != 5 || cfg.Log2CbSize != 4 {
		t.Errorf("expected QP 27, CTB 5, CB 4, got %d, %d, %d", cfg.QP, cfg.Log2CtbSize, cfg.Log2CbSize)
	}
	if !cfg.StrongIntraSmoothing {
		t.Error("expected StrongIntraSmoothing=true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if got := cfg.SeqParams(); got != enc.DefaultSeqParams() {
		t.Errorf("SeqParams = %+v, want %+v", got, enc.DefaultSeqParams())
	}
}

func TestDescriptorsRoundTrip(t *testing.T) {
	cfg := NewConfig()
	for _, d := range Descriptors() {
		got, err := cfg.Get(d.ID)
		if err != nil {
			t.Errorf("Get(%s): %v", d.ID, err)
			continue
		}
		if got != d.Default {
			t.Errorf("Get(%s) = %q, want default %q", d.ID, got, d.Default)
		}
		if d.Help == "" {
			t.Errorf("%s has no help text", d.ID)
		}
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name         string
		id, value    string
		wantSentinel error
		check        func(*Config) bool
	}{
		{"strategy", IDIntraPredMode, "min-residual", nil, func(c *Config) bool { return c.Strategy == algo.KindMinResidual }},
		{"subset case-insensitive", IDSubset, "hv+", nil, func(c *Config) bool { return c.Subset == algo.SubsetHVPlus }},
		{"keep 0", IDKeepNBest, "0", nil, func(c *Config) bool { return c.KeepNBest == 0 }},
		{"keep 32", IDKeepNBest, " 32 ", nil, func(c *Config) bool { return c.KeepNBest == 32 }},
		{"estimator", IDFastBruteEstimator, "satd-dct", nil, func(c *Config) bool { return c.FastEstimator == algo.EstimatorSATDDCT }},
		{"min-residual estimator", IDMinResidualEstimator, "sad", nil, func(c *Config) bool { return c.MinResidualEstimator == algo.EstimatorSAD }},
		{"refine", IDRefineMPM, "true", nil, func(c *Config) bool { return c.RefineMPM }},
		{"part mode", IDPartMode, "NxN", nil, func(c *Config) bool { return c.PartMode == enc.PartNxN }},
		{"smoothing", IDStrongSmoothing, "0", nil, func(c *Config) bool { return !c.StrongIntraSmoothing }},
		{"keep 33", IDKeepNBest, "33", ErrOutOfRange, nil},
		{"keep -1", IDKeepNBest, "-1", ErrOutOfRange, nil},
		{"qp text", IDQP, "high", ErrOutOfRange, nil},
		{"qp 52", IDQP, "52", ErrOutOfRange, nil},
		{"unknown estimator", IDFastBruteEstimator, "sse", ErrInvalidChoice, nil},
		{"bad bool", IDRefineMPM, "maybe", ErrInvalidChoice, nil},
		{"unknown option", "IntraPredMode-Exhaustive", "1", ErrUnknownOption, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := cfg.Set(tt.id, tt.value)
			if tt.wantSentinel != nil {
				if !errors.Is(err, tt.wantSentinel) {
					t.Errorf("Set(%s, %q) error = %v, want %v", tt.id, tt.value, err, tt.wantSentinel)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%s, %q): %v", tt.id, tt.value, err)
			}
			if !tt.check(cfg) {
				t.Errorf("Set(%s, %q) not applied: %+v", tt.id, tt.value, cfg)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantSentinel error
	}{
		{"default config is valid", func(c *Config) {}, nil},
		{"8x8 NxN is valid", func(c *Config) { c.Log2CbSize = 3; c.PartMode = enc.PartNxN }, nil},
		{"64x64 CB in 64 CTB is valid", func(c *Config) { c.Log2CtbSize = 6; c.Log2CbSize = 6 }, nil},
		{"CB larger than CTB", func(c *Config) { c.Log2CbSize = 6 }, ErrInvalidGeometry},
		{"TB min above TB max", func(c *Config) { c.Log2MinTbSize = 4; c.Log2MaxTbSize = 3 }, ErrInvalidGeometry},
		{"TB max above CTB", func(c *Config) { c.Log2CtbSize = 4; c.Log2CbSize = 4 }, ErrInvalidGeometry},
		{"TB min above CB", func(c *Config) { c.Log2MinTbSize = 5 }, ErrInvalidGeometry},
		{"NxN at TB min", func(c *Config) { c.Log2CbSize = 3; c.Log2MinTbSize = 3; c.PartMode = enc.PartNxN }, ErrInvalidGeometry},
		{"forced splits beyond depth", func(c *Config) {
			c.Log2CtbSize = 6
			c.Log2CbSize = 6
			c.Log2MaxTbSize = 4
			c.MaxTrafoDepth = 1
		}, ErrInvalidGeometry},
		{"qp out of range", func(c *Config) { c.QP = 60 }, ErrOutOfRange},
		{"keep out of range", func(c *Config) { c.KeepNBest = 40 }, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantSentinel == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestNewStrategy(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Set(IDSubset, "DC"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set(IDIntraPredMode, "brute-force"); err != nil {
		t.Fatal(err)
	}
	bf, ok := cfg.NewStrategy().(*algo.BruteForce)
	if !ok {
		t.Fatalf("NewStrategy() = %T, want *algo.BruteForce", cfg.NewStrategy())
	}
	if bf.Modes != algo.DCModes() {
		t.Errorf("Modes = %v, want DC only", bf.Modes)
	}
}
