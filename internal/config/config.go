package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepteams/intrapred/internal/algo"
	"github.com/deepteams/intrapred/internal/enc"
)

// Option IDs.
const (
	IDIntraPredMode        = "IntraPredMode"
	IDSubset               = "IntraPredMode-Subset"
	IDKeepNBest            = "IntraPredMode-FastBrute-keepNBest"
	IDFastBruteEstimator   = "IntraPredMode-FastBrute-estimator"
	IDRefineMPM            = "IntraPredMode-FastBrute-refineMPM"
	IDMinResidualEstimator = "IntraPredMode-MinResidual-estimator"
	IDQP                   = "QP"
	IDCTBSize              = "CTB-size"
	IDCBSize               = "CB-size"
	IDPartMode             = "PartMode"
	IDTBMinSize            = "TB-min-size"
	IDTBMaxSize            = "TB-max-size"
	IDMaxTrafoDepth        = "max-transform-hierarchy-depth-intra"
	IDStrongSmoothing      = "strong-intra-smoothing"
)

// Kind is the value type of an option.
type Kind int

const (
	KindInt Kind = iota
	KindChoice
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindChoice:
		return "choice"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor declares one option.
type Descriptor struct {
	ID       string
	Kind     Kind
	Min, Max int
	Choices  []string
	Default  string
	Help     string
}

// Range returns a printable form of the accepted values.
func (d Descriptor) Range() string {
	switch d.Kind {
	case KindInt:
		return fmt.Sprintf("%d..%d", d.Min, d.Max)
	case KindChoice:
		return strings.Join(d.Choices, "|")
	}
	return "true|false"
}

var partModeNames = []string{enc.Part2Nx2N.String(), enc.PartNxN.String()}

var descriptors = []Descriptor{
	{ID: IDIntraPredMode, Kind: KindChoice, Choices: algo.KindNames(), Default: "fast-brute",
		Help: "intra mode decision strategy"},
	{ID: IDSubset, Kind: KindChoice, Choices: algo.SubsetNames(), Default: "all",
		Help: "candidate intra modes"},
	{ID: IDKeepNBest, Kind: KindInt, Min: 0, Max: 32, Default: "5",
		Help: "fast-brute: candidates refined after screening"},
	{ID: IDFastBruteEstimator, Kind: KindChoice, Choices: algo.EstimatorNames(), Default: "satd",
		Help: "fast-brute: screening cost"},
	{ID: IDRefineMPM, Kind: KindBool, Default: "false",
		Help: "fast-brute: also refine the most probable modes"},
	{ID: IDMinResidualEstimator, Kind: KindChoice, Choices: algo.EstimatorNames(), Default: "satd",
		Help: "min-residual: selection cost"},
	{ID: IDQP, Kind: KindInt, Min: 0, Max: 51, Default: "27",
		Help: "quantization parameter"},
	{ID: IDCTBSize, Kind: KindInt, Min: 4, Max: 6, Default: "5",
		Help: "log2 of the coding tree block size"},
	{ID: IDCBSize, Kind: KindInt, Min: 3, Max: 6, Default: "4",
		Help: "log2 of the coding block size"},
	{ID: IDPartMode, Kind: KindChoice, Choices: partModeNames, Default: "2Nx2N",
		Help: "intra partitioning of every coding block"},
	{ID: IDTBMinSize, Kind: KindInt, Min: 2, Max: 5, Default: "2",
		Help: "log2 of the smallest transform block"},
	{ID: IDTBMaxSize, Kind: KindInt, Min: 2, Max: 5, Default: "5",
		Help: "log2 of the largest transform block"},
	{ID: IDMaxTrafoDepth, Kind: KindInt, Min: 0, Max: 4, Default: "1",
		Help: "transform tree depth below a 2Nx2N coding block"},
	{ID: IDStrongSmoothing, Kind: KindBool, Default: "true",
		Help: "bilinear reference smoothing for 32x32 blocks"},
}

// Descriptors returns the option table in declaration order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Lookup returns the descriptor of id.
func Lookup(id string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Config is the typed form of every option.
type Config struct {
	Strategy             algo.Kind
	Subset               algo.Subset
	KeepNBest            int
	FastEstimator        algo.EstimatorMethod
	RefineMPM            bool
	MinResidualEstimator algo.EstimatorMethod

	QP                   int
	Log2CtbSize          int
	Log2CbSize           int
	PartMode             enc.PartMode
	Log2MinTbSize        int
	Log2MaxTbSize        int
	MaxTrafoDepth        int
	StrongIntraSmoothing bool
}

// NewConfig returns a configuration holding every default.
func NewConfig() *Config {
	c := &Config{}
	for _, d := range descriptors {
		if err := c.Set(d.ID, d.Default); err != nil {
			panic(fmt.Sprintf("config: bad default for %s: %v", d.ID, err))
		}
	}
	return c
}

// Set parses value for option id.
func (c *Config) Set(id, value string) error {
	d, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, id)
	}
	value = strings.TrimSpace(value)

	var n int
	var b bool
	switch d.Kind {
	case KindInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrOutOfRange, id, value)
		}
		if v < d.Min || v > d.Max {
			return fmt.Errorf("%w: %s must be %d-%d, got %d", ErrOutOfRange, id, d.Min, d.Max, v)
		}
		n = v
	case KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", ErrInvalidChoice, id, value)
		}
		b = v
	case KindChoice:
		n = -1
		for i, ch := range d.Choices {
			if strings.EqualFold(ch, value) {
				n = i
				break
			}
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidChoice, id, d.Range(), value)
		}
	}

	switch id {
	case IDIntraPredMode:
		c.Strategy = algo.Kind(n)
	case IDSubset:
		c.Subset = algo.Subset(n)
	case IDKeepNBest:
		c.KeepNBest = n
	case IDFastBruteEstimator:
		c.FastEstimator = algo.EstimatorMethod(n)
	case IDRefineMPM:
		c.RefineMPM = b
	case IDMinResidualEstimator:
		c.MinResidualEstimator = algo.EstimatorMethod(n)
	case IDQP:
		c.QP = n
	case IDCTBSize:
		c.Log2CtbSize = n
	case IDCBSize:
		c.Log2CbSize = n
	case IDPartMode:
		c.PartMode = enc.PartMode(n)
	case IDTBMinSize:
		c.Log2MinTbSize = n
	case IDTBMaxSize:
		c.Log2MaxTbSize = n
	case IDMaxTrafoDepth:
		c.MaxTrafoDepth = n
	case IDStrongSmoothing:
		c.StrongIntraSmoothing = b
	}
	return nil
}

// Get returns the current value of option id in its textual form.
func (c *Config) Get(id string) (string, error) {
	switch id {
	case IDIntraPredMode:
		return c.Strategy.String(), nil
	case IDSubset:
		return c.Subset.String(), nil
	case IDKeepNBest:
		return strconv.Itoa(c.KeepNBest), nil
	case IDFastBruteEstimator:
		return c.FastEstimator.String(), nil
	case IDRefineMPM:
		return strconv.FormatBool(c.RefineMPM), nil
	case IDMinResidualEstimator:
		return c.MinResidualEstimator.String(), nil
	case IDQP:
		return strconv.Itoa(c.QP), nil
	case IDCTBSize:
		return strconv.Itoa(c.Log2CtbSize), nil
	case IDCBSize:
		return strconv.Itoa(c.Log2CbSize), nil
	case IDPartMode:
		return c.PartMode.String(), nil
	case IDTBMinSize:
		return strconv.Itoa(c.Log2MinTbSize), nil
	case IDTBMaxSize:
		return strconv.Itoa(c.Log2MaxTbSize), nil
	case IDMaxTrafoDepth:
		return strconv.Itoa(c.MaxTrafoDepth), nil
	case IDStrongSmoothing:
		return strconv.FormatBool(c.StrongIntraSmoothing), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOption, id)
}

// Validate checks value ranges and that the block sizes form a transform
// tree every coding block can reach.
func (c *Config) Validate() error {
	for _, d := range descriptors {
		if d.Kind != KindInt {
			continue
		}
		v, _ := c.Get(d.ID)
		n, _ := strconv.Atoi(v)
		if n < d.Min || n > d.Max {
			return fmt.Errorf("%w: %s must be %d-%d, got %d", ErrOutOfRange, d.ID, d.Min, d.Max, n)
		}
	}
	if int(c.Strategy) < 0 || int(c.Strategy) >= len(algo.KindNames()) {
		return fmt.Errorf("%w: %s %d", ErrInvalidChoice, IDIntraPredMode, int(c.Strategy))
	}
	if c.Log2CbSize > c.Log2CtbSize {
		return fmt.Errorf("%w: coding block 2^%d larger than CTB 2^%d", ErrInvalidGeometry, c.Log2CbSize, c.Log2CtbSize)
	}
	if c.Log2MinTbSize > c.Log2MaxTbSize {
		return fmt.Errorf("%w: TB min 2^%d above TB max 2^%d", ErrInvalidGeometry, c.Log2MinTbSize, c.Log2MaxTbSize)
	}
	if c.Log2MaxTbSize > c.Log2CtbSize {
		return fmt.Errorf("%w: TB max 2^%d above CTB 2^%d", ErrInvalidGeometry, c.Log2MaxTbSize, c.Log2CtbSize)
	}
	if c.Log2MinTbSize > c.Log2CbSize {
		return fmt.Errorf("%w: TB min 2^%d above coding block 2^%d", ErrInvalidGeometry, c.Log2MinTbSize, c.Log2CbSize)
	}
	if c.PartMode == enc.PartNxN && c.Log2CbSize <= c.Log2MinTbSize {
		return fmt.Errorf("%w: NxN needs a coding block larger than TB min 2^%d", ErrInvalidGeometry, c.Log2MinTbSize)
	}
	// The split down to TB max is mandatory and must fit the depth limit.
	seq := c.SeqParams()
	cb := enc.CodingBlock{Log2Size: c.Log2CbSize, PartMode: c.PartMode}
	if forced := c.Log2CbSize - c.Log2MaxTbSize; forced > cb.MaxTrafoDepth(&seq) {
		return fmt.Errorf("%w: coding block 2^%d needs %d forced transform splits, depth limit is %d",
			ErrInvalidGeometry, c.Log2CbSize, forced, cb.MaxTrafoDepth(&seq))
	}
	return nil
}

// SeqParams returns the sequence limits of the configuration. Every coding
// block has the configured size.
func (c *Config) SeqParams() enc.SeqParams {
	return enc.SeqParams{
		Log2CtbSize:                     c.Log2CtbSize,
		Log2MinCbSize:                   c.Log2CbSize,
		Log2MinTbSize:                   c.Log2MinTbSize,
		Log2MaxTbSize:                   c.Log2MaxTbSize,
		MaxTransformHierarchyDepthIntra: c.MaxTrafoDepth,
		StrongIntraSmoothing:            c.StrongIntraSmoothing,
	}
}

// Params returns the strategy parameters of the configuration.
func (c *Config) Params() algo.Params {
	return algo.Params{
		Modes:                c.Subset.Modes(),
		KeepNBest:            c.KeepNBest,
		FastEstimator:        c.FastEstimator,
		RefineMPM:            c.RefineMPM,
		MinResidualEstimator: c.MinResidualEstimator,
	}
}

// NewStrategy returns the configured mode decision strategy.
func (c *Config) NewStrategy() algo.IntraPredMode {
	return algo.New(c.Strategy, c.Params())
}
