package cabac

import "math"

// Estimator is a Writer that accumulates the fractional cost in bits of the
// bins it receives instead of producing bytes. Contexts are adapted exactly
// as the Encoder would adapt them.
type Estimator struct {
	ctx  *ContextTable
	bits float64
}

// NewEstimator returns an Estimator adapting ctx.
func NewEstimator(ctx *ContextTable) *Estimator {
	return &Estimator{ctx: ctx}
}

// terminateBits is the cost of a terminating bin of value 0 in the full
// range; a 1 ends the slice and is costed as the 7 flushed bits.
var terminateBits = -math.Log2(1 - 2.0/510)

func (e *Estimator) EncodeBin(bin int, ctx int) {
	state, lps := e.ctx.update(ctx, bin)
	i := int(state) << 1
	if lps {
		i |= 1
	}
	e.bits += entropyBits[i]
}

func (e *Estimator) EncodeBypass(int) {
	e.bits++
}

func (e *Estimator) EncodeBypassBins(_ uint32, n int) {
	e.bits += float64(n)
}

func (e *Estimator) EncodeTerminate(bin int) {
	if bin != 0 {
		e.bits += 7
		return
	}
	e.bits += terminateBits
}

func (e *Estimator) Contexts() *ContextTable { return e.ctx }

// Bits returns the accumulated cost.
func (e *Estimator) Bits() float64 { return e.bits }

// Reset clears the accumulated cost and rebinds the estimator to ctx.
func (e *Estimator) Reset(ctx *ContextTable) {
	e.ctx = ctx
	e.bits = 0
}
