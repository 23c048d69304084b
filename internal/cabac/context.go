// Package cabac implements the HEVC context-adaptive binary arithmetic coder
// for the luma transform-tree syntax: the context model table, a byte
// producing encoder and a fractional-bit estimator that share one Writer
// interface.
package cabac

// Context index layout. Each syntax element owns a contiguous range.
const (
	CtxSplitCU        = 0  // split_cu_flag, 3
	CtxPartMode       = 3  // part_mode, 1
	CtxPrevIntraLuma  = 4  // prev_intra_luma_pred_flag, 1
	CtxSplitTransform = 5  // split_transform_flag, 3
	CtxCbfLuma        = 8  // cbf_luma, 2
	CtxLastXPrefix    = 10 // last_sig_coeff_x_prefix, 15
	CtxLastYPrefix    = 25 // last_sig_coeff_y_prefix, 15
	CtxCodedSubBlock  = 40 // coded_sub_block_flag, 2
	CtxSig            = 42 // sig_coeff_flag, 27
	CtxGreater1       = 69 // coeff_abs_level_greater1_flag, 16
	CtxGreater2       = 85 // coeff_abs_level_greater2_flag, 4

	NumContexts = 89
)

// initValues holds the I-slice initValue of every context.
var initValues = [NumContexts]uint8{
	// split_cu_flag
	139, 141, 157,
	// part_mode
	184,
	// prev_intra_luma_pred_flag
	184,
	// split_transform_flag
	153, 138, 138,
	// cbf_luma
	111, 141,
	// last_sig_coeff_x_prefix
	110, 110, 124, 125, 140, 153, 125, 127, 140, 109, 111, 143, 127, 111, 79,
	// last_sig_coeff_y_prefix
	110, 110, 124, 125, 140, 153, 125, 127, 140, 109, 111, 143, 127, 111, 79,
	// coded_sub_block_flag
	91, 171,
	// sig_coeff_flag
	111, 111, 125, 110, 110, 94, 124, 108, 124, 107, 125, 141, 179, 153,
	125, 107, 125, 141, 179, 153, 125, 107, 125, 141, 179, 153, 125,
	// coeff_abs_level_greater1_flag
	140, 92, 137, 138, 140, 152, 138, 139, 153, 74, 149, 92, 139, 107, 122, 152,
	// coeff_abs_level_greater2_flag
	138, 153, 136, 167,
}

// ContextTable is the adaptive probability state of every context model.
// Each entry packs state<<1 | valMps. The zero value is not initialised;
// use NewContextTable or Init.
//
// ContextTable is a plain value: assigning it takes a snapshot.
type ContextTable struct {
	models [NumContexts]uint8
}

// NewContextTable returns a table initialised for the given slice QP.
func NewContextTable(qp int) *ContextTable {
	t := &ContextTable{}
	t.Init(qp)
	return t
}

// Init resets every context to its initial state for qp.
func (t *ContextTable) Init(qp int) {
	qp = clip3(0, 51, qp)
	for i, iv := range initValues {
		slope := int(iv >> 4)
		offset := int(iv & 15)
		m := slope*5 - 45
		n := (offset << 3) - 16
		pre := clip3(1, 126, ((m*qp)>>4)+n)
		if pre <= 63 {
			t.models[i] = uint8(63-pre) << 1
		} else {
			t.models[i] = uint8(pre-64)<<1 | 1
		}
	}
}

// State returns the probability state index and most probable symbol of ctx.
func (t *ContextTable) State(ctx int) (state, mps int) {
	m := t.models[ctx]
	return int(m >> 1), int(m & 1)
}

// Snapshot returns a copy of the table.
func (t *ContextTable) Snapshot() ContextTable {
	return *t
}

// Restore overwrites the table with a previously taken snapshot.
func (t *ContextTable) Restore(s ContextTable) {
	*t = s
}

// Clone returns an independent copy of the table.
func (t *ContextTable) Clone() *ContextTable {
	c := *t
	return &c
}

// Equal reports whether both tables hold identical states.
func (t *ContextTable) Equal(o *ContextTable) bool {
	return t.models == o.models
}

// update advances the state of ctx after coding bin and reports whether the
// bin was the least probable symbol.
func (t *ContextTable) update(ctx, bin int) (state uint8, lps bool) {
	m := t.models[ctx]
	state = m >> 1
	mps := m & 1
	if uint8(bin) == mps {
		t.models[ctx] = transIdxMPS[state]<<1 | mps
		return state, false
	}
	if state == 0 {
		mps ^= 1
	}
	t.models[ctx] = transIdxLPS[state]<<1 | mps
	return state, true
}

func clip3(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
