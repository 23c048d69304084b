package cabac

// Writer receives binarized syntax elements. Both the arithmetic Encoder and
// the rate Estimator implement it, so syntax code is written once and used
// for measuring and for producing the final payload.
type Writer interface {
	// EncodeBin codes a context-modelled bin and adapts the context.
	EncodeBin(bin int, ctx int)
	// EncodeBypass codes an equiprobable bin.
	EncodeBypass(bin int)
	// EncodeBypassBins codes the n low bits of value, MSB first, as bypass bins.
	EncodeBypassBins(value uint32, n int)
	// EncodeTerminate codes a bin with the fixed terminating probability.
	EncodeTerminate(bin int)
	// Contexts returns the context table the writer adapts.
	Contexts() *ContextTable
}
