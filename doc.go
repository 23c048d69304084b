// Package intrapred runs the HEVC intra mode decision over a picture.
//
// The picture is converted to 8-bit luma, padded to a whole number of
// coding tree blocks and walked in coding order. For every coding block the
// configured strategy picks the luma prediction mode of each transform
// block, trading distortion against the CABAC rate of the mode, split flags
// and residual. The chosen tree is then coded into a CABAC payload.
//
// Three strategies are available:
//   - brute-force codes every enabled mode and keeps the cheapest
//   - fast-brute ranks the modes by a cheap estimate and codes the best few
//   - min-residual codes only the mode with the lowest estimate
//
// Basic usage:
//
//	opts := intrapred.DefaultOptions()
//	if err := opts.Set("IntraPredMode", "brute-force"); err != nil {
//		return err
//	}
//	res, err := intrapred.Analyze(img, opts)
package intrapred
