package enc

// PartMode is the intra partitioning of a coding block.
type PartMode uint8

const (
	Part2Nx2N PartMode = iota // one prediction block
	PartNxN                   // four prediction blocks, one per quadrant
)

func (m PartMode) String() string {
	if m == PartNxN {
		return "NxN"
	}
	return "2Nx2N"
}

// CodingBlock is a square intra coding unit.
type CodingBlock struct {
	X, Y     int
	Log2Size int
	PartMode PartMode
	QP       int

	// IntraModes holds the chosen luma mode of each prediction block once
	// the analysis has committed it. Only entry 0 is used for 2Nx2N.
	IntraModes [4]int

	// Root is the transform tree kept for this block.
	Root NodeID
}

// IntraSplit reports whether the transform tree is split at depth 0 by the
// partitioning itself.
func (cb *CodingBlock) IntraSplit() bool {
	return cb.PartMode == PartNxN
}

// MaxTrafoDepth returns the deepest transform tree level allowed in cb.
func (cb *CodingBlock) MaxTrafoDepth(seq *SeqParams) int {
	d := seq.MaxTransformHierarchyDepthIntra
	if cb.IntraSplit() {
		d++
	}
	return d
}

// NodeID is the handle of a TB in an Arena. The zero value is no node.
type NodeID int32

// NoNode is the nil handle.
const NoNode NodeID = 0

// TB is one node of a transform tree: a leaf transform block or a split
// marker owning four children.
type TB struct {
	X, Y         int
	XBase, YBase int
	Log2Size     int
	BlkIdx       int
	TrafoDepth   int

	CB       *CodingBlock
	Parent   NodeID
	Children [4]NodeID
	Split    bool

	// SelectsMode marks the node at which the intra mode is signalled.
	SelectsMode bool
	IntraMode   int

	Distortion int64
	Rate       float64
	Cost       float64

	// Leaf data.
	CBF    bool
	Levels []int16
	Recon  []byte
}

// Size returns the block width in samples.
func (tb *TB) Size() int {
	return 1 << tb.Log2Size
}

// UseDST reports whether the leaf uses the 4x4 DST.
func (tb *TB) UseDST() bool {
	return tb.Log2Size == 2
}

// ScanIdx returns the coefficient scan of the leaf: 0 diagonal,
// 1 horizontal, 2 vertical.
func (tb *TB) ScanIdx() int {
	return scanIdx(tb.Log2Size, tb.IntraMode)
}

func scanIdx(log2, mode int) int {
	if log2 != 2 && log2 != 3 {
		return scanDiag
	}
	switch {
	case mode >= 6 && mode <= 14:
		return scanVer
	case mode >= 22 && mode <= 30:
		return scanHor
	}
	return scanDiag
}
