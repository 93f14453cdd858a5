// Package node defines the on-disk node block format and the operations that
// read and mutate a single block in place.
//
// Block layout (format V3, all integers little-endian):
//
//	┌──────────────────────────────┐
//	│ row id            8 bytes    │ offset 0
//	│ edge count        2 bytes    │ offset 8
//	│ reserved          6 bytes    │ offset 10, zero
//	├──────────────────────────────┤
//	│ node vector       dims*4     │ offset 16
//	├──────────────────────────────┤
//	│ edge vector slots maxEdges*V │ contiguous, used prefix only
//	├──────────────────────────────┤
//	│ edge meta slots   maxEdges*16│ after ALL vector slots
//	│  ├─ reserved      4 bytes    │
//	│  ├─ distance      4 bytes    │ float32 bit pattern
//	│  └─ target row id 8 bytes    │
//	└──────────────────────────────┘
//
// Metadata slots begin after the full edge-vector region, used or not; the
// two regions are not interleaved.
package node

// Format and sizing constants.
const (
	// FormatVersion is the current block format; open rejects strictly
	// greater stored versions.
	FormatVersion = 3

	// HeaderSize covers row id, edge count and reserved padding.
	HeaderSize = 16

	// EdgeMetaSize is the fixed size of one edge metadata slot.
	EdgeMetaSize = 16

	// MinDegree is the pruning floor: pruneEdges never reduces a node's
	// adjacency below this count. Fixed; changing it requires a format bump.
	MinDegree = 8

	// BlockAlign is the boundary auto-computed block sizes are rounded to.
	BlockAlign = 4096

	offRowID      = 0
	offEdgeCount  = 8
	offNodeVector = HeaderSize

	edgeMetaDistanceOff = 4
	edgeMetaTargetOff   = 8
)

// Layout holds the derived byte positions inside a node block for one index
// configuration. All blocks of an index share a single Layout.
type Layout struct {
	Dims        int
	BlockSize   int
	VectorBytes int // Dims * 4, identical for node and edge vectors
	MaxEdges    int
}

// NewLayout derives the layout for the given dimension count and block size.
func NewLayout(dims, blockSize int) Layout {
	vectorBytes := dims * 4
	return Layout{
		Dims:        dims,
		BlockSize:   blockSize,
		VectorBytes: vectorBytes,
		MaxEdges:    (blockSize - HeaderSize - vectorBytes) / (vectorBytes + EdgeMetaSize),
	}
}

// NodeOverhead returns the fixed per-block cost before the first edge slot.
func NodeOverhead(dims int) int {
	return HeaderSize + dims*4
}

// EdgeOverhead returns the per-edge cost: cached vector plus metadata slot.
func EdgeOverhead(dims int) int {
	return dims*4 + EdgeMetaSize
}

// AutoBlockSize computes the block size for an index that did not configure
// one: room for maxNeighbors edges plus 10% margin, rounded up to BlockAlign.
func AutoBlockSize(dims, maxNeighbors int) int {
	margin := maxNeighbors + maxNeighbors/10
	size := NodeOverhead(dims) + margin*EdgeOverhead(dims)
	return (size + BlockAlign - 1) / BlockAlign * BlockAlign
}

// MinBlockSize returns the smallest valid block size for the configuration;
// caller-supplied sizes below this are rejected.
func MinBlockSize(dims, maxNeighbors int) int {
	margin := maxNeighbors + maxNeighbors/10
	return NodeOverhead(dims) + margin*EdgeOverhead(dims)
}

// edgeVectorOff returns the byte offset of edge slot i's cached vector.
func (l Layout) edgeVectorOff(i int) int {
	return offNodeVector + l.VectorBytes + i*l.VectorBytes
}

// edgeMetaOff returns the byte offset of edge slot i's metadata.
func (l Layout) edgeMetaOff(i int) int {
	return offNodeVector + l.VectorBytes + l.MaxEdges*l.VectorBytes + i*EdgeMetaSize
}
