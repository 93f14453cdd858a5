package node

import (
	"github.com/xDarkicex/diskvec/internal/util"
)

// Operations on a buffer holding exactly one node block. The buffer is the
// BLOB wrapper's page buffer; callers guarantee len(buf) == Layout.BlockSize.

// Init zeroes the buffer and writes a fresh block: row id, zero edges, the
// node vector.
func (l Layout) Init(buf []byte, rowID int64, vec []float32) {
	for i := range buf {
		buf[i] = 0
	}
	util.WriteLE64(buf[offRowID:], uint64(rowID))
	util.WriteLE16(buf[offEdgeCount:], 0)
	util.WriteLEVector(buf[offNodeVector:], vec)
}

// RowID returns the block's stored row id.
func (l Layout) RowID(buf []byte) int64 {
	return int64(util.ReadLE64(buf[offRowID:]))
}

// EdgeCount returns the number of used edge slots.
func (l Layout) EdgeCount(buf []byte) int {
	return int(util.ReadLE16(buf[offEdgeCount:]))
}

func (l Layout) setEdgeCount(buf []byte, n int) {
	util.WriteLE16(buf[offEdgeCount:], uint16(n))
}

// ReadVector decodes the node vector into dst; len(dst) must be Dims.
func (l Layout) ReadVector(buf []byte, dst []float32) {
	util.ReadLEVector(buf[offNodeVector:], dst)
}

// EdgeID returns the target row id of edge slot i.
func (l Layout) EdgeID(buf []byte, i int) int64 {
	return int64(util.ReadLE64(buf[l.edgeMetaOff(i)+edgeMetaTargetOff:]))
}

// EdgeDistance returns the cached node-to-target distance of edge slot i.
func (l Layout) EdgeDistance(buf []byte, i int) float32 {
	return util.ReadLEFloat32(buf[l.edgeMetaOff(i)+edgeMetaDistanceOff:])
}

// ReadEdgeVector decodes edge slot i's cached target vector into dst.
func (l Layout) ReadEdgeVector(buf []byte, i int, dst []float32) {
	util.ReadLEVector(buf[l.edgeVectorOff(i):], dst)
}

// FindEdge linearly scans for an edge targeting rowID and returns its slot
// index, or -1.
func (l Layout) FindEdge(buf []byte, rowID int64) int {
	n := l.EdgeCount(buf)
	for i := 0; i < n; i++ {
		if l.EdgeID(buf, i) == rowID {
			return i
		}
	}
	return -1
}

// ReplaceEdge writes an edge into slot i. When i equals the current edge
// count the edge is appended and the count incremented; otherwise the slot is
// overwritten in place. Slots beyond the count are not addressable.
func (l Layout) ReplaceEdge(buf []byte, i int, rowID int64, distance float32, vec []float32) {
	n := l.EdgeCount(buf)
	if i == n {
		l.setEdgeCount(buf, n+1)
	}

	util.WriteLEVector(buf[l.edgeVectorOff(i):], vec)
	meta := buf[l.edgeMetaOff(i):]
	util.WriteLE32(meta, 0)
	util.WriteLEFloat32(meta[edgeMetaDistanceOff:], distance)
	util.WriteLE64(meta[edgeMetaTargetOff:], uint64(rowID))
}

// DeleteEdge removes edge slot i by moving the last edge into its place and
// decrementing the count. O(1); edge order is not a contract.
func (l Layout) DeleteEdge(buf []byte, i int) {
	n := l.EdgeCount(buf)
	last := n - 1
	if i != last {
		copy(buf[l.edgeVectorOff(i):l.edgeVectorOff(i)+l.VectorBytes],
			buf[l.edgeVectorOff(last):l.edgeVectorOff(last)+l.VectorBytes])
		copy(buf[l.edgeMetaOff(i):l.edgeMetaOff(i)+EdgeMetaSize],
			buf[l.edgeMetaOff(last):l.edgeMetaOff(last)+EdgeMetaSize])
	}
	l.setEdgeCount(buf, last)
}
