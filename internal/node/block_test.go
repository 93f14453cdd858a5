package node

import (
	"testing"

	"github.com/xDarkicex/diskvec/internal/util"
)

func testLayout(dims int) Layout {
	return NewLayout(dims, AutoBlockSize(dims, 32))
}

func TestAutoBlockSizeAlignment(t *testing.T) {
	for _, dims := range []int{3, 128, 768, 1536} {
		size := AutoBlockSize(dims, 32)
		if size%BlockAlign != 0 {
			t.Errorf("dims %d: block size %d not %d-aligned", dims, size, BlockAlign)
		}
		if size < MinBlockSize(dims, 32) {
			t.Errorf("dims %d: block size %d below minimum %d", dims, size, MinBlockSize(dims, 32))
		}
	}
}

func TestLayoutMaxEdgesFits(t *testing.T) {
	for _, dims := range []int{1, 3, 100, 768} {
		for _, maxNeighbors := range []int{8, 32, 64} {
			l := NewLayout(dims, AutoBlockSize(dims, maxNeighbors))
			margin := maxNeighbors + maxNeighbors/10
			if l.MaxEdges < margin {
				t.Errorf("dims %d neighbors %d: MaxEdges %d below margin %d",
					dims, maxNeighbors, l.MaxEdges, margin)
			}

			// The last metadata slot must end inside the block.
			end := l.edgeMetaOff(l.MaxEdges-1) + EdgeMetaSize
			if end > l.BlockSize {
				t.Errorf("dims %d neighbors %d: slot end %d overflows block %d",
					dims, maxNeighbors, end, l.BlockSize)
			}
		}
	}
}

func TestLayoutRegionsDisjoint(t *testing.T) {
	l := testLayout(3)
	// Metadata slots begin after all vector slots, used or not.
	if l.edgeMetaOff(0) != HeaderSize+l.VectorBytes+l.MaxEdges*l.VectorBytes {
		t.Errorf("edgeMetaOff(0) = %d, want %d",
			l.edgeMetaOff(0), HeaderSize+l.VectorBytes+l.MaxEdges*l.VectorBytes)
	}
	if l.edgeVectorOff(0) != HeaderSize+l.VectorBytes {
		t.Errorf("edgeVectorOff(0) = %d, want %d", l.edgeVectorOff(0), HeaderSize+l.VectorBytes)
	}
}

func TestInitAndReadBack(t *testing.T) {
	l := testLayout(3)
	buf := make([]byte, l.BlockSize)
	for i := range buf {
		buf[i] = 0xAB // Init must clear stale bytes
	}

	vec := []float32{1, -2, 3.5}
	l.Init(buf, 77, vec)

	if got := l.RowID(buf); got != 77 {
		t.Errorf("RowID = %d, want 77", got)
	}
	if got := l.EdgeCount(buf); got != 0 {
		t.Errorf("EdgeCount = %d, want 0", got)
	}

	got := make([]float32, 3)
	l.ReadVector(buf, got)
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("vector[%d] = %g, want %g", i, got[i], vec[i])
		}
	}

	// Header field positions are part of the format.
	if id := util.ReadLE64(buf[0:]); id != 77 {
		t.Errorf("bytes 0..8 = %d, want 77", id)
	}
	if n := util.ReadLE16(buf[8:]); n != 0 {
		t.Errorf("bytes 8..10 = %d, want 0", n)
	}
	for i := 10; i < 16; i++ {
		if buf[i] != 0 {
			t.Errorf("reserved byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestReplaceEdgeAppendAndOverwrite(t *testing.T) {
	l := testLayout(3)
	buf := make([]byte, l.BlockSize)
	l.Init(buf, 1, []float32{0, 0, 0})

	l.ReplaceEdge(buf, 0, 2, 1.5, []float32{1, 0, 0})
	if got := l.EdgeCount(buf); got != 1 {
		t.Fatalf("EdgeCount = %d, want 1", got)
	}
	l.ReplaceEdge(buf, 1, 3, 2.5, []float32{0, 1, 0})
	if got := l.EdgeCount(buf); got != 2 {
		t.Fatalf("EdgeCount = %d, want 2", got)
	}

	if id := l.EdgeID(buf, 0); id != 2 {
		t.Errorf("EdgeID(0) = %d, want 2", id)
	}
	if d := l.EdgeDistance(buf, 1); d != 2.5 {
		t.Errorf("EdgeDistance(1) = %g, want 2.5", d)
	}

	// Overwrite in place keeps the count.
	l.ReplaceEdge(buf, 0, 9, 0.5, []float32{0, 0, 1})
	if got := l.EdgeCount(buf); got != 2 {
		t.Errorf("EdgeCount after overwrite = %d, want 2", got)
	}
	if id := l.EdgeID(buf, 0); id != 9 {
		t.Errorf("EdgeID(0) after overwrite = %d, want 9", id)
	}

	vec := make([]float32, 3)
	l.ReadEdgeVector(buf, 0, vec)
	if vec[2] != 1 {
		t.Errorf("edge vector after overwrite = %v", vec)
	}
}

func TestFindEdge(t *testing.T) {
	l := testLayout(3)
	buf := make([]byte, l.BlockSize)
	l.Init(buf, 1, []float32{0, 0, 0})
	l.ReplaceEdge(buf, 0, 10, 1, []float32{1, 0, 0})
	l.ReplaceEdge(buf, 1, 20, 2, []float32{0, 1, 0})

	if got := l.FindEdge(buf, 20); got != 1 {
		t.Errorf("FindEdge(20) = %d, want 1", got)
	}
	if got := l.FindEdge(buf, 99); got != -1 {
		t.Errorf("FindEdge(99) = %d, want -1", got)
	}
}

func TestDeleteEdgeSwapsWithLast(t *testing.T) {
	l := testLayout(3)
	buf := make([]byte, l.BlockSize)
	l.Init(buf, 1, []float32{0, 0, 0})
	l.ReplaceEdge(buf, 0, 10, 1, []float32{1, 0, 0})
	l.ReplaceEdge(buf, 1, 20, 2, []float32{0, 1, 0})
	l.ReplaceEdge(buf, 2, 30, 3, []float32{0, 0, 1})

	l.DeleteEdge(buf, 0)

	if got := l.EdgeCount(buf); got != 2 {
		t.Fatalf("EdgeCount = %d, want 2", got)
	}
	if id := l.EdgeID(buf, 0); id != 30 {
		t.Errorf("EdgeID(0) = %d, want 30 (last swapped in)", id)
	}
	if d := l.EdgeDistance(buf, 0); d != 3 {
		t.Errorf("EdgeDistance(0) = %g, want 3", d)
	}
	vec := make([]float32, 3)
	l.ReadEdgeVector(buf, 0, vec)
	if vec[2] != 1 {
		t.Errorf("edge vector not swapped: %v", vec)
	}

	// Deleting the last slot just shrinks.
	l.DeleteEdge(buf, 1)
	if got := l.EdgeCount(buf); got != 1 {
		t.Errorf("EdgeCount = %d, want 1", got)
	}
	if id := l.EdgeID(buf, 0); id != 30 {
		t.Errorf("EdgeID(0) = %d, want 30", id)
	}
}
