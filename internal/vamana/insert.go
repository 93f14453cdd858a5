package vamana

import (
	"fmt"

	"github.com/xDarkicex/diskvec/internal/node"
)

// Insert adds a vector under a caller-assigned row id, discovering neighbors
// with a writable beam search and installing bidirectional edges under
// alpha-pruning. The mutation nests in a savepoint when the host allows one.
func (ix *Index) Insert(id int64, vec []float32) error {
	if len(vec) != ix.cfg.Dimensions {
		return fmt.Errorf("%w: vector has %d dimensions, index has %d",
			ErrDimension, len(vec), ix.cfg.Dimensions)
	}

	sp := ix.db.Savepoint("diskvec_insert")
	if err := ix.insert(id, vec); err != nil {
		sp.Rollback()
		return err
	}
	if err := sp.Release(); err != nil {
		return err
	}
	ix.invalidateCache()
	return nil
}

func (ix *Index) insert(id int64, vec []float32) error {
	exists, err := ix.db.RowExists(ix.schema, ix.shadow, id)
	if err != nil {
		return fmt.Errorf("failed to check id %d: %w", id, err)
	}
	if exists {
		return fmt.Errorf("%w: id %d", ErrExists, id)
	}

	startID, hasStart, err := ix.db.RandomRowID(ix.schema, ix.shadow)
	if err != nil {
		return fmt.Errorf("failed to pick start row: %w", err)
	}

	// First insert: no graph to search, no edges to install.
	if !hasStart {
		return ix.writeNewBlock(id, vec, nil)
	}

	sc := newSearchContext(vec, ix.cfg.Dimensions, ix.cfg.InsertListSize, 1, true, nil)
	defer sc.close()

	if err := ix.beamSearch(sc, startID, nil); err != nil {
		return err
	}

	return ix.writeNewBlock(id, vec, sc)
}

// writeNewBlock creates the shadow row, initializes its block and, when a
// populated traversal is supplied, runs the two edge-installation phases.
func (ix *Index) writeNewBlock(id int64, vec []float32, sc *searchContext) error {
	if err := ix.db.InsertZeroBlobRow(ix.schema, ix.shadow, id, ix.layout.BlockSize); err != nil {
		return fmt.Errorf("failed to create shadow row %d: %w", id, err)
	}

	newBlock := ix.newHandle(true)
	defer newBlock.Close()
	if err := newBlock.Reload(id); err != nil {
		return err
	}
	ix.layout.Init(newBlock.Buf(), id, vec)

	if sc != nil {
		// Phase 1: forward edges, new node -> visited nodes.
		for rec := sc.visitedHead; rec != nil; rec = rec.next {
			ix.layout.ReadVector(rec.handle.Buf(), sc.nodeVec)
			idx := ix.replaceEdgeIdx(newBlock.Buf(), rec.rowID, sc.nodeVec)
			if idx < 0 {
				continue
			}
			d := ix.distance(vec, sc.nodeVec)
			ix.layout.ReplaceEdge(newBlock.Buf(), idx, rec.rowID, d, sc.nodeVec)
			ix.pruneEdges(newBlock.Buf(), idx)
		}

		// Phase 2: back edges, visited nodes -> new node.
		for rec := sc.visitedHead; rec != nil; rec = rec.next {
			idx := ix.replaceEdgeIdx(rec.handle.Buf(), id, vec)
			if idx < 0 {
				continue
			}
			ix.layout.ReadVector(rec.handle.Buf(), sc.nodeVec)
			d := ix.distance(sc.nodeVec, vec)
			ix.layout.ReplaceEdge(rec.handle.Buf(), idx, id, d, vec)
			ix.pruneEdges(rec.handle.Buf(), idx)
			if err := rec.handle.Flush(); err != nil {
				return err
			}
		}
	}

	return newBlock.Flush()
}

// replaceEdgeIdx decides where (if anywhere) an edge to newID belongs in the
// block. Existing edges are scanned in reverse:
//
//   - an edge already targeting newID is overwritten in place, which
//     reinstates a previously pruned or dangling edge;
//   - when an existing edge's target is at least alpha times closer to the
//     new vector than the node itself, that edge dominates the new one:
//     reject;
//   - otherwise the farthest edge still worse than the new vector is
//     remembered as the replacement victim.
//
// With no dominating edge the result is a free slot (append) or the victim
// index, -1 when the list is full of closer edges.
func (ix *Index) replaceEdgeIdx(buf []byte, newID int64, newVec []float32) int {
	l := ix.layout
	n := l.EdgeCount(buf)
	alpha := ix.alpha()

	var dNew float32
	dNewComputed := false

	replaceIdx := -1
	var replaceDist float32

	for i := n - 1; i >= 0; i-- {
		if l.EdgeID(buf, i) == newID {
			return i
		}

		if !dNewComputed {
			l.ReadVector(buf, ix.vecNode)
			dNew = ix.distance(ix.vecNode, newVec)
			dNewComputed = true
		}

		dOld := l.EdgeDistance(buf, i)
		l.ReadEdgeVector(buf, i, ix.vecEdge)
		dBetween := ix.distance(ix.vecEdge, newVec)

		if float64(dNew) > alpha*float64(dBetween) {
			return -1
		}

		if dNew < dOld && (replaceIdx < 0 || dOld > replaceDist) {
			replaceIdx = i
			replaceDist = dOld
		}
	}

	if n < l.MaxEdges {
		return n
	}
	return replaceIdx
}

// pruneEdges removes every edge dominated by the anchor edge: an edge
// farther from the node than alpha times its distance to the anchor is
// redundant for navigation. Pruning stops at the MinDegree floor, which
// keeps the graph connected at scale.
func (ix *Index) pruneEdges(buf []byte, anchor int) {
	l := ix.layout
	alpha := ix.alpha()
	l.ReadEdgeVector(buf, anchor, ix.vecAnchor)

	for i := l.EdgeCount(buf) - 1; i >= 0; i-- {
		if l.EdgeCount(buf) <= node.MinDegree {
			return
		}
		if i == anchor || i >= l.EdgeCount(buf) {
			continue
		}

		dNode := l.EdgeDistance(buf, i)
		l.ReadEdgeVector(buf, i, ix.vecEdge)
		dAnchor := ix.distance(ix.vecEdge, ix.vecAnchor)

		if float64(dNode) > alpha*float64(dAnchor) {
			last := l.EdgeCount(buf) - 1
			l.DeleteEdge(buf, i)
			if anchor == last {
				anchor = i
			}
		}
	}
}
