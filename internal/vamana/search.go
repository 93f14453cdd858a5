package vamana

import (
	"errors"
	"fmt"

	"github.com/xDarkicex/diskvec/internal/blob"
	"github.com/xDarkicex/diskvec/internal/store"
	"github.com/xDarkicex/diskvec/internal/util"
)

// Search finds the k nearest neighbors to the query vector. An empty index
// returns zero results, not an error.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	return ix.SearchBeam(query, k, ix.cfg.SearchListSize, nil)
}

// SearchFiltered is Search with a per-row acceptance predicate. The beam is
// widened to max(2x search list, 4k) to compensate for rejected rows; a nil
// filter is equivalent to Search.
func (ix *Index) SearchFiltered(query []float32, k int, filter FilterFunc) ([]Result, error) {
	if filter == nil {
		return ix.Search(query, k)
	}
	beam := max(2*ix.cfg.SearchListSize, 4*k)
	return ix.SearchBeam(query, k, beam, filter)
}

// SearchBeam runs a search with an explicit beam width. A per-call beam
// overrides the metadata search list size.
func (ix *Index) SearchBeam(query []float32, k, beam int, filter FilterFunc) ([]Result, error) {
	if len(query) != ix.cfg.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimension, len(query), ix.cfg.Dimensions)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", ErrInvalid)
	}
	if beam < k {
		beam = k
	}

	startID, ok, err := ix.db.RandomRowID(ix.schema, ix.shadow)
	if err != nil {
		return nil, fmt.Errorf("failed to pick start row: %w", err)
	}
	if !ok {
		return []Result{}, nil
	}

	sc := newSearchContext(query, ix.cfg.Dimensions, beam, k, false, filter)
	defer sc.close()

	if err := ix.beamSearch(sc, startID, ix.cache); err != nil {
		return nil, err
	}
	return sc.results(), nil
}

// beamSearch drives the context through a best-first traversal from startID.
// In read-only mode without a cache a single handle is rebound from
// candidate to candidate; with a cache each visited node pins a shared
// entry; in writable mode each visited node keeps its own handle for the
// mutation phases that follow.
func (ix *Index) beamSearch(sc *searchContext, startID int64, cache *blob.Cache) error {
	var shared *blob.Handle
	defer func() {
		if shared != nil {
			shared.Close()
		}
	}()

	start := &nodeRecord{rowID: startID}
	buf, err := ix.loadRecord(sc, start, cache, &shared)
	if err != nil {
		if errors.Is(err, store.ErrRowNotFound) {
			// Start row vanished between selection and load; nothing
			// reachable.
			sc.free(start)
			return nil
		}
		sc.free(start)
		return err
	}
	ix.layout.ReadVector(buf, sc.nodeVec)
	d0 := ix.distance(sc.query, sc.nodeVec)
	sc.candidates = append(sc.candidates, start)
	sc.candDists = append(sc.candDists, d0)

	for len(sc.candidates) > 0 {
		rec := sc.candidates[0]
		d := sc.candDists[0]

		buf, err := ix.loadRecord(sc, rec, cache, &shared)
		if err != nil {
			if errors.Is(err, store.ErrRowNotFound) {
				// Dangling edge to a deleted row: drop and move on.
				sc.popCandidate()
				sc.free(rec)
				continue
			}
			return err
		}

		sc.popCandidate()
		sc.markVisited(rec)
		sc.offerResult(rec.rowID, d)

		edgeCount := ix.layout.EdgeCount(buf)
		for i := 0; i < edgeCount; i++ {
			target := ix.layout.EdgeID(buf, i)
			if sc.visitedSet.Contains(target) || sc.enqueued(target) {
				continue
			}

			ix.layout.ReadEdgeVector(buf, i, sc.edgeVec)
			dEdge := ix.distance(sc.query, sc.edgeVec)

			idx := util.DistanceInsertIdx(sc.candDists, sc.maxCandidates, dEdge)
			if idx < 0 {
				continue
			}

			candidate := &nodeRecord{rowID: target}
			var evicted *nodeRecord
			var wasFull bool
			sc.candidates, evicted, wasFull = util.ShiftInsert(sc.candidates, idx, candidate, sc.maxCandidates)
			sc.candDists, _, _ = util.ShiftInsert(sc.candDists, idx, dEdge, sc.maxCandidates)
			if wasFull {
				// Queued records are always unvisited; the visited
				// list owns everything else.
				sc.free(evicted)
			}
		}
	}

	return nil
}

// loadRecord pages the record's block in according to the traversal mode and
// returns the buffer it now occupies.
func (ix *Index) loadRecord(sc *searchContext, rec *nodeRecord, cache *blob.Cache, shared **blob.Handle) ([]byte, error) {
	if sc.writable {
		if rec.handle == nil {
			h := ix.newHandle(true)
			if err := h.Reload(rec.rowID); err != nil {
				h.Close()
				return nil, err
			}
			rec.handle = h
		}
		return rec.handle.Buf(), nil
	}

	if cache != nil {
		if rec.entry == nil {
			if entry := cache.Acquire(rec.rowID); entry != nil {
				if entry.Handle().Aborted() {
					if err := entry.Handle().Reload(rec.rowID); err != nil {
						entry.Release()
						return nil, err
					}
				}
				rec.entry = entry
				return entry.Handle().Buf(), nil
			}
			h := ix.newHandle(false)
			if err := h.Reload(rec.rowID); err != nil {
				h.Close()
				return nil, err
			}
			rec.entry = cache.Insert(rec.rowID, h)
		}
		return rec.entry.Handle().Buf(), nil
	}

	if *shared == nil {
		*shared = ix.newHandle(false)
	}
	if err := (*shared).Reload(rec.rowID); err != nil {
		return nil, err
	}
	return (*shared).Buf(), nil
}
