package vamana

import (
	"github.com/xDarkicex/diskvec/internal/blob"
	"github.com/xDarkicex/diskvec/internal/util"
)

// nodeRecord tracks one row id through a traversal: queued, then visited.
// In writable mode a visited record owns its BLOB handle so the insert
// phases can mutate and flush the block later; in cached read mode it holds
// a shared cache reference instead.
type nodeRecord struct {
	rowID   int64
	visited bool
	next    *nodeRecord
	handle  *blob.Handle
	entry   *blob.Entry
}

// searchContext owns the transient state of one beam search: the bounded
// candidate queue, the top-K result buffer, the visited list and the visited
// set. Candidate and result arrays are kept sorted ascending by distance.
type searchContext struct {
	query []float32

	candidates    []*nodeRecord
	candDists     []float32
	maxCandidates int

	k        int
	topIDs   []int64
	topDists []float32

	visitedHead *nodeRecord
	visitedTail *nodeRecord
	visitedSet  *util.VisitedSet

	writable bool
	filter   FilterFunc

	nodeVec []float32
	edgeVec []float32
}

func newSearchContext(query []float32, dims, maxCandidates, k int, writable bool, filter FilterFunc) *searchContext {
	return &searchContext{
		query:         query,
		candidates:    make([]*nodeRecord, 0, maxCandidates),
		candDists:     make([]float32, 0, maxCandidates),
		maxCandidates: maxCandidates,
		k:             k,
		topIDs:        make([]int64, 0, k),
		topDists:      make([]float32, 0, k),
		visitedSet:    util.NewVisitedSet(maxCandidates),
		writable:      writable,
		filter:        filter,
		nodeVec:       make([]float32, dims),
		edgeVec:       make([]float32, dims),
	}
}

// enqueued reports whether rowID is already waiting in the candidate queue.
func (sc *searchContext) enqueued(rowID int64) bool {
	for _, rec := range sc.candidates {
		if rec.rowID == rowID {
			return true
		}
	}
	return false
}

// popCandidate removes the queue head. The queue is sorted and visited
// records leave it immediately, so the head is always the closest unvisited
// candidate.
func (sc *searchContext) popCandidate() *nodeRecord {
	rec := sc.candidates[0]
	sc.candidates = util.ShiftDelete(sc.candidates, 0)
	sc.candDists = util.ShiftDelete(sc.candDists, 0)
	return rec
}

// markVisited moves a popped record onto the visited list. The visited set
// and visited list hold exactly the same row ids.
func (sc *searchContext) markVisited(rec *nodeRecord) {
	rec.visited = true
	rec.next = nil
	if sc.visitedTail == nil {
		sc.visitedHead = rec
	} else {
		sc.visitedTail.next = rec
	}
	sc.visitedTail = rec
	sc.visitedSet.Add(rec.rowID)
}

// offerResult inserts a visited row into the top-K buffer when the filter
// (if any) accepts it and its distance earns a slot.
func (sc *searchContext) offerResult(rowID int64, d float32) {
	if sc.filter != nil && !sc.filter(rowID) {
		return
	}
	idx := util.DistanceInsertIdx(sc.topDists, sc.k, d)
	if idx < 0 {
		return
	}
	sc.topDists, _, _ = util.ShiftInsert(sc.topDists, idx, d, sc.k)
	sc.topIDs, _, _ = util.ShiftInsert(sc.topIDs, idx, rowID, sc.k)
}

// free releases whatever block ownership a record carries.
func (sc *searchContext) free(rec *nodeRecord) {
	if rec.handle != nil {
		rec.handle.Close()
		rec.handle = nil
	}
	if rec.entry != nil {
		rec.entry.Release()
		rec.entry = nil
	}
}

// close tears the context down: owned handles on the visited list and any
// still-queued candidates are released.
func (sc *searchContext) close() {
	for rec := sc.visitedHead; rec != nil; rec = rec.next {
		sc.free(rec)
	}
	sc.visitedHead = nil
	sc.visitedTail = nil
	for _, rec := range sc.candidates {
		sc.free(rec)
	}
	sc.candidates = sc.candidates[:0]
	sc.candDists = sc.candDists[:0]
}

// results copies the top-K buffer out.
func (sc *searchContext) results() []Result {
	out := make([]Result, len(sc.topIDs))
	for i := range sc.topIDs {
		out[i] = Result{ID: sc.topIDs[i], Distance: sc.topDists[i]}
	}
	return out
}
