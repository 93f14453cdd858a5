// Package vamana implements a disk-resident Vamana graph index: beam search
// over fixed-size node blocks paged through incremental BLOB I/O, and
// insertion with angle-based (alpha) edge pruning.
package vamana

import (
	"fmt"

	"github.com/xDarkicex/diskvec/internal/blob"
	"github.com/xDarkicex/diskvec/internal/node"
	"github.com/xDarkicex/diskvec/internal/store"
	"github.com/xDarkicex/diskvec/internal/util"
)

// FormatVersion gates open: indices written by a strictly newer build are
// rejected.
const FormatVersion = node.FormatVersion

// Result represents one search hit.
type Result struct {
	ID       int64
	Distance float32
}

// FilterFunc is a per-row acceptance predicate evaluated during traversal.
// Rejected rows still bridge the graph walk; they only stay out of the
// result set.
type FilterFunc func(rowID int64) bool

const defaultCacheCapacity = 64

// Index is a handle on one disk-resident graph index. It borrows the host
// connection and owns everything else: names, configuration, layout, the
// read-path handle cache and the I/O counters. Single-threaded per handle.
type Index struct {
	db     *store.DB
	schema string
	name   string
	shadow string
	meta   string

	cfg      Config
	layout   node.Layout
	distance util.DistanceFunc

	cache *blob.Cache
	io    blob.IOCounters
	batch *batchState

	// Scratch vectors reused across edge decisions; the handle is
	// single-threaded so one set suffices.
	vecNode   []float32
	vecEdge   []float32
	vecAnchor []float32
}

// Stats is a snapshot of one handle's I/O and cache counters.
type Stats struct {
	BlockReads  uint64
	BlockWrites uint64
	CacheHits   uint64
	CacheMisses uint64
	CacheItems  int
}

// Config returns the index configuration loaded from metadata.
func (ix *Index) Config() Config {
	return ix.cfg
}

// Stats returns the handle's counters.
func (ix *Index) Stats() Stats {
	cs := ix.cache.Stats()
	return Stats{
		BlockReads:  ix.io.Reads,
		BlockWrites: ix.io.Writes,
		CacheHits:   cs.Hits,
		CacheMisses: cs.Misses,
		CacheItems:  cs.Items,
	}
}

// Count returns the number of vectors in the index.
func (ix *Index) Count() (int64, error) {
	n, err := ix.db.CountRows(ix.schema, ix.shadow)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s.%s: %w", ix.schema, ix.shadow, err)
	}
	return n, nil
}

// ReleaseHandles force-closes every cached BLOB handle. The transaction
// boundary owner must call this before COMMIT: a commit invalidates open
// handles, and aborted handles reopen transparently on next use.
func (ix *Index) ReleaseHandles() {
	ix.cache.ReleaseHandles()
}

// Close releases the handle's owned resources. The borrowed host connection
// is left untouched.
func (ix *Index) Close() error {
	ix.cache.Clear()
	return nil
}

// alpha returns the pruning diversity parameter as a float.
func (ix *Index) alpha() float64 {
	return float64(ix.cfg.PruningAlphaX1000) / 1000
}

// newHandle allocates a BLOB wrapper bound to this index's shadow table.
func (ix *Index) newHandle(writable bool) *blob.Handle {
	h := blob.NewHandle(ix.db, ix.schema, ix.shadow, ix.layout.BlockSize, writable)
	h.SetCounters(&ix.io)
	return h
}

// invalidateCache drops cached read blocks after a mutation; their buffers
// no longer mirror the shadow table.
func (ix *Index) invalidateCache() {
	ix.cache.Clear()
}
