// Package diskvec provides a disk-resident approximate-nearest-neighbor
// index stored inside a SQLite database. Graph nodes live as fixed-size
// blocks in a per-index shadow table and are paged through incremental BLOB
// I/O; construction follows the Vamana/DiskANN algorithm with angle-based
// edge pruning.
package diskvec

import (
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"

	"github.com/xDarkicex/diskvec/internal/obs"
	"github.com/xDarkicex/diskvec/internal/vamana"
)

// Result represents one search hit, ordered ascending by distance.
type Result struct {
	ID       int64
	Distance float32
}

// FilterFunc is a per-row acceptance predicate for filtered search. A row
// rejected by the filter still participates in graph traversal as a bridge;
// it only stays out of the result set.
type FilterFunc func(id int64) bool

// Index is a handle on one index. A handle must not be shared across
// goroutines concurrently; independent handles against the same database are
// fine under the host's locking discipline.
type Index struct {
	mu      sync.Mutex
	inner   *vamana.Index
	metrics *obs.Metrics
	closed  bool
}

// Create provisions a new index in the given schema under the given name.
// It fails with ErrExists when the index is already present.
func Create(conn *sqlite.Conn, schema, name string, opts ...Option) error {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return vamana.Create(conn, schema, name, cfg.toInternal())
}

// Open returns a handle on an existing index. It fails with ErrNotFound when
// the index is absent and ErrVersion when the stored format is newer than
// this build supports.
func Open(conn *sqlite.Conn, schema, name string) (*Index, error) {
	inner, err := vamana.Open(conn, schema, name)
	if err != nil {
		return nil, err
	}
	return &Index{inner: inner, metrics: obs.GetMetrics()}, nil
}

// Drop removes the index's tables entirely.
func Drop(conn *sqlite.Conn, schema, name string) error {
	return vamana.Drop(conn, schema, name)
}

// Clear deletes every vector while preserving the index structure and
// configuration.
func Clear(conn *sqlite.Conn, schema, name string) error {
	return vamana.Clear(conn, schema, name)
}

// Insert adds a vector under a caller-assigned id. The id must be unique;
// collisions fail with ErrExists. The vector length must match the index
// dimensions.
func (ix *Index) Insert(id int64, vector []float32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrClosed
	}
	if err := ix.inner.Insert(id, vector); err != nil {
		return err
	}
	ix.metrics.VectorInserts.Inc()
	return nil
}

// Search returns up to k nearest neighbors of the query, ordered ascending
// by distance. An empty index yields zero results, not an error.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	return ix.searchBeam(query, k, 0, nil)
}

// SearchFiltered is Search constrained to rows the filter accepts. A nil
// filter is equivalent to Search. The traversal beam widens automatically to
// compensate for rejected rows.
func (ix *Index) SearchFiltered(query []float32, k int, filter FilterFunc) ([]Result, error) {
	return ix.searchBeam(query, k, 0, filter)
}

// searchBeam funnels every search variant: beam 0 means the configured (or
// filter-widened) default.
func (ix *Index) searchBeam(query []float32, k, beam int, filter FilterFunc) ([]Result, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	ix.metrics.SearchQueries.Inc()

	var inner []vamana.Result
	var err error
	innerFilter := toInternalFilter(filter)
	switch {
	case beam > 0:
		inner, err = ix.inner.SearchBeam(query, k, beam, innerFilter)
	case filter != nil:
		inner, err = ix.inner.SearchFiltered(query, k, innerFilter)
	default:
		inner, err = ix.inner.Search(query, k)
	}
	if err != nil {
		ix.metrics.SearchErrors.Inc()
		return nil, err
	}

	ix.metrics.SearchLatency.Observe(time.Since(start).Seconds())

	results := make([]Result, len(inner))
	for i, r := range inner {
		results[i] = Result{ID: r.ID, Distance: r.Distance}
	}
	return results, nil
}

// Delete removes a vector and cleans its neighbors' back-edges. Edges
// pointing at the deleted row from farther out dangle until search drops
// them lazily.
func (ix *Index) Delete(id int64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrClosed
	}
	if err := ix.inner.Delete(id); err != nil {
		return err
	}
	ix.metrics.VectorDeletes.Inc()
	return nil
}

// Count returns the number of vectors in the index.
func (ix *Index) Count() (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return 0, ErrClosed
	}
	return ix.inner.Count()
}

// Stats returns the handle's I/O and cache counters.
func (ix *Index) Stats() Stats {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	s := ix.inner.Stats()
	return Stats{
		BlockReads:  s.BlockReads,
		BlockWrites: s.BlockWrites,
		CacheHits:   s.CacheHits,
		CacheMisses: s.CacheMisses,
		CacheItems:  s.CacheItems,
	}
}

// BeginBatch groups subsequent inserts under one savepoint until EndBatch.
func (ix *Index) BeginBatch() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrClosed
	}
	return ix.inner.BeginBatch()
}

// EndBatch commits the active batch.
func (ix *Index) EndBatch() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrClosed
	}
	return ix.inner.EndBatch()
}

// AbortBatch rolls the active batch back.
func (ix *Index) AbortBatch() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return ErrClosed
	}
	return ix.inner.AbortBatch()
}

// ReleaseHandles force-closes cached BLOB handles. Call before committing a
// transaction that encloses this handle's reads: commits invalidate open
// handles, and released handles reopen transparently on next use.
func (ix *Index) ReleaseHandles() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.inner.ReleaseHandles()
}

// Close releases the handle's owned resources. The borrowed host connection
// stays open and caller-managed.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return nil
	}
	ix.closed = true
	return ix.inner.Close()
}

// Stats is a snapshot of one handle's counters.
type Stats struct {
	BlockReads  uint64
	BlockWrites uint64
	CacheHits   uint64
	CacheMisses uint64
	CacheItems  int
}

func toInternalFilter(f FilterFunc) vamana.FilterFunc {
	if f == nil {
		return nil
	}
	return vamana.FilterFunc(f)
}
