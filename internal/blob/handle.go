// Package blob provides the incremental BLOB handle wrapper and the
// reference-counted handle cache used to page node blocks in and out of the
// shadow table.
package blob

import (
	"fmt"
	"io"

	"zombiezen.com/go/sqlite"

	"github.com/xDarkicex/diskvec/internal/obs"
	"github.com/xDarkicex/diskvec/internal/store"
)

// metrics is the process-wide prometheus surface; per-handle counters on top
// of it feed Stats().
var metrics = obs.GetMetrics()

// IOCounters accumulates block reads and writes for one index handle.
type IOCounters struct {
	Reads  uint64
	Writes uint64
}

// Handle owns one host BLOB handle plus a block-sized page buffer. Rebinding
// to a different row goes through Reload; the buffer always mirrors the last
// loaded block. The aborted flag marks a handle whose underlying host handle
// was force-closed at a transaction boundary; the next Reload reopens it
// transparently.
type Handle struct {
	db     *store.DB
	schema string
	table  string

	blob        *sqlite.Blob
	buf         []byte
	rowID       int64
	writable    bool
	initialized bool
	aborted     bool

	counters *IOCounters
}

// NewHandle allocates a wrapper with a blockSize buffer. No host handle is
// opened until the first Reload.
func NewHandle(db *store.DB, schema, table string, blockSize int, writable bool) *Handle {
	return &Handle{
		db:       db,
		schema:   schema,
		table:    table,
		buf:      make([]byte, blockSize),
		writable: writable,
	}
}

// SetCounters attaches shared read/write counters.
func (h *Handle) SetCounters(c *IOCounters) {
	h.counters = c
}

// Buf returns the page buffer holding the last loaded block.
func (h *Handle) Buf() []byte {
	return h.buf
}

// RowID returns the row the buffer was last loaded from.
func (h *Handle) RowID() int64 {
	return h.rowID
}

// Writable reports whether the handle was opened for writing.
func (h *Handle) Writable() bool {
	return h.writable
}

// Initialized reports whether the buffer holds a loaded block.
func (h *Handle) Initialized() bool {
	return h.initialized
}

// Aborted reports whether the underlying host handle was force-closed and
// must be reopened on next use.
func (h *Handle) Aborted() bool {
	return h.aborted
}

// Reload binds the handle to rowID, reopening the host handle when the row
// differs or the handle was aborted, and reads the full block into the
// buffer. A missing target row surfaces as store.ErrRowNotFound.
func (h *Handle) Reload(rowID int64) error {
	if h.blob == nil || h.rowID != rowID || h.aborted {
		if h.blob != nil {
			h.blob.Close()
			h.blob = nil
		}
		blob, err := h.db.OpenBlob(h.schema, h.table, rowID, h.writable)
		if err != nil {
			return err
		}
		h.blob = blob
		h.rowID = rowID
		h.aborted = false
	}

	if _, err := h.blob.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: failed to seek blob rowid %d: %w", store.ErrIO, rowID, err)
	}
	if _, err := io.ReadFull(h.blob, h.buf); err != nil {
		return fmt.Errorf("%w: failed to read block rowid %d: %w", store.ErrIO, rowID, err)
	}

	h.initialized = true
	metrics.BlockReads.Inc()
	if h.counters != nil {
		h.counters.Reads++
	}
	return nil
}

// Flush writes the buffer back to the bound row. Only meaningful on a
// writable, initialized handle.
func (h *Handle) Flush() error {
	if !h.writable {
		return fmt.Errorf("flush on read-only handle rowid %d", h.rowID)
	}
	if !h.initialized || h.blob == nil {
		return fmt.Errorf("flush on uninitialized handle")
	}

	if _, err := h.blob.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: failed to seek blob rowid %d: %w", store.ErrIO, h.rowID, err)
	}
	if _, err := h.blob.Write(h.buf); err != nil {
		return fmt.Errorf("%w: failed to write block rowid %d: %w", store.ErrIO, h.rowID, err)
	}

	metrics.BlockWrites.Inc()
	if h.counters != nil {
		h.counters.Writes++
	}
	return nil
}

// Abort force-closes the underlying host handle while preserving the buffer.
// Used at transaction boundaries, where a commit invalidates open handles.
func (h *Handle) Abort() {
	if h.blob != nil {
		h.blob.Close()
		h.blob = nil
	}
	h.aborted = true
}

// Close releases the host handle and drops the buffer.
func (h *Handle) Close() error {
	var err error
	if h.blob != nil {
		err = h.blob.Close()
		h.blob = nil
	}
	h.buf = nil
	h.initialized = false
	return err
}
