package vamana

import (
	"fmt"

	"github.com/xDarkicex/diskvec/internal/store"
)

// batchState wraps a run of inserts in one savepoint. Per-insert savepoints
// nest inside it, so an individual failed insert rolls back alone while the
// batch decides the fate of the whole run.
type batchState struct {
	sp *store.Savepoint
}

// BeginBatch opens a batch: subsequent mutations accumulate under one
// savepoint until EndBatch or AbortBatch.
func (ix *Index) BeginBatch() error {
	if ix.batch != nil {
		return fmt.Errorf("%w: batch already active", ErrInvalid)
	}
	ix.batch = &batchState{sp: ix.db.Savepoint("diskvec_batch")}
	return nil
}

// EndBatch commits the batch. Cached BLOB handles are force-closed first:
// releasing the savepoint may commit the enclosing transaction, and a commit
// invalidates open handles.
func (ix *Index) EndBatch() error {
	if ix.batch == nil {
		return fmt.Errorf("%w: no batch active", ErrInvalid)
	}
	ix.cache.ReleaseHandles()
	err := ix.batch.sp.Release()
	ix.batch = nil
	return err
}

// AbortBatch rolls the whole batch back.
func (ix *Index) AbortBatch() error {
	if ix.batch == nil {
		return fmt.Errorf("%w: no batch active", ErrInvalid)
	}
	ix.cache.ReleaseHandles()
	err := ix.batch.sp.Rollback()
	ix.batch = nil
	ix.invalidateCache()
	return err
}
