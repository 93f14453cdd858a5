package vamana

import (
	"errors"
	"fmt"

	"github.com/xDarkicex/diskvec/internal/store"
)

// Delete removes a vector and cleans the back-edges its neighbors hold.
// Edges pointing at the deleted row from farther out are left dangling on
// purpose; search drops them lazily on encounter. No graph repair happens
// here; delete-heavy workloads should periodically rebuild instead.
func (ix *Index) Delete(id int64) error {
	sp := ix.db.Savepoint("diskvec_delete")
	if err := ix.deleteRow(id); err != nil {
		sp.Rollback()
		return err
	}
	if err := sp.Release(); err != nil {
		return err
	}
	ix.invalidateCache()
	return nil
}

func (ix *Index) deleteRow(id int64) error {
	target := ix.newHandle(false)
	defer target.Close()
	if err := target.Reload(id); err != nil {
		if errors.Is(err, store.ErrRowNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return err
	}

	// One writable wrapper rebound across all neighbors.
	neighbor := ix.newHandle(true)
	defer neighbor.Close()

	buf := target.Buf()
	edgeCount := ix.layout.EdgeCount(buf)
	for i := 0; i < edgeCount; i++ {
		neighborID := ix.layout.EdgeID(buf, i)
		if neighborID == id {
			continue
		}

		if err := neighbor.Reload(neighborID); err != nil {
			if errors.Is(err, store.ErrRowNotFound) {
				// The neighbor is itself gone; its edge was dangling.
				continue
			}
			return err
		}

		back := ix.layout.FindEdge(neighbor.Buf(), id)
		if back < 0 {
			continue
		}
		ix.layout.DeleteEdge(neighbor.Buf(), back)
		if err := neighbor.Flush(); err != nil {
			return err
		}
	}

	// Close the read handle before the row disappears under it.
	target.Close()

	changes, err := ix.db.DeleteRow(ix.schema, ix.shadow, id)
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", id, err)
	}
	if changes != 1 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
