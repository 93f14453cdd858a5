package blob

import (
	"container/list"
	"fmt"
	"sync"
)

// Cache is a bounded LRU of BLOB handles keyed by row id. Entries are
// reference-counted: the cache holds one reference and any live traversal
// may hold more, so an evicted handle stays usable until the traversal
// releases it. The underlying handle closes only when the last reference
// drops.
type Cache struct {
	capacity int

	mu     sync.Mutex
	items  map[int64]*list.Element
	order  *list.List
	hits   uint64
	misses uint64
}

// Entry is one shared cache slot.
type Entry struct {
	cache  *Cache
	rowID  int64
	handle *Handle
	refs   int
}

// NewCache creates a cache holding at most capacity handles.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		items:    make(map[int64]*list.Element),
		order:    list.New(),
	}
}

// Acquire returns the entry for rowID with an extra reference, promoting it
// to most recently used. A miss returns nil.
func (c *Cache) Acquire(rowID int64) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[rowID]
	if !exists {
		c.misses++
		metrics.CacheMisses.Inc()
		return nil
	}

	c.hits++
	metrics.CacheHits.Inc()
	c.order.MoveToFront(elem)
	entry := elem.Value.(*Entry)
	entry.refs++
	return entry
}

// Insert adds a loaded handle under rowID, evicting the least recently used
// entry when full. The returned entry carries two references: the cache's
// own and the caller's.
func (c *Cache) Insert(rowID int64, h *Handle) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[rowID]; exists {
		// Replace in place; the old entry lives on with whatever
		// traversal still references it.
		old := elem.Value.(*Entry)
		c.order.Remove(elem)
		delete(c.items, rowID)
		c.releaseLocked(old)
	}

	for len(c.items) >= c.capacity && c.order.Len() > 0 {
		c.evictLRULocked()
	}

	entry := &Entry{cache: c, rowID: rowID, handle: h, refs: 2}
	c.items[rowID] = c.order.PushFront(entry)
	return entry
}

// ReleaseHandles force-closes every cached host handle while keeping the
// entries and their buffers. Invoked by the transaction-boundary owner
// before commit; each handle reopens transparently on its next Reload.
func (c *Cache) ReleaseHandles() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		elem.Value.(*Entry).handle.Abort()
	}
}

// Clear drops the cache's reference on every entry. Handles still referenced
// by a traversal survive until that reference is released.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*Entry)
		delete(c.items, entry.rowID)
		c.releaseLocked(entry)
	}
	c.order.Init()
}

// Handle returns the entry's shared handle.
func (e *Entry) Handle() *Handle {
	return e.handle
}

// Release drops one reference; the underlying handle closes when the last
// reference is gone.
func (e *Entry) Release() {
	e.cache.mu.Lock()
	defer e.cache.mu.Unlock()
	e.cache.releaseLocked(e)
}

func (c *Cache) releaseLocked(e *Entry) {
	e.refs--
	if e.refs == 0 {
		e.handle.Close()
	}
}

func (c *Cache) evictLRULocked() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*Entry)
	c.order.Remove(elem)
	delete(c.items, entry.rowID)
	c.releaseLocked(entry)
}

// Stats returns hit/miss counters and the current entry count.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Items: len(c.items)}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Items  int
}

// String returns a string representation of cache stats
func (s CacheStats) String() string {
	return fmt.Sprintf("Cache{hits=%d, misses=%d, items=%d}", s.Hits, s.Misses, s.Items)
}
