package blob

import "testing"

func newLoadedHandle(t *testing.T, id int64) (*Handle, func() bool) {
	t.Helper()
	db := newTestDB(t)
	addRow(t, db, id)
	h := NewHandle(db, "main", "t_shadow", testBlockSize, false)
	if err := h.Reload(id); err != nil {
		t.Fatalf("Reload(%d) error: %v", id, err)
	}
	closed := func() bool { return h.Buf() == nil }
	return h, closed
}

func TestCacheAcquireMissAndHit(t *testing.T) {
	c := NewCache(4)

	if e := c.Acquire(1); e != nil {
		t.Fatal("Acquire on empty cache returned entry")
	}

	h, _ := newLoadedHandle(t, 1)
	entry := c.Insert(1, h)
	entry.Release()

	got := c.Acquire(1)
	if got == nil {
		t.Fatal("Acquire after insert missed")
	}
	if got.Handle() != h {
		t.Fatal("Acquire returned a different handle")
	}
	got.Release()

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	c := NewCache(2)

	h1, closed1 := newLoadedHandle(t, 1)
	h2, _ := newLoadedHandle(t, 2)
	h3, _ := newLoadedHandle(t, 3)

	c.Insert(1, h1).Release()
	c.Insert(2, h2).Release()

	// Touch 1 so 2 becomes the LRU.
	c.Acquire(1).Release()

	c.Insert(3, h3).Release()

	if e := c.Acquire(2); e != nil {
		t.Fatal("LRU entry 2 survived eviction")
	}
	if e := c.Acquire(1); e == nil {
		t.Fatal("recently used entry 1 was evicted")
	} else {
		e.Release()
	}
	if closed1() {
		t.Fatal("cached handle 1 was closed")
	}
}

func TestCacheRefcountKeepsEvictedHandleAlive(t *testing.T) {
	c := NewCache(1)

	h1, closed1 := newLoadedHandle(t, 1)
	h2, _ := newLoadedHandle(t, 2)

	entry1 := c.Insert(1, h1) // traversal still holds entry1
	c.Insert(2, h2).Release() // evicts 1 from the cache

	if e := c.Acquire(1); e != nil {
		t.Fatal("evicted entry still reachable through the cache")
	}
	if closed1() {
		t.Fatal("handle closed while a traversal referenced it")
	}

	entry1.Release()
	if !closed1() {
		t.Fatal("handle not closed after last reference dropped")
	}
}

func TestCacheReleaseHandlesAborts(t *testing.T) {
	c := NewCache(4)

	h, _ := newLoadedHandle(t, 1)
	c.Insert(1, h).Release()

	c.ReleaseHandles()

	entry := c.Acquire(1)
	if entry == nil {
		t.Fatal("ReleaseHandles dropped the entry")
	}
	if !entry.Handle().Aborted() {
		t.Fatal("handle not marked aborted")
	}
	// Buffer contents survive; the host handle reopens on next reload.
	if entry.Handle().Buf() == nil {
		t.Fatal("buffer dropped by ReleaseHandles")
	}
	if err := entry.Handle().Reload(1); err != nil {
		t.Fatalf("Reload after ReleaseHandles error: %v", err)
	}
	entry.Release()
}

func TestCacheClear(t *testing.T) {
	c := NewCache(4)

	h, closed := newLoadedHandle(t, 1)
	c.Insert(1, h).Release()
	c.Clear()

	if e := c.Acquire(1); e != nil {
		t.Fatal("entry survived Clear")
	}
	if !closed() {
		t.Fatal("unreferenced handle not closed by Clear")
	}
	if got := c.Stats().Items; got != 0 {
		t.Errorf("items after Clear = %d, want 0", got)
	}
}
