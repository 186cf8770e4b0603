// Package rendercache memoizes pipeline outputs behind a single
// synchronization boundary: a map of entries with a container/list side
// table for strict least-recently-used ordering, plus an in-flight table
// guaranteeing at most one concurrent compute per key.
package rendercache

import (
	"container/list"
	"sync"

	"github.com/AnyUserName/imgforge/internal/transform"
)

// DefaultMaxEntries is the bound used when a cache is constructed with a
// non-positive size.
const DefaultMaxEntries = 128

type entry struct {
	key string
	val *transform.Rendered
}

// call tracks one in-flight computation. Waiters block on done; val/err
// are written before done is closed.
type call struct {
	done chan struct{}
	val  *transform.Rendered
	err  error
}

// Cache is a bounded LRU memoization table. All entry mutation happens
// under one mutex; the compute function itself runs unlocked.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List // front = most recently used
	entries    map[string]*list.Element
	inflight   map[string]*call
}

// New creates a cache bounded to maxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		maxEntries: maxEntries,
		ll:         list.New(),
		entries:    make(map[string]*list.Element),
		inflight:   make(map[string]*call),
	}
}

// GetOrCompute returns the cached value for key, or invokes compute
// exactly once per distinct key to produce it. Concurrent callers for the
// same key coalesce onto the first caller's computation and share its
// result. A failed computation publishes nothing.
func (c *Cache) GetOrCompute(key string, compute func() (*transform.Rendered, error)) (*transform.Rendered, error) {
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.ll.MoveToFront(el)
		val := el.Value.(*entry).val
		c.mu.Unlock()
		return val, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-cl.done
		return cl.val, cl.err
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	val, err := compute()

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.insertLocked(key, val)
	}
	c.mu.Unlock()

	cl.val, cl.err = val, err
	close(cl.done)
	return val, err
}

// Get returns the cached value for key, promoting it on hit.
func (c *Cache) Get(key string) (*transform.Rendered, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).val, true
}

// insertLocked adds key at the most-recently-used position, evicting
// oldest entries until the bound holds. Caller holds c.mu.
func (c *Cache) insertLocked(key string, val *transform.Rendered) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).val = val
		c.ll.MoveToFront(el)
		return
	}
	c.entries[key] = c.ll.PushFront(&entry{key: key, val: val})
	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Invalidate removes all entries whose key matches pred and reports how
// many were dropped. In-flight computations are unaffected; they publish
// into the current generation when they finish.
func (c *Cache) Invalidate(pred func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped int
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if pred(e.key) {
			c.ll.Remove(el)
			delete(c.entries, e.key)
			dropped++
		}
		el = next
	}
	return dropped
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
