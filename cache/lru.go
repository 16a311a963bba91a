package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// LRUCache is the default Cache implementation: a fixed-capacity, entry
// count-bounded LRU keyed by K, holding arbitrary entity values, since
// §4.6 sizes caches in entries rather than bytes.
type LRUCache[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[K]*list.Element
	evictList *list.List

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache creates an LRU cache holding at most capacity entries.
// A non-positive capacity is treated as 1, since an unbounded cache
// should use a different Cache implementation entirely rather than this
// one configured to never evict.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element, capacity),
		evictList: list.New(),
	}
}

// Get returns the cached value for key, populating it via load on a
// miss. Concurrent misses for the same key each invoke load; the loader
// itself (typically an EntityLoader) tolerates the redundant read.
func (c *LRUCache[K, V]) Get(ctx context.Context, key K, load Loader[K, V]) (V, error) {
	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		v := ent.Value.(*lruEntry[K, V]).value
		c.hits.Add(1)
		c.mu.Unlock()
		return v, nil
	}
	c.misses.Add(1)
	c.mu.Unlock()

	value, err := load(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, value)
	return value, nil
}

// Put installs value directly, evicting the least recently used entry
// if the cache is at capacity.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*lruEntry[K, V]).value = value
		return
	}

	ent := c.evictList.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.items[key] = ent

	for c.evictList.Len() > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
		c.evictions.Add(1)
	}
}

func (c *LRUCache[K, V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*lruEntry[K, V]).key)
}

// Stats returns cumulative hit, miss, and eviction counters.
func (c *LRUCache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *LRUCache[K, V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element)
	c.evictList.Init()
	return nil
}
