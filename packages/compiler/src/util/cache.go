package util

import "sync"

// Cache memoizes a pure string transform. It holds at most limit entries and
// evicts the oldest inserted key once full. It is safe for concurrent use.
type Cache[V any] struct {
	mu     sync.Mutex
	limit  int
	fn     func(string) V
	store  map[string]V
	order  []string
	next   int
	hits   int
	misses int
}

// NewCache creates a Cache that computes missing values with fn.
func NewCache[V any](limit int, fn func(string) V) *Cache[V] {
	if limit < 1 {
		limit = 1
	}
	return &Cache[V]{
		limit: limit,
		fn:    fn,
		store: make(map[string]V, limit),
		order: make([]string, 0, limit),
	}
}

// Get returns the memoized value for key, computing it on a miss.
func (c *Cache[V]) Get(key string) V {
	c.mu.Lock()
	if v, ok := c.store[key]; ok {
		c.hits++
		c.mu.Unlock()
		return v
	}
	c.misses++
	c.mu.Unlock()

	v := c.fn(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.store[key]; ok {
		return v
	}
	if len(c.order) < c.limit {
		c.order = append(c.order, key)
	} else {
		delete(c.store, c.order[c.next])
		c.order[c.next] = key
		c.next = (c.next + 1) % c.limit
	}
	c.store[key] = v
	return v
}

// Has reports whether key is currently memoized.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

// Len returns the number of memoized entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Stats returns the hit and miss counters.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge drops every entry and resets the counters.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]V, c.limit)
	c.order = c.order[:0]
	c.next = 0
	c.hits, c.misses = 0, 0
}
