package cache

import "sync"

// EvictFunc is called with the key and value of an entry removed to make
// room for a new one. It runs while the cache lock is held and must not call
// back into the cache.
type EvictFunc[K comparable, V any] func(key K, value V, size int)

// Cache is a bounded, thread-safe map that evicts its oldest entry when full.
// It uses sync.RWMutex because lookups vastly outnumber inserts.
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]V
	order    []K
	capacity int
	onEvict  EvictFunc[K, V]
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithEvictFunc registers a callback for evicted entries.
func WithEvictFunc[K comparable, V any](fn EvictFunc[K, V]) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New creates a cache holding at most capacity entries.
// A capacity of zero or less disables storage: lookups always miss.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:  make(map[K]V),
		capacity: max(capacity, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Get returns the value for a key and whether it exists.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put adds or replaces a value. Replacing keeps the entry's age.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(key, value)
}

// GetOrCreate returns the value for key, creating it with factory if absent.
// The boolean reports whether the value came from the cache. The factory is
// called at most once per key under concurrent access; its errors are
// returned and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, factory func() (V, error)) (V, bool, error) {
	if c.capacity == 0 {
		v, err := factory()
		return v, false, err
	}

	// Fast path
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if v, ok := c.entries[key]; ok {
		return v, true, nil
	}

	v, err := factory()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.store(key, v)
	return v, false, nil
}

// store inserts under the write lock, evicting the oldest entry if needed.
func (c *Cache[K, V]) store(key K, value V) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		evicted := c.entries[oldest]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		if c.onEvict != nil {
			c.onEvict(oldest, evicted, len(c.entries))
		}
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

// Delete removes a key.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}

// Keys returns the keys from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry without calling the eviction callback.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]V)
	c.order = nil
}
