package cache

import "sync"

// Cache is a generic thread-safe LRU cache with an eviction callback.
//
// When the number of entries exceeds the limit, least recently used entries
// are evicted. The callback also fires for entries removed by Delete, Clear,
// or replaced by Set, so owners can release resources held by values.
// Callbacks run after the cache lock is dropped, in eviction order.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	order   lruList[K, V]
	limit   int
	onEvict func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most limit entries (0 means unlimited).
// onEvict may be nil.
func New[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*node[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

type evicted[K comparable, V any] struct {
	key   K
	value V
}

func (c *Cache[K, V]) notify(list []evicted[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range list {
		c.onEvict(e.key, e.value)
	}
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(n)
	return n.value, true
}

// Peek retrieves a value without touching its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value. A replaced value is passed to the eviction callback.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	var out []evicted[K, V]
	if n, ok := c.entries[key]; ok {
		out = append(out, evicted[K, V]{key, n.value})
		n.value = value
		c.order.moveToFront(n)
	} else {
		n := &node[K, V]{key: key, value: value}
		c.entries[key] = n
		c.order.pushFront(n)
		out = c.trimLocked(out)
	}
	c.mu.Unlock()

	c.notify(out)
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock, so concurrent callers never create twice.
// If create fails nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		c.hits++
		c.order.moveToFront(n)
		value := n.value
		c.mu.Unlock()
		return value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.order.pushFront(n)
	out := c.trimLocked(nil)
	c.mu.Unlock()

	c.notify(out)
	return value, nil
}

// Delete removes an entry and reports whether it existed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	n, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.order.remove(n)
	}
	c.mu.Unlock()

	if ok {
		c.notify([]evicted[K, V]{{n.key, n.value}})
	}
	return ok
}

// Clear removes all entries, least recently used first.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	out := make([]evicted[K, V], 0, len(c.entries))
	for n := c.order.tail; n != nil; n = n.prev {
		out = append(out, evicted[K, V]{n.key, n.value})
	}
	c.entries = make(map[K]*node[K, V])
	c.order = lruList[K, V]{}
	c.mu.Unlock()

	c.notify(out)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.entries))
	for n := c.order.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Capacity:  c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// trimLocked evicts from the tail until the cache fits its limit.
// Caller must hold c.mu.
func (c *Cache[K, V]) trimLocked(out []evicted[K, V]) []evicted[K, V] {
	for c.limit > 0 && len(c.entries) > c.limit {
		n := c.order.tail
		c.order.remove(n)
		delete(c.entries, n.key)
		c.evictions++
		out = append(out, evicted[K, V]{n.key, n.value})
	}
	return out
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit (0 = unlimited).
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// Evictions counts entries dropped to honour the limit.
	Evictions uint64
}
