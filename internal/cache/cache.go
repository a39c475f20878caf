// Package cache provides time-bounded memoization of fetched payloads,
// keyed by source, with explicit invalidation.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache memoizes values per key for a caller-supplied TTL. All methods
// are safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key when it is younger than
// ttl, otherwise calls fetch and stores the result. The second return
// value reports whether the value came from the cache. A fetch error is
// returned as-is and nothing is stored.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (V, error)) (V, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < ttl {
		c.mu.Unlock()
		return e.value, true, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, false, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, fetchedAt: c.now()}
	c.mu.Unlock()

	return value, false, nil
}

// Invalidate drops the entry for key, forcing the next GetOrFetch to
// hit the source.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
