// Package cache provides an in-memory TTL cache for the HTTP server.
// It uses patrickmn/go-cache and backs per-client rate limit state.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps go-cache with the operations the server needs.
type Cache struct {
	store *gocache.Cache
}

// New creates a new cache with the given TTL and cleanup interval.
// defaultTTL is the default expiration time for cache entries.
// cleanupInterval is how often expired items are removed from memory.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// GetOrAdd returns the cached value for key, storing value first if the key
// is absent. The returned bool reports whether value was stored.
func (c *Cache) GetOrAdd(key string, value any) (any, bool) {
	if existing, ok := c.store.Get(key); ok {
		return existing, false
	}
	if err := c.store.Add(key, value, gocache.DefaultExpiration); err != nil {
		// Lost the race to another writer.
		if existing, ok := c.store.Get(key); ok {
			return existing, false
		}
		c.store.Set(key, value, gocache.DefaultExpiration)
	}
	return value, true
}

// ItemCount returns the number of items in the cache, expired or not.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
