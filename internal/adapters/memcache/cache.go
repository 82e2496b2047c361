// Package memcache is an in-process implementation of ports.CacheService
// with per-entry TTL. It is the default route cache; the valkey adapter
// serves deployments that want the cache shared across replicas.
package memcache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

type entry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL map. Entries are evicted lazily on access;
// there is no background sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key, or ErrMiss if absent or expired. An expired
// entry is evicted on the spot.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value under key for ttlSeconds. An existing entry is superseded,
// never mutated in place.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(time.Duration(ttlSeconds) * time.Second),
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
