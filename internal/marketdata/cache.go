package marketdata

import (
	"sync"
	"time"
)

// SnapshotCache holds fetched feed snapshots for a fixed TTL. The upstream
// refreshes on a known cadence, so anything younger than the TTL is as
// fresh as a new request would be.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value when present and not expired.
func (c *SnapshotCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value under key with a fresh timestamp.
func (c *SnapshotCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Clear drops all cached snapshots. Exposed for the admin endpoint and
// tests.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
