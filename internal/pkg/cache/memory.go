package cache

import (
	"context"
	"sync"
	"time"

	"langindexer/internal/pkg/models"
)

type memoryEntry struct {
	detection models.Detection
	expires   time.Time
}

// MemoryCache is an in-process Cache used when Redis is unavailable.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemoryCache returns a cache holding at most maxEntries detections for
// ttl each.
func NewMemoryCache(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: max(maxEntries, 1),
		now:        time.Now,
	}
}

// Get returns a copy of the detection stored under signature.
func (c *MemoryCache) Get(_ context.Context, signature string) (*models.Detection, error) {
	c.mu.RLock()
	e, found := c.entries[signature]
	c.mu.RUnlock()
	if !found || c.now().After(e.expires) {
		return nil, ErrMiss
	}
	d := e.detection
	return &d, nil
}

// Set stores a copy of detection. When the cache is full, expired entries
// are dropped first, then an arbitrary one.
func (c *MemoryCache) Set(_ context.Context, signature string, detection *models.Detection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, found := c.entries[signature]; !found && len(c.entries) >= c.maxEntries {
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
		for k := range c.entries {
			if len(c.entries) < c.maxEntries {
				break
			}
			delete(c.entries, k)
		}
	}
	c.entries[signature] = memoryEntry{detection: *detection, expires: now.Add(c.ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op.
func (c *MemoryCache) Close() error {
	return nil
}
