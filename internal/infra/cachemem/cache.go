package cachemem

import (
	"context"
	"sync"
	"time"
)

// CountCache memoises directory-join competitor counts so repeated report
// requests for the same category and city do not re-scan the vendor table.
type CountCache struct {
	mu      sync.Mutex
	entries map[string]countEntry
}

type countEntry struct {
	value     int
	expiresAt time.Time
	hasExpiry bool
}

func New() *CountCache {
	return &CountCache{
		entries: make(map[string]countEntry),
	}
}

func (c *CountCache) Get(ctx context.Context, key string) (int, bool, error) {
	if c == nil {
		return 0, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return 0, false, nil
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return 0, false, nil
	}
	return entry.value, true, nil
}

func (c *CountCache) Put(ctx context.Context, key string, value int, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := countEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}
