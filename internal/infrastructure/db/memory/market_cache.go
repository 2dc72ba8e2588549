package memory

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often a write scans the whole map for expired
// entries.
const sweepInterval = time.Minute

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// MarketCache is an in-process response cache with per-entry expiry.
// Expired entries are dropped on lookup and by a periodic sweep on Set, so
// keys that are never read again do not accumulate.
type MarketCache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	nextSweep time.Time
	now       func() time.Time
}

func NewMarketCache() *MarketCache {
	return &MarketCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *MarketCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.body, true, nil
}

func (c *MarketCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !now.Before(c.nextSweep) {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.nextSweep = now.Add(sweepInterval)
	}
	c.entries[key] = cacheEntry{body: body, expiresAt: now.Add(ttl)}
	return nil
}
