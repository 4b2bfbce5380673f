package indicators

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL keeps the panel for an hour so the upstream APIs are not
// hit on every page load.
const DefaultCacheTTL = time.Hour

// Fetcher produces a fresh indicator panel.
type Fetcher interface {
	Fetch(ctx context.Context) []Indicator
}

// Cache memoizes the indicator panel for a fixed TTL. It is constructed
// once at startup and passed to whoever serves indicators, so there is no
// hidden process-wide state. Safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration

	mu        sync.Mutex
	snapshot  []Indicator
	fetchedAt time.Time
}

// NewCache wraps fetcher with a TTL cache. A ttl <= 0 uses DefaultCacheTTL.
func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{fetcher: fetcher, ttl: ttl}
}

// Get returns the cached panel, refreshing it when stale. Concurrent
// callers during a refresh wait for one fetch rather than racing the
// upstream APIs.
func (c *Cache) Get(ctx context.Context) []Indicator {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.snapshot
	}

	c.snapshot = c.fetcher.Fetch(ctx)
	c.fetchedAt = time.Now()
	return c.snapshot
}

// Refresh forces a fetch regardless of TTL, for background refresh loops.
func (c *Cache) Refresh(ctx context.Context) []Indicator {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = c.fetcher.Fetch(ctx)
	c.fetchedAt = time.Now()
	return c.snapshot
}
