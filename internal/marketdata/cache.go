package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// Cache wraps a Provider with a TTL cache keyed by (symbol, interval, limit).
// Each consumer injects its own cache; there is no process-wide instance.
type Cache struct {
	inner Provider
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	now func() time.Time // test hook
}

type cacheEntry struct {
	bars    []core.Bar
	fetched time.Time
}

// NewCache wraps the provider. A non-positive ttl disables caching.
func NewCache(inner Provider, ttl time.Duration) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) Name() string {
	return c.inner.Name()
}

// FetchBars serves from the cache while the entry is fresh, otherwise
// delegates to the wrapped provider. Errors are never cached.
func (c *Cache) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]core.Bar, error) {
	if c.ttl <= 0 {
		return c.inner.FetchBars(ctx, symbol, interval, limit)
	}

	key := fmt.Sprintf("%s|%s|%d", symbol, interval, limit)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.fetched) < c.ttl {
		out := make([]core.Bar, len(entry.bars))
		copy(out, entry.bars)
		return out, nil
	}

	bars, err := c.inner.FetchBars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	stored := make([]core.Bar, len(bars))
	copy(stored, bars)
	c.mu.Lock()
	c.entries[key] = cacheEntry{bars: stored, fetched: c.now()}
	c.mu.Unlock()
	return bars, nil
}
