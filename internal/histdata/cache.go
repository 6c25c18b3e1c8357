package histdata

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"fx-data/internal/model"
)

// Cache maps a currency pair to its ingested, weekend-free series.
// Entries are never evicted; they live as long as the Cache.
// Cached series are shared between callers and must not be modified.
type Cache struct {
	mu     sync.RWMutex
	series map[string]model.Series
	group  singleflight.Group
}

func NewCache() *Cache {
	return &Cache{series: make(map[string]model.Series)}
}

// Get returns the cached series for pair.
func (c *Cache) Get(pair string) (model.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[pair]
	return s, ok
}

// GetOrLoad returns the cached series or runs load once, even under concurrent callers.
// A failed load stores nothing. hit reports whether the series came from the cache.
// Callers that joined a load whose own caller was cancelled retry with their ctx.
func (c *Cache) GetOrLoad(ctx context.Context, pair string, load func(context.Context) (model.Series, error)) (s model.Series, hit bool, err error) {
	if s, ok := c.Get(pair); ok {
		return s, true, nil
	}
	for {
		led := false
		v, err, _ := c.group.Do(pair, func() (any, error) {
			led = true
			if s, ok := c.Get(pair); ok {
				return s, nil
			}
			s, err := load(ctx)
			if err != nil {
				return nil, err
			}
			c.mu.Lock()
			c.series[pair] = s
			c.mu.Unlock()
			return s, nil
		})
		if err != nil {
			if !led && ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				continue
			}
			return nil, false, err
		}
		return v.(model.Series), false, nil
	}
}

// Len returns the number of cached pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series)
}
