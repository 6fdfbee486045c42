package observability

import (
	"context"

	"go-wishlist-app/internal/core/ports"
)

// InstrumentedCache is a decorator to intercept cache calls and record metrics.
type InstrumentedCache struct {
	inner ports.Cache
}

// NewInstrumentedCache creates a new instrumented cache wrapper.
func NewInstrumentedCache(inner ports.Cache) *InstrumentedCache {
	return &InstrumentedCache{inner: inner}
}

func (c *InstrumentedCache) AddToSet(ctx context.Context, id string, score float64) error {
	return c.inner.AddToSet(ctx, id, score)
}
func (c *InstrumentedCache) Set(ctx context.Context, id string, data []byte) error {
	return c.inner.Set(ctx, id, data)
}
func (c *InstrumentedCache) Remove(ctx context.Context, id string) error {
	return c.inner.Remove(ctx, id)
}
func (c *InstrumentedCache) Reset(ctx context.Context) error {
	return c.inner.Reset(ctx)
}
func (c *InstrumentedCache) GetBatch(ctx context.Context, ids []string) (map[string][]byte, error) {
	res, err := c.inner.GetBatch(ctx, ids)
	if err == nil {
		cacheHits.Add(float64(len(res)))
		cacheMisses.Add(float64(len(ids) - len(res)))
	}
	return res, err
}

// GetIdsFromSet counts an empty set as one miss; the caller falls back to storage.
func (c *InstrumentedCache) GetIdsFromSet(ctx context.Context, start, stop int64) ([]string, error) {
	ids, err := c.inner.GetIdsFromSet(ctx, start, stop)
	if err == nil && len(ids) == 0 {
		cacheMisses.Inc()
	}
	return ids, err
}
