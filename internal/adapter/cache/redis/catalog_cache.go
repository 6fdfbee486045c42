package redis

import (
	"context"
	"time"

	"go-wishlist-app/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const DefaultCatalogTTL = 24 * time.Hour

// CatalogCache keeps the catalog snapshot as a sorted set of ids scored by
// creation time, next to one key per item holding its JSON.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Ensure CatalogCache implements ports.Cache
var _ ports.Cache = (*CatalogCache)(nil)

const (
	SetKey = "catalog:all"
	Prefix = "catalog:item:"
)

func (c *CatalogCache) AddToSet(ctx context.Context, id string, score float64) error {
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, SetKey, redis.Z{Score: score, Member: id})
	pipe.Expire(ctx, SetKey, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *CatalogCache) Set(ctx context.Context, id string, data []byte) error {
	return c.client.Set(ctx, Prefix+id, data, c.ttl).Err()
}

func (c *CatalogCache) GetBatch(ctx context.Context, ids []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Prefix + id
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, val := range vals {
		if v, ok := val.(string); ok {
			result[ids[i]] = []byte(v)
		}
	}
	return result, nil
}

func (c *CatalogCache) GetIdsFromSet(ctx context.Context, start, stop int64) ([]string, error) {
	return c.client.ZRevRange(ctx, SetKey, start, stop).Result()
}

func (c *CatalogCache) Remove(ctx context.Context, id string) error {
	pipe := c.client.Pipeline()
	pipe.ZRem(ctx, SetKey, id)
	pipe.Del(ctx, Prefix+id)
	_, err := pipe.Exec(ctx)
	return err
}

// Reset drops the snapshot set. Item keys stay and expire on their own.
func (c *CatalogCache) Reset(ctx context.Context) error {
	return c.client.Del(ctx, SetKey).Err()
}
