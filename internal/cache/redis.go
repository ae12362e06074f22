package cache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
)

type redisCache struct {
	redis *cache.Cache
}

// NewRedisCache returns the redis backed cache every deployment with more
// than one process needs: the lookup, detail and percentile entries written
// here are read by the api, the scheduler and the badge renderer alike.
// The local in-process layer of go-redis/cache is disabled so an
// invalidation in one process is immediately visible in the others.
func NewRedisCache(client *redis.Client) Cache {
	myc := cache.New(&cache.Options{Redis: client})
	return &redisCache{redis: myc}
}

// Set stores a value under key for ttl. Values are msgpack encoded by the
// underlying library; callers only ever pass plain structs and []int tables.
func (c *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	item := &cache.Item{
		Ctx:            ctx,
		Key:            key,
		Value:          value,
		TTL:            ttl,
		SkipLocalCache: true,
	}
	return c.redis.Set(item)
}

// Get loads key into value (a pointer) and reports whether it was found.
// A decode failure counts as a miss: the entry is advisory, never truth.
func (c *redisCache) Get(ctx context.Context, key string, value any) bool {
	if err := c.redis.Get(ctx, key, &value); err != nil {
		return false
	}

	return true
}

// Exists reports whether key holds an unexpired value. The refresh cooldown
// uses this without ever reading the value back.
func (c *redisCache) Exists(ctx context.Context, key string) bool {
	return c.redis.Exists(ctx, key)
}

// Delete invalidates a key. Mutating code paths call this instead of
// rewriting entries, so a stale view can at worst survive until its TTL.
func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.redis.Delete(ctx, key)
}
