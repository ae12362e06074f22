package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/redis"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	c := NewRedisCache(client)

	type lookup struct {
		Domain string
		Status string
	}

	require.NoError(t, c.Set(ctx, LookupKey("example.com"), lookup{Domain: "example.com", Status: "active"}, TTLLookup))

	var got lookup
	assert.True(t, c.Get(ctx, LookupKey("example.com"), &got))
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, "active", got.Status)
	assert.True(t, c.Exists(ctx, LookupKey("example.com")))

	require.NoError(t, c.Delete(ctx, LookupKey("example.com")))
	assert.False(t, c.Exists(ctx, LookupKey("example.com")))
}

func TestRedisCacheExpiration(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	c := NewRedisCache(client)

	require.NoError(t, c.Set(ctx, RefreshCooldownKey("example.com"), 1, TTLRefresh))
	assert.True(t, c.Exists(ctx, RefreshCooldownKey("example.com")))

	s.FastForward(TTLRefresh + time.Second)
	assert.False(t, c.Exists(ctx, RefreshCooldownKey("example.com")))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, KeyPercentiles, []int{1, 2, 3}, TTLStats))

	var got []int
	assert.True(t, c.Get(ctx, KeyPercentiles, &got))
	assert.Equal(t, []int{1, 2, 3}, got)

	require.NoError(t, c.Delete(ctx, KeyPercentiles))
	assert.False(t, c.Get(ctx, KeyPercentiles, &got))
}
