package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteage/siteage-platform/internal/redis"
)

func TestRedisHappyPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)

	wg := sync.WaitGroup{}

	ps := NewRedis(client)
	ps.Subscribe(ctx, EventDomainVerified, func(ctx context.Context, payload Message) error {
		defer wg.Done()
		var ev DomainVerifiedEvent
		assert.NoError(t, ev.Unmarshal(payload))
		assert.Equal(t, "example.com", ev.Domain)
		assert.Equal(t, "owner@example.com", ev.Email)
		assert.Equal(t, "deadbeef", ev.MagicKey)
		return nil
	})

	wg.Add(1)
	require.NoError(t, ps.Publish(ctx, EventDomainVerified, &DomainVerifiedEvent{
		Domain:   "example.com",
		Email:    "owner@example.com",
		MagicKey: "deadbeef",
	}))

	wg.Wait()
}

func TestRedisRecover(t *testing.T) {
	const nEvents = 100
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := miniredis.RunT(t)
	client, err := redis.Open(ctx, "redis://"+s.Addr())
	require.NoError(t, err)

	wg := sync.WaitGroup{}

	ps := NewRedis(client)
	// This subscriber panics ...
	ps.Subscribe(ctx, EventDomainVerified, func(ctx context.Context, payload Message) error {
		defer wg.Done()
		panic("simulating a panic")
	})
	var count atomic.Int64
	// ... but this other one still runs without problems
	ps.Subscribe(ctx, EventDomainVerified, func(ctx context.Context, payload Message) error {
		defer wg.Done()
		count.Add(1)
		return nil
	})

	for i := 0; i < nEvents; i++ {
		wg.Add(2)
		require.NoError(t, ps.Publish(ctx, EventDomainVerified, &DomainVerifiedEvent{}))
	}

	wg.Wait()

	assert.Equal(t, nEvents, int(count.Load()))
}
