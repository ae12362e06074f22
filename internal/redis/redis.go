package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Open parses SITEAGE_REDIS_URL, connects and pings. The same client feeds
// both the cache layer and the verification pubsub, so a dead redis is a
// startup failure, not something to limp along without.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := Status(ctx, rdb); err != nil {
		return nil, err
	}
	return rdb, nil
}

// Status pings the connection. The liveness endpoint calls this on every
// /status request.
func Status(ctx context.Context, rdb *redis.Client) error {
	if pingCmd := rdb.Ping(ctx); pingCmd.Err() != nil {
		return pingCmd.Err()
	}
	return nil
}
