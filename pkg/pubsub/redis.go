package pubsub

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/siteage/siteage-platform/internal/log"
)

// RedisClient struct
type RedisClient struct {
	conn *redis.Client
}

// NewRedis returns a redis pubsub client
func NewRedis(rdb *redis.Client) Client {
	return &RedisClient{rdb}
}

// Publish publishes a new topic payload
func (rdb *RedisClient) Publish(ctx context.Context, topic string, payload Event) error {
	msg, err := payload.Marshal()
	if err != nil {
		return err
	}
	return rdb.conn.Publish(ctx, topic, []byte(msg)).Err()
}

// Subscribe registers a callback for a topic. Callbacks run in a dedicated
// goroutine per subscription; a panicking callback does not take down its
// siblings.
func (rdb *RedisClient) Subscribe(ctx context.Context, topic string, callback EventHandler) {
	pubsub := rdb.conn.Subscribe(ctx, topic)
	go func() {
		for {
			select {
			case event := <-pubsub.Channel():
				if event.Channel != topic {
					log.Error(ctx, "msg channel != topic", "channel", event.Channel, "topic", topic)
					continue
				}
				run(ctx, callback, Message(event.Payload))

			case <-ctx.Done():
				return
			}
		}
	}()
}

func run(ctx context.Context, callback EventHandler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "recovered panic in pubsub callback", "recover", r)
		}
	}()
	if err := callback(ctx, msg); err != nil {
		log.Error(ctx, "executing callback function", "err", err)
	}
}
