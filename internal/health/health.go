package health

import (
	"context"

	goRedis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v4/pgxpool"

	iRedis "github.com/siteage/siteage-platform/internal/redis"
)

const (
	cacheKey = "cache"
	dbKey    = "db"
)

// Status holds the pingers of the external systems the service depends on
type Status struct {
	pingers map[string]Ping
}

// Ping interface
type Ping interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	rdb *goRedis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return iRedis.Status(ctx, p.rdb)
}

// New returns a Status instance. Recognized pingers are the postgres pool and
// the redis client; anything else is ignored.
func New(pingers ...any) *Status {
	m := make(map[string]Ping)
	for _, p := range pingers {
		switch t := p.(type) {
		case *pgxpool.Pool:
			m[dbKey] = t
		case *goRedis.Client:
			m[cacheKey] = redisPinger{rdb: t}
		}
	}
	return &Status{m}
}

// Status returns whether each dependency answers a ping
func (h *Status) Status(ctx context.Context) map[string]bool {
	m := make(map[string]bool)
	for key, val := range h.pingers {
		m[key] = val.Ping(ctx) == nil
	}
	return m
}
