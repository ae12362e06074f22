package cache

import (
	"context"
	"time"
)

// TTLs for the different families of cached values.
const (
	TTLLookup  = 24 * time.Hour  // resolver results
	TTLDetail  = 5 * time.Minute // domain detail views
	TTLStats   = time.Hour       // percentile table and global stats
	TTLRefresh = 5 * time.Minute // force-refresh cooldown marker
)

// Keys for values owned by this service. The og: and badge: families are
// owned by the badge renderer; we only invalidate them.
const (
	KeyPercentiles = "stats:percentiles"
	KeyGlobalStats = "stats:global"
)

// Cache interface propose the methods any cache should implement
type Cache interface {
	// Set sets an entry in the cache. It could be a new entry or an existing one
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get searches and returns an entry in the cache, It returns a boolean telling if the entry exists.
	// value param must be a reference as the found value will be stored on it
	Get(ctx context.Context, key string, value any) bool
	// Exists tells whether a key exists in the cache with a valid value
	Exists(ctx context.Context, key string) bool
	// Delete removes an entry from the cache.
	Delete(ctx context.Context, key string) error
}

// LookupKey returns the cache key for a resolver result.
func LookupKey(domain string) string { return "lookup:" + domain }

// DetailKey returns the cache key for a domain detail view.
func DetailKey(domain string) string { return "domain:" + domain }

// OpenGraphKey returns the cache key of the badge renderer og image.
func OpenGraphKey(domain string) string { return "og:" + domain }

// BadgeKey returns the cache key prefix of the rendered badges.
func BadgeKey(domain string) string { return "badge:" + domain }

// RefreshCooldownKey returns the cache key guarding forced refreshes.
func RefreshCooldownKey(domain string) string { return "refresh:" + domain }
