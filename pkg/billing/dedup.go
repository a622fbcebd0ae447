package billing

import (
	"context"
	"time"

	"github.com/jlcstudio/site-backend/pkg/cache"
)

const (
	dedupKeyPrefix = "webhook:event:"

	// Stripe retries deliveries for up to 72 hours, so marks past that
	// window can expire.
	dedupTTL = 72 * time.Hour
)

// RedisDeduper is an EventDeduper backed by Redis
type RedisDeduper struct {
	cache *cache.Client
}

// NewRedisDeduper creates a Redis-backed event deduper
func NewRedisDeduper(c *cache.Client) *RedisDeduper {
	return &RedisDeduper{cache: c}
}

// Seen reports whether an event ID has already been marked as processed
func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	return d.cache.Exists(ctx, dedupKeyPrefix+eventID)
}

// Mark records an event ID as processed
func (d *RedisDeduper) Mark(ctx context.Context, eventID string) error {
	return d.cache.Set(ctx, dedupKeyPrefix+eventID, "1", dedupTTL)
}
