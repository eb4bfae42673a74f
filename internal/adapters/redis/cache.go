package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SummaryKeyPrefix is the prefix for cached dashboard summaries
	SummaryKeyPrefix = "summary:"
	// DefaultSummaryTTL keeps summaries fresh enough for a till-side screen
	DefaultSummaryTTL = 60 * time.Second
)

// Cache implements core.SummaryCache using Redis. Dashboard summaries are
// cheap to recompute, so a miss or a Redis outage degrades to recomputation,
// never to an error surfaced to the caller of Get.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis summary cache
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: DefaultSummaryTTL}
}

// Get retrieves a cached summary payload. The second return reports a hit.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, SummaryKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a summary payload with the cache TTL
func (c *Cache) Set(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, SummaryKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Invalidate drops all cached summaries. Called on every write so the
// dashboard never shows a stale paid/unpaid split.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, SummaryKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate summary cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan summary cache: %w", err)
	}
	return nil
}
