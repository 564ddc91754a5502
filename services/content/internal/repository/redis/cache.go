package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "content:segment:"

// SegmentCache caches raw segment JSON in Redis.
type SegmentCache struct {
	client goredis.Cmdable
}

// NewSegmentCache creates a Redis-backed segment cache.
func NewSegmentCache(client goredis.Cmdable) *SegmentCache {
	return &SegmentCache{client: client}
}

// Get returns the cached value and whether it was present.
func (c *SegmentCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value for ttl.
func (c *SegmentCache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, []byte(value), ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete evicts keys.
func (c *SegmentCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
