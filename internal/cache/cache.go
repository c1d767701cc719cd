// Package cache provides a get-or-compute cache over Redis. All operations
// degrade to the underlying compute when no Redis client is configured, so
// the service keeps working (without caching) when Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	prefix string
}

// New returns a cache over the given client. A nil client is allowed and
// disables caching.
func New(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Remember returns the cached entry for key into dest, or runs compute,
// stores the result with the given TTL, and returns it into dest. Races on
// population are benign: compute is a pure function of the underlying tables
// and concurrent misses recompute the same entry.
func (c *RedisCache) Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func() (interface{}, error)) error {
	if c.client != nil {
		val, err := c.client.Get(ctx, c.key(key)).Result()
		if err == nil {
			if err := json.Unmarshal([]byte(val), dest); err == nil {
				return nil
			}
			// Corrupt entry: fall through and recompute.
		}
	}

	computed, err := compute()
	if err != nil {
		return err
	}

	data, err := json.Marshal(computed)
	if err != nil {
		return err
	}
	if c.client != nil {
		c.client.Set(ctx, c.key(key), data, ttl)
	}
	return json.Unmarshal(data, dest)
}

// Invalidate drops the given keys. Callers must invoke this after any direct
// write to the tables a cached entry is derived from.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}
