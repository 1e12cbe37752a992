// Package cache provides Redis-backed JSON caching.
package cache

import (
	"context"
	"errors"
	"time"

	"tracker_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON values under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
	name   string
}

// NewRedisCache creates a cache whose keys are prefixed with prefix.
// name labels the hit/miss metrics.
func NewRedisCache(client *redis.Client, prefix, name string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, name: name}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// GetJSON reports a miss with (false, nil).
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(c.name, false)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	metrics.RecordCacheLookup(c.name, true)
	return true, nil
}

// SetJSON stores value as JSON with the given TTL.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
