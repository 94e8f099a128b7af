package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent from the cache
var ErrMiss = errors.New("cache miss")

// Cache is a thin JSON cache over Redis. A nil client disables it:
// every read misses and every write is a no-op.
type Cache struct {
	client *redis.Client
}

// New creates a cache backed by the given Redis client (may be nil)
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON reads key and unmarshals the cached JSON into v
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) error {
	if !c.Enabled() {
		return ErrMiss
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}

// SetJSON marshals v and stores it under key with the given TTL
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// DeleteByPrefix removes all keys matching prefix*
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
