package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"placelists/internal/domain"
)

// RedisCache is a read-through cache in front of another ProfileStore.
// Redis failures are not fatal: the lookup falls through to the inner store.
type RedisCache struct {
	client *redis.Client
	inner  domain.ProfileStore
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis at redisURL and wraps inner with a cache.
func NewRedisCache(redisURL string, inner domain.ProfileStore, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisCacheWithClient(client, inner, ttl), nil
}

// NewRedisCacheWithClient wraps inner with a cache on an existing client.
func NewRedisCacheWithClient(client *redis.Client, inner domain.ProfileStore, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, inner: inner, ttl: ttl, prefix: "profile:"}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(userID string) string {
	return c.prefix + userID
}

func (c *RedisCache) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if raw, err := c.client.Get(ctx, c.key(userID)).Bytes(); err == nil {
		var p domain.Profile
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
	}

	p, err := c.inner.GetProfile(ctx, userID)
	if err != nil {
		// Unavailability is not cached; the next lookup retries.
		return nil, err
	}

	if raw, err := json.Marshal(p); err == nil {
		c.client.Set(ctx, c.key(userID), raw, c.ttl)
	}
	return p, nil
}
