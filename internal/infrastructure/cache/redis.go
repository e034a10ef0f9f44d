package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/run651/rakumart-1688/internal/domain"
)

const defaultKeyPrefix = "rakumart:"

// RedisCache stores JSON documents in redis so that several processes share
// detail lookups.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects to the redis server at url (redis://host:port/db).
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %v", domain.ErrCacheUnavailable, err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", domain.ErrCacheUnavailable, err)
	}
	return NewRedisCacheWithClient(client, defaultKeyPrefix), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the stored JSON for key or domain.ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return data, nil
}

// Set encodes value as JSON and stores it. A non-positive ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return n > 0, nil
}

// Close closes the redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ domain.CacheRepository = (*RedisCache)(nil)
