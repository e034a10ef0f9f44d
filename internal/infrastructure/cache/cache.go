package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/domain"
)

const sweepInterval = 10 * time.Minute

// Store is a cache backend that holds resources until closed.
type Store interface {
	domain.CacheRepository
	io.Closer
}

// New builds the backend named by cfg.Type.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(sweepInterval), nil
	case "redis":
		return NewRedisCache(ctx, cfg.RedisURL)
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}

// GetJSON decodes the value stored under key into dst.
func GetJSON(ctx context.Context, c domain.CacheRepository, key string, dst any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
