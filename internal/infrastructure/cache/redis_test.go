package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/run651/rakumart-1688/internal/domain"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("RAKUMART_TEST_REDIS_URL")
	if url == "" {
		t.Skip("RAKUMART_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url)
	require.NoError(t, err)
	c.keyPrefix = "rakumart-test:" + t.Name() + ":"
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "detail", map[string]any{"images": []string{"a.jpg"}}, time.Minute))
	got, err := c.Get(ctx, "detail")
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":["a.jpg"]}`, string(got))

	ok, err := c.Exists(ctx, "detail")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "detail"))
	_, err = c.Get(ctx, "detail")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}
