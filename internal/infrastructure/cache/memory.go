package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/run651/rakumart-1688/internal/domain"
)

// entry is one cached JSON document with its expiry.
type entry struct {
	data    []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryCache is a thread-safe in-memory cache with TTL support. Values are
// stored as JSON, the same way the redis backend stores them.
type MemoryCache struct {
	data  map[string]entry
	mutex sync.RWMutex
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a cache that sweeps expired entries every interval.
// A non-positive interval disables the sweeper.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]entry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if interval > 0 {
		go c.sweep(interval)
	}
	return c
}

// Get returns the stored JSON for key or domain.ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.data[key]
	if !ok || e.expired(c.now()) {
		return nil, domain.ErrCacheMiss
	}
	return e.data, nil
}

// Set encodes value as JSON and stores it. A non-positive ttl never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	e := entry{data: data}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists reports whether key holds an unexpired value.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.data[key]
	return ok && !e.expired(c.now()), nil
}

// Size returns the number of stored entries, expired ones included.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]entry)
}

// Close stops the sweeper.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	now := c.now()
	for key, e := range c.data {
		if e.expired(now) {
			delete(c.data, key)
		}
	}
}

var _ domain.CacheRepository = (*MemoryCache)(nil)
