package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the number of counters kept by NewMemoryCache.
const DefaultMemorySize = 10000

type counter struct {
	value     int64
	expiresAt time.Time
}

// MemoryCache keeps counters in a bounded in-process LRU.
type MemoryCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, counter]
	now   func() time.Time
}

var _ Client = (*MemoryCache)(nil)

// NewMemoryCache returns a MemoryCache holding at most size counters.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	c, err := lru.New[string, counter](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: c, now: time.Now}, nil
}

// lookup returns the live counter for key. Callers hold mu.
func (c *MemoryCache) lookup(key string) (counter, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return counter{}, false
	}
	if !c.now().Before(v.expiresAt) {
		c.cache.Remove(key)
		return counter{}, false
	}
	return v, true
}

func (c *MemoryCache) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lookup(key)
	if !ok {
		v = counter{expiresAt: c.now().Add(ttl)}
	}
	v.value++
	c.cache.Add(key, v)
	return v.value, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, _ := c.lookup(key)
	return v.value, nil
}

func (c *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lookup(key)
	if !ok {
		return 0, nil
	}
	return v.expiresAt.Sub(c.now()), nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.cache.Purge()
	return nil
}
