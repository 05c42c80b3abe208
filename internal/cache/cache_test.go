package cache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMemoryCacheWindow(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	c, err := NewMemoryCache(0)
	is.NoErr(err)

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	n, err := c.IncrWithTTL(ctx, "k", time.Minute)
	is.NoErr(err)
	is.Equal(n, int64(1))

	now = now.Add(30 * time.Second)
	n, err = c.IncrWithTTL(ctx, "k", time.Minute)
	is.NoErr(err)
	is.Equal(n, int64(2))

	// the window starts at the first hit
	ttl, err := c.TTL(ctx, "k")
	is.NoErr(err)
	is.Equal(ttl, 30*time.Second)

	now = now.Add(30 * time.Second)
	n, err = c.Get(ctx, "k")
	is.NoErr(err)
	is.Equal(n, int64(0))
	ttl, err = c.TTL(ctx, "k")
	is.NoErr(err)
	is.Equal(ttl, time.Duration(0))
}

func TestMemoryCacheDelete(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	c, err := NewMemoryCache(10)
	is.NoErr(err)

	_, err = c.IncrWithTTL(ctx, "k", time.Minute)
	is.NoErr(err)
	is.NoErr(c.Delete(ctx, "k"))
	n, err := c.Get(ctx, "k")
	is.NoErr(err)
	is.Equal(n, int64(0))
	is.NoErr(c.Close())
}

func TestMemoryCacheConcurrentIncr(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	c, err := NewMemoryCache(10)
	is.NoErr(err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.IncrWithTTL(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	n, err := c.Get(ctx, "k")
	is.NoErr(err)
	is.Equal(n, int64(50))
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("PINGCRM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PINGCRM_TEST_REDIS_URL not set")
	}
	is := is.New(t)
	ctx := context.TODO()
	c, err := NewRedisClient(ctx, url)
	is.NoErr(err)
	t.Cleanup(func() { _ = c.Close() })

	key := "test:" + t.Name()
	is.NoErr(c.Delete(ctx, key))
	n, err := c.IncrWithTTL(ctx, key, time.Minute)
	is.NoErr(err)
	is.Equal(n, int64(1))
	n, err = c.IncrWithTTL(ctx, key, time.Minute)
	is.NoErr(err)
	is.Equal(n, int64(2))

	ttl, err := c.TTL(ctx, key)
	is.NoErr(err)
	is.True(ttl > 0 && ttl <= time.Minute)

	is.NoErr(c.Delete(ctx, key))
	n, err = c.Get(ctx, key)
	is.NoErr(err)
	is.Equal(n, int64(0))
}
