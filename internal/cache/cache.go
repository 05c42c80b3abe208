// Package cache provides the counter store behind login throttling and API
// rate limiting.
package cache

import (
	"context"
	"time"
)

// Client is a store of integer counters that expire after a window.
type Client interface {
	// IncrWithTTL increments key and returns the new value. The expiry is
	// set by the first increment of a window and is not extended by later
	// ones.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value of key, 0 when absent or expired.
	Get(ctx context.Context, key string) (int64, error)
	// TTL returns the time left before key expires, 0 when absent.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	Close() error
}
