// Package ratelimit counts attempts per key within a fixed decay window.
package ratelimit

import (
	"context"
	"math"
	"time"

	"pingcrm-backend/internal/cache"
)

// Limiter counts hits per key. The window of a key starts at its first hit.
type Limiter struct {
	store cache.Client
	decay time.Duration
}

// New returns a Limiter whose windows last decay.
func New(store cache.Client, decay time.Duration) *Limiter {
	if decay <= 0 {
		decay = time.Minute
	}
	return &Limiter{store: store, decay: decay}
}

// Decay is the window length.
func (l *Limiter) Decay() time.Duration {
	return l.decay
}

// Hit records one attempt for key and returns the attempts so far.
func (l *Limiter) Hit(ctx context.Context, key string) (int64, error) {
	return l.store.IncrWithTTL(ctx, key, l.decay)
}

// Attempts returns the attempts recorded for key in the current window.
func (l *Limiter) Attempts(ctx context.Context, key string) (int64, error) {
	return l.store.Get(ctx, key)
}

// TooManyAttempts reports whether key reached max attempts.
func (l *Limiter) TooManyAttempts(ctx context.Context, key string, max int) (bool, error) {
	n, err := l.Attempts(ctx, key)
	if err != nil {
		return false, err
	}
	return n >= int64(max), nil
}

// AvailableIn returns the whole seconds until the window of key ends.
func (l *Limiter) AvailableIn(ctx context.Context, key string) (int, error) {
	ttl, err := l.store.TTL(ctx, key)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(ttl.Seconds())), nil
}

// Clear resets the attempts of key.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
