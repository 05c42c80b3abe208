// Package middleware holds HTTP middleware shared by all routes.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pingcrm-backend/internal/ratelimit"
)

var rateLimitedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pingcrm",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "The total number of requests rejected by the rate limiter",
})

// KeyFunc returns the rate limit key of a request.
type KeyFunc func(r *http.Request) string

// IPKey keys requests by client ip.
func IPKey(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// RateLimit allows perMinute requests per key within the limiter's window
// and answers the rest with 429 and Retry-After. A perMinute of 0 disables
// it. Store failures let the request through.
func RateLimit(limiter *ratelimit.Limiter, perMinute int, key KeyFunc, logger *log.Logger) func(http.Handler) http.Handler {
	if key == nil {
		key = IPKey
	}
	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := "rl:api:" + key(r)
			count, err := limiter.Hit(r.Context(), k)
			if err != nil {
				logger.Error("rate limit", "key", k, "err", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			remaining := int64(perMinute) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(perMinute) {
				secs, err := limiter.AvailableIn(r.Context(), k)
				if err != nil || secs <= 0 {
					secs = 1
				}
				rateLimitedCounter.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				http.Error(w, "Too Many Attempts.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
