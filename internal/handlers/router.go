package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/form"
	"pingcrm-backend/internal/middleware"
	"pingcrm-backend/internal/ratelimit"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	Limiter   *ratelimit.Limiter
	PerMinute int
	// TrustedProxies may report the client ip through forwarding headers.
	TrustedProxies middleware.TrustedProxies
}

// RateLimitKey keys signed in users by id and guests by ip.
func RateLimitKey(r *http.Request) string {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(id.User.ID, 10)
	}
	return middleware.IPKey(r)
}

// NewRouter wires the middleware stack and every route.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(opts.TrustedProxies))
	r.Use(middleware.Logging(h.logger))
	r.Use(form.MethodOverride)
	r.Use(h.inertia.Middleware)
	r.Use(h.auth.Middleware)
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter, opts.PerMinute, RateLimitKey, h.logger))
	}

	h.inertia.Share(SharedProps)
	h.RegisterRoutes(r)

	var handler http.Handler = r
	handler = handlers.CompressHandler(handler)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(h.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)(handler)
	return handler
}
