// Package auth signs users in and out and resolves the user of a request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pingcrm-backend/internal/cache"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/ratelimit"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/validation"
)

// ErrInvalidCredentials is returned when the email and password do not match
// an active user.
var ErrInvalidCredentials = errors.New("These credentials do not match our records.") //nolint:revive,stylecheck

// ErrUnauthenticated is returned when a session token does not resolve to an
// active user.
var ErrUnauthenticated = errors.New("unauthenticated")

var loginCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pingcrm",
	Subsystem: "auth",
	Name:      "login_attempts_total",
	Help:      "The total number of login attempts by result",
}, []string{"result"})

// UserStore loads the records needed to authenticate.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, accountID, id int64) (*models.User, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
	IP       string `json:"-"`
}

// Session is the result of a successful login.
type Session struct {
	User       *models.User
	Token      string
	ExpiresAt  time.Time
	Persistent bool
}

// Identity is the authenticated user of a request.
type Identity struct {
	User    *models.User
	Account *models.Account
}

// Options configure a Service.
type Options struct {
	MaxAttempts   int
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	SecureCookies bool
	// Revocations holds the ids of logged out tokens until they expire.
	// Without it logout only clears the cookie.
	Revocations cache.Client
}

// Service authenticates users with login throttling.
type Service struct {
	store   UserStore
	limiter *ratelimit.Limiter
	tokens  *Tokens
	opts    Options
	logger  *log.Logger
}

// NewService returns a Service.
func NewService(ctx context.Context, store UserStore, limiter *ratelimit.Limiter, tokens *Tokens, opts Options) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = 30 * 24 * time.Hour
	}
	return &Service{
		store:   store,
		limiter: limiter,
		tokens:  tokens,
		opts:    opts,
		logger:  log.FromContext(ctx).WithPrefix("auth"),
	}
}

// Authenticate checks the credentials and issues a session token. While the
// throttle key of the attempt is locked out it fails with a *ThrottleError
// without looking at the credentials.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (*Session, error) {
	if errs := validation.Struct(c); len(errs) > 0 {
		return nil, errs
	}

	key := ThrottleKey(c.Email, c.IP)
	locked, err := s.limiter.TooManyAttempts(ctx, key, s.opts.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("check login attempts: %w", err)
	}
	if locked {
		secs, err := s.limiter.AvailableIn(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check lockout: %w", err)
		}
		loginCounter.WithLabelValues("throttled").Inc()
		s.logger.Warn("login throttled", "key", key, "seconds", secs)
		return nil, &ThrottleError{Seconds: secs}
	}

	user, err := s.store.GetUserByEmail(ctx, c.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.IsDeleted() || !VerifyPassword(user.Password.String, c.Password) {
		if _, err := s.limiter.Hit(ctx, key); err != nil {
			return nil, fmt.Errorf("record login attempt: %w", err)
		}
		loginCounter.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Clear(ctx, key); err != nil {
		return nil, fmt.Errorf("clear login attempts: %w", err)
	}

	ttl := s.opts.SessionTTL
	if c.Remember {
		ttl = s.opts.RememberTTL
	}
	token, expires, err := s.tokens.Generate(user.ID, user.AccountID, ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	loginCounter.WithLabelValues("success").Inc()
	s.logger.Info("user logged in", "user", user.ID, "account", user.AccountID)
	return &Session{User: user, Token: token, ExpiresAt: expires, Persistent: c.Remember}, nil
}

// Resolve returns the identity behind a session token.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if s.opts.Revocations != nil && claims.ID != "" {
		n, err := s.opts.Revocations.Get(ctx, revokedKey(claims.ID))
		if err != nil {
			return nil, fmt.Errorf("check revoked token: %w", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.store.GetUser(ctx, claims.AccountID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, ErrUnauthenticated
	}

	account, err := s.store.GetAccount(ctx, user.AccountID)
	if err != nil {
		return nil, err
	}
	return &Identity{User: user, Account: account}, nil
}

// Logout revokes token for the rest of its lifetime. Tokens that no longer
// parse are already unusable and are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.opts.Revocations == nil || token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.tokens.now())
	if ttl <= 0 {
		return nil
	}
	if _, err := s.opts.Revocations.IncrWithTTL(ctx, revokedKey(claims.ID), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("user logged out", "user", claims.Subject)
	return nil
}

func revokedKey(id string) string {
	return "session:revoked:" + id
}
