// Package config holds the service configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by the service.
const EnvPrefix = "PINGCRM_"

var (
	// ErrNilConfig is returned when a nil config is used.
	ErrNilConfig = errors.New("nil config")

	// ErrMissingSecret is returned when no session signing secret is set.
	ErrMissingSecret = errors.New("auth secret is required")
)

// HTTPConfig is the HTTP server configuration.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// PublicURL is the public URL of the HTTP server.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// TrustedProxies lists the addresses and CIDR ranges of reverse proxies
	// whose X-Forwarded-For and X-Real-IP headers are believed. Empty means
	// the client ip is always the connection's peer address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," yaml:"trusted_proxies"`
}

// StatsConfig is the configuration for the metrics server.
type StatsConfig struct {
	// ListenAddr is the address on which the stats server will listen.
	// An empty address disables the stats server.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database, "sqlite" or "postgres".
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// RedisConfig configures the attempt counter store.
type RedisConfig struct {
	// URL is a redis:// URL. Counters are kept in memory when empty.
	URL string `env:"URL" yaml:"url"`
}

// NATSConfig configures lifecycle event publishing.
type NATSConfig struct {
	// URL of the NATS server. Events are not published when empty.
	URL string `env:"URL" yaml:"url"`
}

// AuthConfig configures sessions and the login throttle.
type AuthConfig struct {
	// Secret signs session tokens.
	Secret string `env:"SECRET" yaml:"secret"`

	// DemoEmail is the email of the protected demo user.
	DemoEmail string `env:"DEMO_EMAIL" yaml:"demo_email"`

	// LoginMaxAttempts is the number of failed logins allowed per window.
	LoginMaxAttempts int `env:"LOGIN_MAX_ATTEMPTS" yaml:"login_max_attempts"`

	// LoginDecay is the length of the login throttle window.
	LoginDecay time.Duration `env:"LOGIN_DECAY" yaml:"login_decay"`

	// SessionTTL is the lifetime of a regular session.
	SessionTTL time.Duration `env:"SESSION_TTL" yaml:"session_ttl"`

	// RememberTTL is the lifetime of a "remember me" session.
	RememberTTL time.Duration `env:"REMEMBER_TTL" yaml:"remember_ttl"`

	// SecureCookies marks session cookies as Secure.
	SecureCookies bool `env:"SECURE_COOKIES" yaml:"secure_cookies"`
}

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	// PerMinute is the number of requests allowed per client per minute.
	// Zero disables the limiter.
	PerMinute int `env:"PER_MINUTE" yaml:"per_minute"`
}

// StorageConfig configures where uploaded files live.
type StorageConfig struct {
	Path string `env:"PATH" yaml:"path"`
}

// InertiaConfig configures the view payload protocol.
type InertiaConfig struct {
	// Version is the current front-end asset version.
	Version string `env:"VERSION" yaml:"version"`
}

// Config is the configuration for the CRM service.
type Config struct {
	// Name is the application name shown in the page shell.
	Name string `env:"NAME" yaml:"name"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_" yaml:"http"`
	Stats     StatsConfig     `envPrefix:"STATS_" yaml:"stats"`
	Log       LogConfig       `envPrefix:"LOG_" yaml:"log"`
	DB        DBConfig        `envPrefix:"DB_" yaml:"db"`
	Redis     RedisConfig     `envPrefix:"REDIS_" yaml:"redis"`
	NATS      NATSConfig      `envPrefix:"NATS_" yaml:"nats"`
	Auth      AuthConfig      `envPrefix:"AUTH_" yaml:"auth"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_" yaml:"rate_limit"`
	Storage   StorageConfig   `envPrefix:"STORAGE_" yaml:"storage"`
	Inertia   InertiaConfig   `envPrefix:"INERTIA_" yaml:"inertia"`

	// DataPath is the directory relative paths are resolved against.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// DefaultConfig returns the default Config.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Ping CRM",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
			PublicURL:  "http://localhost:8080",
		},
		Stats: StatsConfig{
			ListenAddr: "localhost:8081",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "pingcrm.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Auth: AuthConfig{
			DemoEmail:        "johndoe@example.com",
			LoginMaxAttempts: 5,
			LoginDecay:       time.Minute,
			SessionTTL:       2 * time.Hour,
			RememberTTL:      30 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			PerMinute: 60,
		},
		Storage: StorageConfig{
			Path: "uploads",
		},
		Inertia: InertiaConfig{
			Version: "1",
		},
	}
}

// DefaultDataPath returns the data directory, PINGCRM_DATA_PATH or "data".
func DefaultDataPath() string {
	dp := os.Getenv(EnvPrefix + "DATA_PATH")
	if dp == "" {
		dp = "data"
	}
	return dp
}

// IsDebug returns true if the service is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv(EnvPrefix + "DEBUG"))
	return debug
}

// IsVerbose returns true if verbose mode is enabled. Verbose mode implies
// debug mode and also traces every SQL query.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv(EnvPrefix + "VERBOSE"))
	return IsDebug() && verbose
}

// ParseFile overlays the YAML file at path onto the config.
func (c *Config) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ParseEnv overlays environment variables onto the config. A .env file in
// the working directory is loaded first, without overriding variables that
// are already set.
func (c *Config) ParseEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := env.ParseWithOptions(c, env.Options{
		Prefix: EnvPrefix,
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}
	return nil
}

// Parse reads the optional YAML file at path, then the environment, and
// validates the result.
func (c *Config) Parse(path string) error {
	if path != "" {
		if err := c.ParseFile(path); err != nil {
			return err
		}
	}
	if err := c.ParseEnv(); err != nil {
		return err
	}
	return c.Validate()
}

// Validate validates the configuration and resolves relative paths against
// DataPath.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	switch c.DB.Driver {
	case "sqlite", "sqlite3":
		if !filepath.IsAbs(c.DB.DataSource) && !strings.HasPrefix(c.DB.DataSource, ":memory:") {
			c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
		}
	case "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}

	if c.Storage.Path != "" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(c.DataPath, c.Storage.Path)
	}

	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(c.DataPath, c.Log.Path)
	}

	if c.Auth.Secret == "" {
		return ErrMissingSecret
	}
	if c.Auth.LoginMaxAttempts <= 0 {
		return fmt.Errorf("login max attempts must be positive, got %d", c.Auth.LoginMaxAttempts)
	}
	if c.Auth.LoginDecay <= 0 {
		return fmt.Errorf("login decay must be positive, got %s", c.Auth.LoginDecay)
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit.PerMinute)
	}

	return nil
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	if c == nil {
		return nil
	}
	return []string{
		fmt.Sprintf("%sDATA_PATH=%s", EnvPrefix, c.DataPath),
		fmt.Sprintf("%sNAME=%s", EnvPrefix, c.Name),
		fmt.Sprintf("%sHTTP_LISTEN_ADDR=%s", EnvPrefix, c.HTTP.ListenAddr),
		fmt.Sprintf("%sHTTP_PUBLIC_URL=%s", EnvPrefix, c.HTTP.PublicURL),
		fmt.Sprintf("%sSTATS_LISTEN_ADDR=%s", EnvPrefix, c.Stats.ListenAddr),
		fmt.Sprintf("%sLOG_FORMAT=%s", EnvPrefix, c.Log.Format),
		fmt.Sprintf("%sLOG_TIME_FORMAT=%s", EnvPrefix, c.Log.TimeFormat),
		fmt.Sprintf("%sDB_DRIVER=%s", EnvPrefix, c.DB.Driver),
		fmt.Sprintf("%sDB_DATA_SOURCE=%s", EnvPrefix, c.DB.DataSource),
		fmt.Sprintf("%sREDIS_URL=%s", EnvPrefix, c.Redis.URL),
		fmt.Sprintf("%sNATS_URL=%s", EnvPrefix, c.NATS.URL),
		fmt.Sprintf("%sAUTH_DEMO_EMAIL=%s", EnvPrefix, c.Auth.DemoEmail),
		fmt.Sprintf("%sAUTH_LOGIN_MAX_ATTEMPTS=%d", EnvPrefix, c.Auth.LoginMaxAttempts),
		fmt.Sprintf("%sAUTH_LOGIN_DECAY=%s", EnvPrefix, c.Auth.LoginDecay),
		fmt.Sprintf("%sRATE_LIMIT_PER_MINUTE=%d", EnvPrefix, c.RateLimit.PerMinute),
		fmt.Sprintf("%sSTORAGE_PATH=%s", EnvPrefix, c.Storage.Path),
		fmt.Sprintf("%sINERTIA_VERSION=%s", EnvPrefix, c.Inertia.Version),
	}
}

// contextKey is the key used to store the config in the context.
var contextKey = struct{ string }{"config"}

// WithContext returns a new context with the config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey, cfg)
}

// FromContext returns the config from the context, or nil.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey).(*Config); ok {
		return cfg
	}
	return nil
}
