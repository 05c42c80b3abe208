package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/cache"
	"pingcrm-backend/internal/config"
	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/filestore"
	"pingcrm-backend/internal/handlers"
	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/jobs"
	"pingcrm-backend/internal/metrics"
	"pingcrm-backend/internal/middleware"
	"pingcrm-backend/internal/natsbus"
	"pingcrm-backend/internal/ratelimit"
	"pingcrm-backend/internal/services"
	"pingcrm-backend/internal/storage"
)

// Server is the Ping CRM server.
type Server struct {
	HTTPServer  *http.Server
	StatsServer *metrics.StatsServer
	Cron        *jobs.Scheduler
	Config      *config.Config
	DB          *db.DB

	counters cache.Client
	events   natsbus.Publisher
	logger   *log.Logger
	ctx      context.Context
}

// NewServer wires the server. It expects a context with *config.Config,
// *log.Logger and *db.DB attached.
func NewServer(ctx context.Context) (*Server, error) {
	cfg := config.FromContext(ctx)
	dbx := db.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("server")
	s := &Server{
		Config: cfg,
		DB:     dbx,
		logger: logger,
		ctx:    ctx,
	}

	var err error
	if cfg.Redis.URL != "" {
		s.counters, err = cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
	} else {
		logger.Warn("no redis url set, rate limit counters are kept in memory")
		s.counters, err = cache.NewMemoryCache(cache.DefaultMemorySize)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
	}

	s.events = natsbus.Noop{}
	if cfg.NATS.URL != "" {
		s.events, err = natsbus.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			s.counters.Close() //nolint:errcheck
			return nil, fmt.Errorf("connect to nats: %w", err)
		}
	}

	files, err := filestore.NewLocal(cfg.Storage.Path)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("open file storage: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Name)
	if err != nil {
		s.release()
		return nil, err
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		s.release()
		return nil, err
	}

	store := storage.New(dbx)
	loginLimiter := ratelimit.New(s.counters, cfg.Auth.LoginDecay)
	deps := services.Deps{DB: dbx, Events: s.events, Logger: log.FromContext(ctx)}

	h := handlers.New(handlers.Options{
		Inertia: inertia.New(ctx, cfg.Inertia.Version,
			inertia.WithSecureCookies(cfg.Auth.SecureCookies),
			inertia.WithTitle(cfg.Name),
		),
		Auth: auth.NewService(ctx, store, loginLimiter, tokens, auth.Options{
			MaxAttempts:   cfg.Auth.LoginMaxAttempts,
			SessionTTL:    cfg.Auth.SessionTTL,
			RememberTTL:   cfg.Auth.RememberTTL,
			SecureCookies: cfg.Auth.SecureCookies,
			Revocations:   s.counters,
		}),
		Users:         services.NewUserService(deps, files, cfg.Auth.DemoEmail),
		Organizations: services.NewOrganizationService(deps),
		Contacts:      services.NewContactService(deps),
		Files:         files,
		DB:            dbx,
		Logger:        log.FromContext(ctx),
	})

	s.HTTPServer = &http.Server{
		Addr: cfg.HTTP.ListenAddr,
		Handler: handlers.NewRouter(h, handlers.RouterOptions{
			Limiter:        ratelimit.New(s.counters, time.Minute),
			PerMinute:      cfg.RateLimit.PerMinute,
			TrustedProxies: proxies,
		}),
		ReadHeaderTimeout: time.Second * 10,
		IdleTimeout:       time.Second * 60,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	if cfg.Stats.ListenAddr != "" {
		s.StatsServer, err = metrics.NewStatsServer(ctx)
		if err != nil {
			s.release()
			return nil, fmt.Errorf("create stats server: %w", err)
		}
	}

	s.Cron = jobs.NewScheduler(ctx)
	s.Cron.Register(ctx, jobs.NewRecordCounts(store, ""))

	return s, nil
}

func (s *Server) release() {
	if err := s.events.Close(); err != nil {
		s.logger.Error("close event bus", "err", err)
	}
	if err := s.counters.Close(); err != nil {
		s.logger.Error("close counters", "err", err)
	}
}

// Start runs the servers until one of them fails or all are shut down.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	errg.Go(func() error {
		s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
		if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.StatsServer != nil {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	if s.StatsServer != nil {
		errg.Go(func() error {
			return s.StatsServer.Shutdown(ctx)
		})
	}
	errg.Go(func() error {
		s.Cron.Shutdown()
		return nil
	})
	err := errg.Wait()
	s.release()
	return err
}
