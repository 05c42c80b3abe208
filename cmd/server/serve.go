package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/db/migrate"
)

var (
	noMigrate bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()

			if !noMigrate {
				if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
					return fmt.Errorf("migration error: %w", err)
				}
			}

			s, err := NewServer(ctx)
			if err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			lch := make(chan error, 1)
			done := make(chan os.Signal, 1)
			doneOnce := sync.OnceFunc(func() {
				signal.Stop(done)
				close(done)
			})

			signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				lch <- s.Start()
				doneOnce()
			}()

			select {
			case err := <-lch:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			case <-done:
			}

			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
)

func init() {
	serveCmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "do not migrate the database on start")
}
