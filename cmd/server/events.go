package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pingcrm-backend/internal/config"
	"pingcrm-backend/internal/natsbus"
)

var (
	eventsDurable string

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Log record lifecycle events from the event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			if cfg.NATS.URL == "" {
				return errors.New("no nats url configured")
			}

			c, err := natsbus.Connect(ctx, cfg.NATS.URL)
			if err != nil {
				return fmt.Errorf("connect to nats: %w", err)
			}
			defer c.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := log.FromContext(ctx).WithPrefix("events")
			return c.Consume(ctx, eventsDurable, func(_ context.Context, ev natsbus.Event) error {
				logger.Info(ev.Entity+" "+ev.Action,
					"account", ev.AccountID,
					"id", ev.EntityID,
					"actor", ev.ActorID,
					"at", ev.OccurredAt)
				return nil
			})
		},
	}
)

func init() {
	eventsCmd.Flags().StringVar(&eventsDurable, "durable", "pingcrm-events-log", "durable consumer name")
}
