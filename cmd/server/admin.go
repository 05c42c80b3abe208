package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/config"
	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/db/migrate"
	"pingcrm-backend/internal/storage"
)

var (
	seedPassword string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database to the latest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := migrate.Migrate(ctx, db.FromContext(ctx)); err != nil {
				return fmt.Errorf("migration: %w", err)
			}
			return nil
		},
	}

	rollbackCmd = &cobra.Command{
		Use:   "rollback",
		Short: "Rollback the database to the previous version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := migrate.Rollback(ctx, db.FromContext(ctx)); err != nil {
				return fmt.Errorf("rollback: %w", err)
			}
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the demo account with sample organizations and contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			dbx := db.FromContext(ctx)
			if err := migrate.Migrate(ctx, dbx); err != nil {
				return fmt.Errorf("migration: %w", err)
			}

			hash, err := auth.HashPassword(seedPassword)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			seeded, err := storage.Seed(ctx, dbx, storage.SeedOptions{
				AccountName:  "Acme Corporation",
				DemoEmail:    cfg.Auth.DemoEmail,
				PasswordHash: hash,
			})
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			logger := log.FromContext(ctx)
			if !seeded {
				logger.Info("demo user already exists", "email", cfg.Auth.DemoEmail)
				return nil
			}
			logger.Info("seeded demo account", "email", cfg.Auth.DemoEmail)
			return nil
		},
	}
)

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "secret", "password of the demo user")
}
