package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"pingcrm-backend/internal/config"
	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/logger"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	configPath string

	// logFile is the open log file when logging to a path.
	logFile *os.File

	rootCmd = &cobra.Command{
		Use:                "pingcrm",
		Short:              "Ping CRM server",
		Long:               "Ping CRM manages the organizations and contacts of multi-user accounts.",
		SilenceUsage:       true,
		PersistentPreRunE:  initContext,
		PersistentPostRunE: closeContext,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		rollbackCmd,
		seedCmd,
		eventsCmd,
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

// initContext loads the config, sets up logging and opens the database.
func initContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := config.DefaultConfig()
	if err := cfg.Parse(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx = config.WithContext(ctx, cfg)

	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	l, f, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logFile = f
	log.SetDefault(l)
	ctx = log.WithContext(ctx, l)

	// Set the max number of processes to the number of CPUs
	// This is useful when running in a container
	if _, err := maxprocs.Set(maxprocs.Logger(l.Debugf)); err != nil {
		l.Warn("couldn't set automaxprocs", "error", err)
	}

	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	ctx = db.WithContext(ctx, dbx)

	cmd.SetContext(ctx)
	return nil
}

// closeContext closes the database and the log file.
func closeContext(cmd *cobra.Command, _ []string) error {
	if dbx := db.FromContext(cmd.Context()); dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
