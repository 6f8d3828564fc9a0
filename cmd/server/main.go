package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpattn/fleetreg/internal/app"
	"github.com/rpattn/fleetreg/internal/config"
	"github.com/rpattn/fleetreg/internal/db"
	"github.com/rpattn/fleetreg/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Run the fleet registry HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, migrate)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", ".", "directory containing config.yaml and .env")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, migrate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if migrate {
		if err := db.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer application.Close()

	if err := application.Serve(ctx); err != nil {
		return err
	}
	slog.Info("server exited")
	return nil
}
