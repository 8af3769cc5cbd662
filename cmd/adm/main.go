// Package main provides the main entry point for the Grova admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"grovaapp/cmd/adm/commands"
	"grovaapp/internal/config"
	"grovaapp/internal/database"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"
	"grovaapp/internal/version"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	logger := observability.NewLoggerWithLevel(&cfg.OpenTelemetry, observability.ParseLevel("error"))
	defer func() { _ = logger.Sync() }()

	if err := newRootCommand(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Grova Administration Tool",
		Long: `Grova Administration Tool

Offline tooling for the Grova dashboard backend: run triage derivation on
exported feedback, query the demo fixtures, render email templates, edit
business widget configuration and manage the preference database.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.TriageCommand())
	rootCmd.AddCommand(commands.DemoCommands())
	rootCmd.AddCommand(commands.TemplateCommands())
	rootCmd.AddCommand(commands.BizConfigCommands(bizConfigFactory(cfg, logger)))
	rootCmd.AddCommand(commands.DatabaseCommands(cfg, logger))
	rootCmd.AddCommand(commands.VersionCommand(version.Get("grova-adm")))

	return rootCmd
}

// bizConfigFactory opens Postgres or SQLite when configured; without a
// database the edits only live for the duration of the command.
func bizConfigFactory(cfg *config.Config, logger *observability.Logger) commands.BizConfigServiceFactory {
	return func(ctx context.Context) (*services.BizConfigService, func(), error) {
		if cfg.Database.URL == "" && cfg.Database.SQLitePath != "" {
			store, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
			if err != nil {
				return nil, nil, err
			}
			return services.NewBizConfigService(store, logger), func() { _ = store.Close() }, nil
		}
		if cfg.Database.URL == "" {
			return services.NewBizConfigService(database.NewMemoryStore(), logger), func() {}, nil
		}

		db, err := database.NewManager(logger).OpenWithoutMigrations(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
			}
		}
		return services.NewBizConfigService(database.NewPostgresStore(db, logger), logger), closeDB, nil
	}
}
