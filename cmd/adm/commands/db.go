// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"

	"grovaapp/internal/config"
	"grovaapp/internal/database"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the preference store.

Available commands:
  migrate   - Apply pending migrations`,
	}

	dbCmd.AddCommand(migrateCmd(cfg, logger))

	return dbCmd
}

// migrateCmd returns the migrate command
func migrateCmd(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Connect to the configured database and apply every pending migration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			if cfg.Database.URL == "" {
				return contextutils.WrapError(contextutils.ErrMissingRequired, "database url is not configured")
			}

			logger.Info(ctx, "Running migrations", map[string]interface{}{
				"database_url": maskDatabaseURL(cfg.Database.URL),
			})

			dbManager := database.NewManager(logger)
			db, err := dbManager.OpenWithoutMigrations(ctx, cfg.Database)
			if err != nil {
				return contextutils.WrapError(err, "failed to connect to database")
			}
			defer func() {
				if err := db.Close(); err != nil {
					logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
				}
			}()

			if err := dbManager.RunMigrations(ctx, db); err != nil {
				return contextutils.WrapError(err, "failed to run migrations")
			}

			cmd.Printf("Migrations applied (%s)\n", getDatabaseInfo(db))
			return nil
		},
	}
}
