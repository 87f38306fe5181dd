package commands

import (
	"fmt"

	"culturology/internal/config"
	"culturology/internal/database"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands.

Available commands:
  migrate   - Apply pending migrations
  version   - Show the current migration version`,
	}

	dbCmd.AddCommand(migrateCmd(cfg, logger))
	dbCmd.AddCommand(versionCmd(cfg, logger))

	return dbCmd
}

func migrateCmd(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger.Info(ctx, "Running migrations", map[string]interface{}{"database_url": contextutils.MaskDatabaseURL(cfg.Database.URL)})

			if err := database.NewManager(logger).RunMigrations(cfg.Database.URL); err != nil {
				logger.Error(ctx, "Migration failed", err, nil)
				return contextutils.WrapError(err, "failed to run migrations")
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func versionCmd(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, dirty, ok, err := database.NewManager(logger).MigrationVersion(cfg.Database.URL)
			if err != nil {
				logger.Error(cmd.Context(), "Failed to read migration version", err, nil)
				return contextutils.WrapError(err, "failed to read migration version")
			}
			if !ok {
				fmt.Println("No migrations applied")
				return nil
			}

			fmt.Printf("Migration version %d", version)
			if dirty {
				fmt.Print(" (dirty)")
			}
			fmt.Println()
			return nil
		},
	}
}
