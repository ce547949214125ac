package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/config"
	pgstore "github.com/Nathan-Yinka/autochek-API/internal/infrastructure/persistence/postgres"
	"github.com/Nathan-Yinka/autochek-API/pkg/observability"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		dsn, err := migrationDSN()
		if err != nil {
			return err
		}
		if err := pgutil.RunMigrations(dsn, pgstore.Migrations, pgstore.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		dsn, err := migrationDSN()
		if err != nil {
			return err
		}
		if err := pgutil.RunMigrationsDown(dsn, pgstore.Migrations, pgstore.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations rolled back")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

// migrationDSN only needs the database settings, so the rest of the
// configuration is not validated.
func migrationDSN() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	observability.InitLogger(cfg.Log)
	if cfg.DB.Password == "" {
		return "", errors.New("DB_PASSWORD is required")
	}
	return cfg.DB.DSN(), nil
}
