package main

import (
	"context"
	"fmt"

	"github.com/gstyle/storefront-payments/internal/config"
	"github.com/gstyle/storefront-payments/internal/db"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires the %s driver, got %s", config.DriverPostgres, cfg.Database.Driver)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			database, err := db.Connect(ctx, &cfg.Database, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(ctx); err != nil {
				return err
			}

			names, err := db.UpMigrations()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(names))
			return nil
		},
	}
}
