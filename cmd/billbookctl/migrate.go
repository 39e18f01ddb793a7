package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/billbook/billbook/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.New(cmd.Context(), cfg.ConnectionString())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}

		slog.Info("schema applied", "database", cfg.DB.Name)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
