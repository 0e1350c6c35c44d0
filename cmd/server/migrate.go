package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"studymate-backend/internal/config"
	"studymate-backend/internal/database"
	"studymate-backend/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	appLogger := logger.New(cfg.LogLevel)

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(context.Background(), pool, database.Migrations, "migrations", appLogger); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	appLogger.Info("database migrations applied")
	return nil
}
