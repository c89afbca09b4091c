package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uiverify/uiverify/database"
)

var (
	migrateConfigFile string
	migrationsPath    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
	Long: `Applies SQL migrations against a MySQL database. The sqlite driver
migrates its schema automatically and does not use these commands.`,
}

var migrateUpCmd = &cobra.Command{
	Use:          "up",
	Short:        "Apply all pending migrations",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, cleanup, err := migrationDB()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := database.RunMigrations(sqlDB, migrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		fmt.Println("Migrations applied successfully")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:          "down",
	Short:        "Rollback the most recent migration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, cleanup, err := migrationDB()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := database.RollbackMigration(sqlDB, migrationsPath); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}

		fmt.Println("Migration rolled back successfully")
		return nil
	},
}

// migrationDB opens the configured MySQL database for migrations.
func migrationDB() (*sql.DB, func(), error) {
	cfg, err := LoadConfig(migrateConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Database.Driver != "" && cfg.Database.Driver != "mysql" {
		return nil, nil, fmt.Errorf("migrations require the mysql driver, got %q", cfg.Database.Driver)
	}

	db, err := database.Connect(database.Config{
		Driver:       "mysql",
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB, func() { sqlDB.Close() }, nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateCmd.PersistentFlags().StringVarP(&migrateConfigFile, "config", "c", "", "config file path")
	migrateCmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "migrations", "migrations directory path")

	rootCmd.AddCommand(migrateCmd)
}
