package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"biblioteca/internal/config"
	"biblioteca/internal/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "biblioteca",
		Short:        "Library loan service: catalog, users and reserve/return",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("addr", "", "listen address (overrides SERVER_ADDR)")
	root.PersistentFlags().String("db-driver", "", "postgres or sqlite (overrides DB_DRIVER)")
	root.PersistentFlags().String("database-url", "", "store DSN or sqlite file (overrides DATABASE_URL)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newUserAddCmd())
	return root
}

// loadConfig reads .env and the environment, then applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.ServerAddr, _ = flags.GetString("addr")
	}
	if flags.Changed("db-driver") {
		cfg.DBDriver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL, _ = flags.GetString("database-url")
	}
	if cfg.DBDriver == config.DriverSQLite && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "biblioteca.db"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("close database", "err", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
