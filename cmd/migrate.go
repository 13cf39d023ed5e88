package main

import (
	"github.com/spf13/cobra"

	"biblioteca/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			if err := database.Migrate(db); err != nil {
				log.Error("migration failed", "err", err)
				return err
			}
			log.Info("schema up to date", "driver", cfg.DBDriver)
			return nil
		},
	}
}
