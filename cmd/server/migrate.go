package main

import (
	"github.com/spf13/cobra"

	"github.com/rcarvalho-pb/paywave-go/internal/infra/config"
	"github.com/rcarvalho-pb/paywave-go/internal/infra/logging"
	"github.com/rcarvalho-pb/paywave-go/internal/infrastructure/persistence/sqldb"
)

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			logger, err := logging.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := sqldb.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := sqldb.RunMigrations(cmd.Context(), db)
			if err != nil {
				return err
			}

			logger.Info("migrations applied", map[string]any{
				"driver":  cfg.Database.Driver,
				"applied": applied,
			})
			return nil
		},
	}
}
