package main

import (
	"github.com/spf13/cobra"

	"github.com/rcarvalho-pb/paywave-go/internal/infra/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "paywave",
		Short:         "PayWave settlement and webhook reconciliation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load))
	return root
}
