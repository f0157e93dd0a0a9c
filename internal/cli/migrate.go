package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"smart-task-tracker/internal/config"
	storeinfra "smart-task-tracker/internal/infrastructure/store"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := storeinfra.Migrate(cmd.Context(), store); err != nil {
				return err
			}
			logger.Info("migration applied", zap.String("store", cfg.StoreDriver))
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.StoreDriver)
			return nil
		},
	}
}
