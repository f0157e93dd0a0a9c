package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smart-task-tracker/internal/config"
)

// flagKeys はフラグ名と設定キーの対応。
var flagKeys = map[string]string{
	"store":           config.KeyStoreDriver,
	"database-url":    config.KeyDatabaseURL,
	"log-level":       config.KeyLogLevel,
	"log-file":        config.KeyLogFile,
	"addr":            config.KeyHTTPAddr,
	"default-project": config.KeyDefaultProject,
}

// NewRootCommand は tracker コマンドを組み立てる。
func NewRootCommand() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Smart Task Tracker backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			return bindCommandFlags(v, cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("store", "", "store driver: memory, sqlite or postgres (env STORE_DRIVER)")
	pf.String("database-url", "", "DSN for sqlite or postgres (env DATABASE_URL)")
	pf.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.String("log-file", "", "also write JSON logs to this file (env LOG_FILE)")

	root.AddCommand(
		newServeCommand(v),
		newMigrateCommand(v),
		newIntakeCommand(),
	)
	return root
}

// bindCommandFlags は cmd が持つフラグだけを viper に結び付ける。
func bindCommandFlags(v *viper.Viper, cmd *cobra.Command) error {
	names := make(map[string]string)
	for flagName, key := range flagKeys {
		if cmd.Flags().Lookup(flagName) != nil {
			names[key] = flagName
		}
	}
	return config.BindFlags(v, cmd.Flags(), names)
}
