// Package cli wires the pedeai commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"pedeai/configs"

	"github.com/spf13/cobra"
)

// RootOptions holds the flags every command shares. Set flags override the
// values read from the environment.
type RootOptions struct {
	DBDriver string
	DBSource string
	LogLevel string

	Config *configs.Config
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pedeai",
		Short: "PedeAí food ordering backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.LoadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("db-driver") {
				cfg.DBDriver = opts.DBDriver
			}
			if flags.Changed("db") {
				cfg.DBSource = opts.DBSource
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = opts.LogLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBDriver, "db-driver", "", "database driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DBSource, "db", "", "database DSN or sqlite file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *RootOptions) logger() *slog.Logger {
	return configs.NewLogger(o.Config.LogLevel, o.Config.LogFormat, os.Stderr)
}
