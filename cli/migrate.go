package cli

import (
	"pedeai/configs"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database tables",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rootOpts.logger()
			db, err := configs.OpenDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := configs.Migrate(db); err != nil {
				return err
			}
			log.Info("database migrated", "driver", rootOpts.Config.DBDriver)
			return nil
		},
	}
}
