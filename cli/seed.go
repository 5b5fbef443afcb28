package cli

import (
	"pedeai/configs"

	"github.com/spf13/cobra"
)

type SeedOptions struct {
	*RootOptions
	File string
}

// NewSeedCommand loads the catalog file and creates the admin account.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the admin account and the restaurant catalog",
		Long: `Seed the admin account from ADMIN_EMAIL/ADMIN_PASSWORD and load the
restaurant catalog from a YAML file. Restaurants that already exist by name
are left alone, so running it twice is safe.

Example:
  pedeai seed --file seed/catalog.yaml`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if cmd.Flags().Changed("file") {
				cfg.SeedFile = opts.File
			}
			log := opts.logger()
			ctx := cmd.Context()

			db, err := configs.OpenDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := configs.Migrate(db); err != nil {
				return err
			}
			if err := configs.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
				return err
			}
			return configs.SeedCatalog(ctx, db, cfg.SeedFile, log)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "catalog YAML file (default from SEED_FILE)")
	return cmd
}
