package cli

import (
	"github.com/spf13/cobra"

	"github.com/landwho/landwho/internal/infrastructure/database/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return postgres.Migrate(cfg.Database, logger)
		},
	}
}
