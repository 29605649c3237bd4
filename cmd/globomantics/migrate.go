package main

import (
	"github.com/spf13/cobra"

	"github.com/globomantics/cms/internal/server"
	"github.com/globomantics/cms/pkg/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := db.Connect(ctx, a.cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := server.Migrate(ctx, pool, a.log); err != nil {
				return err
			}
			a.log.Info("migrations applied")
			return nil
		},
	}
}
