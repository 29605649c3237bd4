package main

import (
	"github.com/spf13/cobra"

	"github.com/globomantics/cms/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server and the job workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := server.Open(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			return rt.Run(cmd.Context())
		},
	}
}
