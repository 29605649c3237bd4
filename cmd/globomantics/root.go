package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/globomantics/cms/internal/config"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/logger"
)

// app carries what PersistentPreRunE loaded to the subcommands.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	flush func()
	file  string
}

func newRootCmd() *cobra.Command {
	a := &app{flush: func() {}}
	root := &cobra.Command{
		Use:           "globomantics",
		Short:         "Globomantics album and tour CMS",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.file)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log, a.flush = logger.New(cfg.Log, os.Stderr,
				middlewares.RequestIDExtractor(),
				middlewares.LanguageExtractor(),
				middlewares.UserIDExtractor(),
			)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.flush()
		},
	}
	root.PersistentFlags().StringVar(&a.file, "config", "", "YAML config file; environment variables take precedence")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newUserCmd(a),
		newEndpointsCmd(a),
		newTestCmd(),
	)
	return root
}
