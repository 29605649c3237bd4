package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/globomantics/cms/internal/server"
	"github.com/globomantics/cms/internal/web"
)

func newEndpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-bp-endpoints <blueprint>",
		Short: "List the route names of a blueprint, e.g. admin or album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints, err := server.Endpoints(a.cfg)
			if err != nil {
				return err
			}
			printEndpoints(cmd.OutOrStdout(), endpoints, args[0])
			return nil
		},
	}
}

// printEndpoints writes each route name under "<blueprint>." once, in
// registration order.
func printEndpoints(out io.Writer, endpoints []web.Endpoint, blueprint string) {
	prefix := blueprint + "."
	seen := make(map[string]bool)
	for _, e := range endpoints {
		if !strings.HasPrefix(e.Name, prefix) || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		fmt.Fprintln(out, e.Name)
	}
}
