package main

import (
	"github.com/Veraticus/roundup/internal/config"
	"github.com/Veraticus/roundup/internal/server"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the savings engine over HTTP",
		Long: `Start the HTTP API. Stops gracefully on SIGINT or SIGTERM.

Routes:
  POST /v1/transactions:parse
  POST /v1/transactions:validator
  POST /v1/transactions:filter
  POST /v1/returns:nps
  POST /v1/returns:index
  GET  /v1/performance-report
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.NewServer(a.settings.Server, a.evaluator())
			return srv.Run(cmd.Context(), a.settings.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().String("addr", ":5477", "listen address")
	_ = a.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))

	return cmd
}
