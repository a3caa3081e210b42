package main

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/researchflow/pkg/agent"
	"github.com/randalmurphal/researchflow/pkg/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent over HTTP",
		Long: `Serve exposes POST /agent. A start request begins a research run and
returns either the approval request (status "interrupted") or the final
result; a resume request delivers the human decision to a suspended run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, store, logger, err := buildService()
			if err != nil {
				return err
			}
			defer store.Close()

			if addr == "" {
				addr = agent.LoadConfig().Addr
			}

			logger.Info("listening", slog.String("addr", addr))
			return http.ListenAndServe(addr, server.New(svc, logger).Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from RESEARCHFLOW_ADDR or :8000)")
	return cmd
}
