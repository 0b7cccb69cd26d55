// ABOUTME: CLI command for starting the HTTP JSON API.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/cortitrack/internal/httpapi"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP JSON API.

Every /api request names the caller in the X-User-ID header. Prometheus
metrics are served at /metrics and a liveness probe at /healthz.

EXAMPLES:

  cortitrack serve
  cortitrack serve --listen 127.0.0.1:9000
  curl -H 'X-User-ID: 2' localhost:8080/api/users/3/comparison`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.GetListen()
		if cmd.Flags().Changed("listen") {
			addr = serveListen
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return httpapi.New(svc, metrics, logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
