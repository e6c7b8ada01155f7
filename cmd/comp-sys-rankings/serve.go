// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/j-mckerracher/comp-sys-rankings/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rankings over HTTP",
	Long: `Serve exposes the ranking operations as a JSON API:

  GET /api/venues                          areas and their venues
  GET /api/rankings?venue=..&area=..&year_low=..&year_high=..
  GET /api/distribution?institution=..&author=..
  GET /healthz
  GET /metrics                             Prometheus metrics

Filtered rankings are cached in Redis when cache.redis_addr is set.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := newService(ctx, cfg, serviceOptions{snapshots: true, cache: true})
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(svc, cfg.Server, logger.Named("server")).ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
