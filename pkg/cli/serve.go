/*
Copyright © 2025 StatusKit Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/statuskit/statuskit/pkg/cache"
	"github.com/statuskit/statuskit/pkg/collectors"
	"github.com/statuskit/statuskit/pkg/config"
	"github.com/statuskit/statuskit/pkg/server"
	"github.com/statuskit/statuskit/pkg/snapshotter"
	"github.com/statuskit/statuskit/pkg/version"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the health aggregation HTTP service",
		Description: `Run the aggregation service: fan out across the configured
platform providers on demand, cache the assembled snapshot, and serve
it over HTTP.

Endpoints:
  GET /v1/health/snapshot   aggregated snapshot (refresh=true bypasses cache)
  GET /healthz              liveness probe
  GET /readyz               readiness probe
  GET /metrics              Prometheus metrics

Provider credentials are read from the environment; a provider with no
credentials reports unknown health plus a configuration metric rather
than failing startup.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if !settings.HasMonitoringCredentials() {
				slog.Warn("monitoring credentials not configured; " +
					"monitoring-backed collectors will report unknown")
			}

			store := newStore(settings)
			agg := snapshotter.New(collectors.FromSettings(settings), store, settings.CacheTTL.Std())

			cfg := server.NewConfig()
			cfg.Name = name
			cfg.Version = version.Version
			cfg.Port = settings.Port

			srv := server.New(cfg, agg)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})

			if err := g.Wait(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			slog.Info("server stopped gracefully")
			return nil
		},
	}
}

// newStore picks the snapshot store backend: shared Redis when an
// address is configured, in-process memory otherwise.
func newStore(settings *config.Settings) cache.Store {
	if settings.RedisAddr != "" {
		slog.Info("using redis snapshot store", "addr", settings.RedisAddr)
		return cache.NewRedisStore(settings.RedisAddr)
	}
	return cache.NewMemoryStore()
}
