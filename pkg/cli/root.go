/*
Copyright © 2025 StatusKit Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/statuskit/statuskit/pkg/config"
	"github.com/statuskit/statuskit/pkg/logging"
	"github.com/statuskit/statuskit/pkg/version"
)

const name = "pulsed"

// Execute parses arguments and runs the selected command. It is called
// by main.main() and owns signal handling for graceful shutdown.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Platform health aggregation service",
		Version: version.Get().String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "config file (YAML, overlays environment variables)",
				Sources: cli.EnvVars("PULSED_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version.Version, cmd.String("log-level"))
			slog.Info("starting",
				"name", name,
				"version", version.Version,
				"commit", version.Commit,
				"date", version.Date,
				"logLevel", cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			snapshotCmd(),
			versionCmd(),
		},
	}
}

// loadSettings builds Settings from the environment, overlaying the
// optional config file.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings := config.FromEnv()
	if path := cmd.String("config"); path != "" {
		if err := settings.ApplyFile(path); err != nil {
			return nil, err
		}
	}
	return settings, nil
}
