/*
Copyright © 2025 StatusKit Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/statuskit/statuskit/pkg/cache"
	"github.com/statuskit/statuskit/pkg/collectors"
	"github.com/statuskit/statuskit/pkg/serializer"
	"github.com/statuskit/statuskit/pkg/snapshotter"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Run one aggregation pass and print the snapshot",
		Description: `Run a single live aggregation pass across the configured
providers and print the assembled snapshot, without starting the HTTP
service. Useful for cron-style checks and configuration debugging:
providers with missing credentials show up as unknown statuses with
configuration metrics.

Output defaults to YAML on stdout.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Output format, one of: %v", serializer.SupportedFormats()),
				Value:   string(serializer.FormatYAML),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q (supported: %v)",
					cmd.String("format"), serializer.SupportedFormats())
			}

			agg := snapshotter.New(collectors.FromSettings(settings),
				cache.NewMemoryStore(), settings.CacheTTL.Std())

			snap, err := agg.Snapshot(ctx, true)
			if err != nil {
				return fmt.Errorf("failed to assemble snapshot: %w", err)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, snap)
		},
	}
}
