/*
Copyright © 2025 StatusKit Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/statuskit/statuskit/pkg/serializer"
	"github.com/statuskit/statuskit/pkg/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:                  "version",
		EnableShellCompletion: true,
		Usage:                 "Print the build version",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   fmt.Sprintf("Output format, one of: %v", serializer.SupportedFormats()),
				Value:   string(serializer.FormatYAML),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q (supported: %v)",
					cmd.String("format"), serializer.SupportedFormats())
			}
			return serializer.NewStdoutWriter(outFormat).Serialize(ctx, version.Get())
		},
	}
}
