/*
Copyright © 2025 StatusKit Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestRootCmd(t *testing.T) {
	cmd := rootCmd()

	assert.Equal(t, "pulsed", cmd.Name)
	assert.NotEmpty(t, cmd.Version)

	names := make([]string, 0, len(cmd.Commands))
	for _, c := range cmd.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "snapshot", "version"}, names)
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := loadSettings(&cli.Command{})
	require.NoError(t, err)
	assert.Equal(t, 8080, settings.Port)
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9191\ncacheTtl: 30s\n"), 0o600))

	cmd := &cli.Command{
		Flags: []cli.Flag{&cli.StringFlag{Name: "config", Value: path}},
	}

	settings, err := loadSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, 9191, settings.Port)
	assert.Equal(t, 30*time.Second, settings.CacheTTL.Std())
}

func TestLoadSettingsBadFile(t *testing.T) {
	cmd := &cli.Command{
		Flags: []cli.Flag{&cli.StringFlag{Name: "config", Value: "/nonexistent/config.yaml"}},
	}

	_, err := loadSettings(cmd)
	assert.Error(t, err)
}
