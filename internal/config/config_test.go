// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmdetect/pkg/detect"
)

// writeConfig drops a config.yaml into a fresh override directory and wires
// the loader to it for the duration of the test.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, detect.DefaultStrategies(), cfg.Strategies)
	assert.Empty(t, cfg.StopDir)
	assert.False(t, cfg.EnvFastPath)
	assert.Equal(t, OutputText, cfg.Output)
	assert.False(t, cfg.UI.Verbose)
}

func TestLoad_NoConfigFile(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ValidConfig(t *testing.T) {
	writeConfig(t, `
strategies:
  - install-metadata
  - lockfile
stop_dir: /workspace
env_fast_path: true
output: json
ui:
  verbose: true
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []detect.Strategy{detect.StrategyInstallMetadata, detect.StrategyLockfile}, cfg.Strategies)
	assert.Equal(t, "/workspace", cfg.StopDir)
	assert.True(t, cfg.EnvFastPath)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.True(t, cfg.UI.Verbose)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	writeConfig(t, `
strategies:
  - lockfile
  - guesswork
`)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, detect.ErrInvalidStrategy)
}

func TestLoad_InvalidOutput(t *testing.T) {
	writeConfig(t, "output: xml\n")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestLoad_MalformedYAML(t *testing.T) {
	writeConfig(t, "strategies: [unterminated\n")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ErrorStillYieldsUsableConfig(t *testing.T) {
	writeConfig(t, "output: xml\n")

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg, "Load must return defaults alongside the error")
	assert.Equal(t, OutputText, cfg.Output)
}

func TestLoad_CachesResult(t *testing.T) {
	writeConfig(t, "env_fast_path: true\n")

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGet_SwallowsLoadError(t *testing.T) {
	writeConfig(t, "output: xml\n")

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, OutputText, cfg.Output)
}

func TestConfigFileOverride_MissingFileIsAnError(t *testing.T) {
	SetConfigFilePathOverride(filepath.Join(t.TempDir(), "nope.yaml"))
	t.Cleanup(Reset)

	_, err := Load()
	require.Error(t, err, "an explicit --config path must not silently fall back")
}

func TestOutput_IsValid(t *testing.T) {
	assert.True(t, OutputText.IsValid())
	assert.True(t, OutputJSON.IsValid())
	assert.False(t, Output("xml").IsValid())

	var invalidErr *InvalidOutputError
	err := error(&InvalidOutputError{Value: "xml"})
	assert.True(t, errors.As(err, &invalidErr))
	assert.ErrorIs(t, err, ErrInvalidOutput)
}
