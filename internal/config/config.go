// SPDX-License-Identifier: MPL-2.0

// Package config loads the pmdetect CLI configuration. The file is optional:
// a missing config file yields the defaults, while an unreadable or invalid
// one surfaces an actionable error so misconfiguration is reported rather
// than silently corrected.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/viper"

	"pmdetect/internal/issue"
	"pmdetect/pkg/detect"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "pmdetect"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"

	// OutputText renders detection results as styled text.
	OutputText Output = "text"
	// OutputJSON renders detection results as JSON.
	OutputJSON Output = "json"
)

// ErrInvalidOutput is the sentinel error wrapped by InvalidOutputError.
var ErrInvalidOutput = errors.New("invalid output format")

type (
	// Output selects how the CLI renders detection results.
	Output string

	// InvalidOutputError is returned when an Output value is not recognized.
	// It wraps ErrInvalidOutput for errors.Is() compatibility.
	InvalidOutputError struct {
		Value Output
	}

	// Config holds the CLI settings. Fields map 1:1 onto config file keys.
	Config struct {
		// Strategies is the detection strategy order. Parsed separately from
		// the raw string slice so invalid names fail loading.
		Strategies []detect.Strategy `mapstructure:"-"`
		// StopDir bounds the upward walk; empty walks to the filesystem root.
		StopDir string `mapstructure:"stop_dir"`
		// EnvFastPath enables the npm_config_user_agent short-circuit.
		EnvFastPath bool `mapstructure:"env_fast_path"`
		// Output is the default render format.
		Output Output `mapstructure:"output"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: %s, %s)", e.Value, OutputText, OutputJSON)
}

// Unwrap returns ErrInvalidOutput for errors.Is() checks.
func (e *InvalidOutputError) Unwrap() error { return ErrInvalidOutput }

// IsValid reports whether o is a known output format.
func (o Output) IsValid() bool {
	return o == OutputText || o == OutputJSON
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Strategies: detect.DefaultStrategies(),
		Output:     OutputText,
	}
}

// ConfigDir returns the pmdetect configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

var (
	mu      sync.Mutex
	cached  *Config
	loaded  bool
	loadErr error
)

// Get returns the cached configuration, loading it on first use. A load
// failure yields the defaults so callers can keep working while the CLI
// surfaces the problem separately.
func Get() *Config {
	cfg, _ := Load()
	return cfg
}

// Load reads the configuration once and caches it for the process lifetime.
// The returned Config is never nil.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if !loaded {
		cached, loadErr = load()
		if cached == nil {
			cached = DefaultConfig()
		}
		loaded = true
	}
	return cached, loadErr
}

// load performs the actual read without touching the cache.
func load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("strategies", strategyStrings(defaults.Strategies))
	v.SetDefault("stop_dir", defaults.StopDir)
	v.SetDefault("env_fast_path", defaults.EnvFastPath)
	v.SetDefault("output", string(defaults.Output))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	// A custom config file path set via --config is used exclusively.
	if configFileOverride != "" {
		v.SetConfigFile(configFileOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "locate configuration directory")
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configFileOverride == "" {
			// No config file is the common case; defaults apply.
			return defaults, nil
		}
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Check the YAML syntax").
			WithSuggestion("Run 'pmdetect config show' to see the effective configuration").
			Wrap(err).
			Build()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.WrapWithContext(err, "parse configuration", v.ConfigFileUsed())
	}

	strategies, err := parseStrategies(v.GetStringSlice("strategies"))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Valid strategies: lockfile, packageManager-field, devEngines-field, install-metadata").
			Wrap(err).
			Build()
	}
	cfg.Strategies = strategies

	if !cfg.Output.IsValid() {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(v.ConfigFileUsed()).
			WithSuggestion("Valid output formats: text, json").
			Wrap(&InvalidOutputError{Value: cfg.Output}).
			Build()
	}

	return &cfg, nil
}

// parseStrategies validates the raw strategy names from the config file.
func parseStrategies(raw []string) ([]detect.Strategy, error) {
	out := make([]detect.Strategy, 0, len(raw))
	for _, r := range raw {
		s, err := detect.ParseStrategy(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func strategyStrings(strategies []detect.Strategy) []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = string(s)
	}
	return out
}
