// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests to override the config directory.
// This is necessary because os.UserHomeDir() doesn't reliably respect
// the HOME environment variable on all platforms (e.g., macOS in CI).
var configDirOverride string

// configFileOverride holds the --config flag value; when set it is used
// exclusively, and a missing file is an error rather than a fallback.
var configFileOverride string

// Reset clears overrides and the cached configuration. Call from test
// cleanup to restore defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = ""
	configFileOverride = ""
	cached = nil
	loaded = false
	loadErr = nil
}

// SetConfigDirOverride sets a custom config directory path. Primarily for
// tests, which cannot rely on os.UserHomeDir() honoring HOME everywhere.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetConfigFilePathOverride sets an explicit config file path (--config).
func SetConfigFilePathOverride(path string) {
	configFileOverride = path
}
