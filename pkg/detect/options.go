// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"pmdetect/pkg/agent"
)

const (
	// StrategyLockfile checks each candidate directory for the filenames in
	// the lockfile table. A sibling package.json can sharpen the hit with a
	// precise versioned agent; otherwise the lockfile's bare family is used.
	StrategyLockfile Strategy = "lockfile"

	// StrategyPackageManagerField reads the manifest's packageManager field.
	StrategyPackageManagerField Strategy = "packageManager-field"

	// StrategyDevEnginesField reads the manifest's devEngines.packageManager
	// field.
	StrategyDevEnginesField Strategy = "devEngines-field"

	// StrategyInstallMetadata checks for marker files and directories left
	// behind by a prior install (existence only, no field extraction).
	StrategyInstallMetadata Strategy = "install-metadata"

	// manifestName is the project manifest filename consulted by the
	// manifest-backed strategies and the lockfile sibling read.
	manifestName = "package.json"
)

// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
var ErrInvalidStrategy = errors.New("invalid detection strategy")

type (
	// Strategy names one detection technique evaluated per directory.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not
	// recognized. It wraps ErrInvalidStrategy for errors.Is() compatibility.
	InvalidStrategyError struct {
		Value string
	}

	// Result is a successful detection outcome. It is produced once per call
	// and never mutated afterwards.
	Result struct {
		// Name is the coarse package-manager family.
		Name agent.Name `json:"name"`
		// Agent is the full identity including the version-line flavor.
		Agent agent.Agent `json:"agent"`
		// Version is the detected version, when a manifest field supplied
		// one. For Yarn berry the literal "berry" is used because the
		// specifier's number is not the installed binary's version.
		Version string `json:"version,omitempty"`
	}

	// UnknownHandler receives specifiers whose name is not a known agent,
	// verbatim as they appeared in the manifest or environment. Its return
	// value becomes the outcome for that signal; nil means "no signal". A nil
	// handler behaves like a handler that always returns nil.
	UnknownHandler func(specifier string) *Result

	// Options configures a single detection call. The zero value detects
	// from the process working directory with the default strategies. An
	// Options value is read once per call and never mutated.
	Options struct {
		// Cwd is the starting directory. Empty means the process working
		// directory.
		Cwd string

		// Strategies is the ordered list evaluated at each directory; the
		// first strategy that yields a result within a directory wins. Empty
		// means DefaultStrategies().
		Strategies []Strategy

		// OnUnknown handles specifiers with unrecognized agent names.
		OnUnknown UnknownHandler

		// StopDir bounds the upward walk at a fixed path. The stop directory
		// itself is never inspected. Ignored when StopAt is set.
		StopDir string

		// StopAt bounds the upward walk with a predicate; the first
		// directory for which it returns true is not inspected and ends the
		// walk. Takes precedence over StopDir.
		StopAt func(dir string) bool

		// EnvFastPath short-circuits directory traversal using the
		// npm_config_user_agent environment hint. When enabled and the
		// variable is unset, detection returns nil without touching the
		// filesystem.
		EnvFastPath bool

		// Logger receives debug-level traces of strategy evaluation. Nil
		// disables logging; the library never logs on its own.
		Logger *log.Logger
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid detection strategy %q (valid: %s, %s, %s, %s)",
		e.Value, StrategyLockfile, StrategyPackageManagerField, StrategyDevEnginesField, StrategyInstallMetadata)
}

// Unwrap returns ErrInvalidStrategy for errors.Is() checks.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// IsValid reports whether s names a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyLockfile, StrategyPackageManagerField, StrategyDevEnginesField, StrategyInstallMetadata:
		return true
	}
	return false
}

// String returns the strategy name as used in configuration.
func (s Strategy) String() string { return string(s) }

// ParseStrategy validates a raw strategy name from configuration or flags.
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(raw)
	if !s.IsValid() {
		return "", &InvalidStrategyError{Value: raw}
	}
	return s, nil
}

// DefaultStrategies returns the strategy order used when Options.Strategies
// is empty. Install metadata is not part of the default set because marker
// files survive switching package managers and would shadow fresher signals.
func DefaultStrategies() []Strategy {
	return []Strategy{StrategyLockfile, StrategyPackageManagerField, StrategyDevEnginesField}
}
