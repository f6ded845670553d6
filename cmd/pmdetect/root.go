// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pmdetect.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"pmdetect/internal/config"
	"pmdetect/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "pmdetect",
		Short: "Detect which package manager governs a project",
		Long: TitleStyle.Render("pmdetect") + SubtitleStyle.Render(" - Detect which package manager governs a project") + `

pmdetect figures out whether a JavaScript project is driven by npm,
yarn (classic or berry), pnpm, bun, or deno. It walks up from the
working directory looking for lockfiles, manifest fields, and
leftover install metadata, and stops at the first directory that
carries any signal.

` + SubtitleStyle.Render("Examples:") + `
  pmdetect detect                   Detect the agent for the current directory
  pmdetect detect --json            Same, as machine-readable JSON
  pmdetect cmd install              Print the detected agent's install invocation
  pmdetect cmd run -- build         Print how the agent runs the 'build' script
  pmdetect agents                   List the agents pmdetect knows about
  pmdetect config show              Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pmdetect/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(cmdCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors; defaults stay in effect.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, the verbose form includes suggestions.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		if verboseMode {
			return ae.Verbose()
		}
		return ae.Error()
	}
	return err.Error()
}

// jsonOutput reports whether a command should render JSON: the --json flag
// when explicitly set, otherwise the configured output format.
func jsonOutput(cmd *cobra.Command, flagValue bool) bool {
	if cmd.Flags().Changed("json") {
		return flagValue
	}
	return config.Get().Output == config.OutputJSON
}

// failNotDetected renders the guidance card for a failed detection and
// returns the exit error. A specifier that named an unknown agent gets the
// more specific card.
func failNotDetected(unknown string) error {
	id := issue.AgentNotDetectedId
	err := errors.New("no package manager detected")
	if unknown != "" {
		id = issue.UnknownSpecifierId
		err = fmt.Errorf("unknown package manager %q", unknown)
	}
	if rendered, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
	return &ExitError{Code: 1, Err: err}
}

// newLogger builds the debug logger handed to the detection engine. A nil
// logger keeps the library silent, so one is built only in verbose mode.
func newLogger() *log.Logger {
	if !verbose {
		return nil
	}
	logger := log.New(os.Stderr)
	logger.SetPrefix("pmdetect")
	logger.SetLevel(log.DebugLevel)
	return logger
}
