// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"pmdetect/internal/config"
	"pmdetect/internal/issue"
	"pmdetect/internal/watch"
	"pmdetect/pkg/detect"

	"github.com/spf13/cobra"
)

var (
	detectCwd        string
	detectStrategies []string
	detectStopDir    string
	detectEnv        bool
	detectJSON       bool
	detectWatch      bool

	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Detect the package manager for a directory",
		Long: `Detect the package manager governing a directory.

Walks up from the starting directory and stops at the first directory
carrying any detection signal: a lockfile, a package.json field, or
install metadata. Exits 1 when nothing is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd)
		},
	}
)

func init() {
	detectCmd.Flags().StringVar(&detectCwd, "cwd", "", "starting directory (default is the working directory)")
	detectCmd.Flags().StringSliceVar(&detectStrategies, "strategy", nil, "detection strategies in order (lockfile, packageManager-field, devEngines-field, install-metadata)")
	detectCmd.Flags().StringVar(&detectStopDir, "stop-dir", "", "directory at which the upward walk stops (never inspected)")
	detectCmd.Flags().BoolVar(&detectEnv, "env", false, "resolve from npm_config_user_agent and skip the walk")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print the result as JSON")
	detectCmd.Flags().BoolVar(&detectWatch, "watch", false, "keep running and re-detect when lockfiles or manifests change")
}

// detectOptions merges the loaded configuration with the detect command's
// flags. Flags win over config file values.
func detectOptions(cmd *cobra.Command) (detect.Options, error) {
	cfg := config.Get()

	opts := detect.Options{
		Cwd:         detectCwd,
		Strategies:  cfg.Strategies,
		StopDir:     cfg.StopDir,
		EnvFastPath: cfg.EnvFastPath,
		Logger:      newLogger(),
	}

	if cmd.Flags().Changed("strategy") {
		strategies := make([]detect.Strategy, 0, len(detectStrategies))
		for _, raw := range detectStrategies {
			s, err := detect.ParseStrategy(raw)
			if err != nil {
				return detect.Options{}, err
			}
			strategies = append(strategies, s)
		}
		opts.Strategies = strategies
	}
	if cmd.Flags().Changed("stop-dir") {
		opts.StopDir = detectStopDir
	}
	if cmd.Flags().Changed("env") {
		opts.EnvFastPath = detectEnv
	}

	return opts, nil
}

func runDetect(cmd *cobra.Command) error {
	opts, err := detectOptions(cmd)
	if err != nil {
		return err
	}

	// Record a specifier with an unrecognized agent name so the failure
	// message can name it instead of reporting a generic miss.
	var unknown string
	opts.OnUnknown = func(specifier string) *detect.Result {
		unknown = specifier
		return nil
	}

	asJSON := jsonOutput(cmd, detectJSON)

	r, err := detect.Detect(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if detectWatch {
		printDetection(r, asJSON)
		return runDetectWatch(cmd, opts, asJSON)
	}

	if r == nil {
		return failNotDetected(unknown)
	}

	printDetection(r, asJSON)
	return nil
}

// printDetection renders a detection outcome. A nil result is printed too:
// in watch mode "nothing detected" is a state worth reporting, not an exit.
func printDetection(r *detect.Result, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		if r == nil {
			fmt.Println("null")
			return
		}
		if err := enc.Encode(r); err != nil {
			fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		}
		return
	}

	if r == nil {
		fmt.Println(SubtitleStyle.Render("no package manager detected"))
		return
	}

	fmt.Printf("%s: %s\n", SubtitleStyle.Render("agent"), SuccessStyle.Render(string(r.Agent)))
	fmt.Printf("%s: %s\n", SubtitleStyle.Render("name"), SuccessStyle.Render(string(r.Name)))
	if r.Version != "" {
		fmt.Printf("%s: %s\n", SubtitleStyle.Render("version"), SuccessStyle.Render(r.Version))
	}
}

// runDetectWatch blocks re-running detection whenever a detection-relevant
// file changes, until the command's context is cancelled.
func runDetectWatch(cmd *cobra.Command, opts detect.Options, asJSON bool) error {
	w, err := watch.New(watch.Config{
		Dir: opts.Cwd,
		OnChange: watch.Redetect(opts, func(r *detect.Result) {
			printDetection(r, asJSON)
		}),
	})
	if err != nil {
		rendered, renderErr := issue.Get(issue.WatchFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	fmt.Fprintln(os.Stderr, SubtitleStyle.Render("watching for changes (ctrl-c to stop)"))
	if err := w.Run(cmd.Context()); err != nil {
		rendered, renderErr := issue.Get(issue.WatchFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}
	return nil
}
