// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"pmdetect/internal/config"
	"pmdetect/internal/issue"
	"pmdetect/pkg/command"
	"pmdetect/pkg/detect"

	"github.com/spf13/cobra"
)

var (
	cmdCwd  string
	cmdJSON bool

	cmdCmd = &cobra.Command{
		Use:   "cmd <command> [-- args...]",
		Short: "Print the detected agent's invocation for an abstract command",
		Long: `Print how the detected package manager spells an abstract command.

Detects the agent first, then maps the abstract command through the
invocation table. Nothing is executed; the invocation is printed so it
can be copied or spliced into scripts.

Abstract commands: ` + commandList() + `

Arguments after -- are passed through to the invocation, e.g.:
  pmdetect cmd run -- build
  pmdetect cmd add -- -D typescript`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCmd(cmd, args[0], args[1:])
		},
	}
)

func init() {
	cmdCmd.Flags().StringVar(&cmdCwd, "cwd", "", "starting directory (default is the working directory)")
	cmdCmd.Flags().BoolVar(&cmdJSON, "json", false, "print the invocation as JSON")
}

func commandList() string {
	all := command.All()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runCmd(cobraCmd *cobra.Command, rawCommand string, extra []string) error {
	c, err := command.ParseCommand(rawCommand)
	if err != nil {
		return err
	}

	cfg := config.Get()
	var unknown string
	r, err := detect.Detect(cobraCmd.Context(), detect.Options{
		Cwd:         cmdCwd,
		Strategies:  cfg.Strategies,
		StopDir:     cfg.StopDir,
		EnvFastPath: cfg.EnvFastPath,
		Logger:      newLogger(),
		OnUnknown: func(specifier string) *detect.Result {
			unknown = specifier
			return nil
		},
	})
	if err != nil {
		return err
	}
	if r == nil {
		return failNotDetected(unknown)
	}

	resolved, err := command.Resolve(r.Agent, c, extra)
	if err != nil {
		if errors.Is(err, command.ErrUnsupported) {
			rendered, renderErr := issue.Get(issue.UnsupportedCommandId).Render("dark")
			if renderErr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
			return &ExitError{Code: 1, Err: err}
		}
		return err
	}

	if jsonOutput(cobraCmd, cmdJSON) {
		return json.NewEncoder(os.Stdout).Encode(resolved)
	}

	line := resolved.Command
	if len(resolved.Args) > 0 {
		line += " " + strings.Join(resolved.Args, " ")
	}
	fmt.Println(CmdStyle.Render(line))
	return nil
}
