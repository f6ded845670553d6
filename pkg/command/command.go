// SPDX-License-Identifier: MPL-2.0

// Package command is the static registry mapping an agent and an abstract
// command name to the concrete CLI invocation. It is pure data for downstream
// tooling: nothing here executes processes, and the detection resolver never
// reads it.
package command

import (
	"errors"
	"fmt"

	"pmdetect/pkg/agent"
)

const (
	// Agent passes arbitrary arguments straight to the agent binary.
	Agent Command = "agent"
	// Run invokes a manifest script.
	Run Command = "run"
	// Install installs the project's dependencies.
	Install Command = "install"
	// Frozen installs dependencies without updating the lockfile.
	Frozen Command = "frozen"
	// Global installs a package globally.
	Global Command = "global"
	// Add adds a dependency to the project.
	Add Command = "add"
	// Upgrade upgrades a dependency.
	Upgrade Command = "upgrade"
	// UpgradeInteractive upgrades dependencies with an interactive picker.
	UpgradeInteractive Command = "upgrade-interactive"
	// Execute runs a package binary, downloading it if needed.
	Execute Command = "execute"
	// ExecuteLocal runs a binary from the local dependency tree.
	ExecuteLocal Command = "execute-local"
	// Uninstall removes a dependency from the project.
	Uninstall Command = "uninstall"
	// GlobalUninstall removes a globally installed package.
	GlobalUninstall Command = "global_uninstall"

	// placeholder marks where the caller's extra arguments splice into a
	// fixed token sequence.
	placeholder = "$0"
)

var (
	// ErrUnknownAgent is the sentinel error wrapped by UnknownAgentError.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrUnknownCommand is the sentinel error wrapped by UnknownCommandError.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnsupported is the sentinel error wrapped by UnsupportedError.
	ErrUnsupported = errors.New("command not supported by agent")

	// commands lists every abstract command in definition order.
	commands = []Command{
		Agent, Run, Install, Frozen, Global, Add, Upgrade,
		UpgradeInteractive, Execute, ExecuteLocal, Uninstall, GlobalUninstall,
	}
)

type (
	// Command is an abstract, agent-independent command name.
	Command string

	// Resolved is a concrete invocation: the binary to run and its
	// arguments, ready for an exec layer.
	Resolved struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}

	// template is the registry's tagged variant with exactly one case set:
	// a fixed token sequence (possibly containing the args placeholder), an
	// argument-transforming builder, or the unsupported marker. Dispatch is
	// explicit in Resolve; no case is inferred from another.
	template struct {
		tokens      []string
		build       func(args []string) []string
		unsupported bool
	}

	// UnknownAgentError is returned when the agent is not in the registry.
	UnknownAgentError struct{ Agent agent.Agent }

	// UnknownCommandError is returned when the command name is not known.
	UnknownCommandError struct{ Command Command }

	// UnsupportedError is returned when a known agent has no invocation for
	// a known command (e.g. npm has no interactive upgrade).
	UnsupportedError struct {
		Agent   agent.Agent
		Command Command
	}
)

// Error implements the error interface.
func (e *UnknownAgentError) Error() string {
	return fmt.Sprintf("unknown agent %q", e.Agent)
}

// Unwrap returns ErrUnknownAgent for errors.Is() checks.
func (e *UnknownAgentError) Unwrap() error { return ErrUnknownAgent }

// Error implements the error interface.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Command)
}

// Unwrap returns ErrUnknownCommand for errors.Is() checks.
func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("agent %q does not support %q", e.Agent, e.Command)
}

// Unwrap returns ErrUnsupported for errors.Is() checks.
func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// IsValid reports whether c is a known abstract command.
func (c Command) IsValid() bool {
	switch c {
	case Agent, Run, Install, Frozen, Global, Add, Upgrade,
		UpgradeInteractive, Execute, ExecuteLocal, Uninstall, GlobalUninstall:
		return true
	}
	return false
}

// String returns the command name as used in configuration and flags.
func (c Command) String() string { return string(c) }

// All returns a copy of the known commands in definition order.
func All() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// ParseCommand validates a raw command name from flags or configuration.
func ParseCommand(raw string) (Command, error) {
	c := Command(raw)
	if !c.IsValid() {
		return "", &UnknownCommandError{Command: c}
	}
	return c, nil
}

// Resolve produces the concrete invocation for an agent and command,
// splicing args into the template. The registry is read-only; the returned
// Resolved is freshly allocated on every call.
func Resolve(a agent.Agent, c Command, args []string) (*Resolved, error) {
	table, ok := registry[a]
	if !ok {
		return nil, &UnknownAgentError{Agent: a}
	}
	if !c.IsValid() {
		return nil, &UnknownCommandError{Command: c}
	}
	tmpl, ok := table[c]
	if !ok || tmpl.unsupported {
		return nil, &UnsupportedError{Agent: a, Command: c}
	}

	var tokens []string
	if tmpl.build != nil {
		tokens = tmpl.build(args)
	} else {
		tokens = splice(tmpl.tokens, args)
	}
	if len(tokens) == 0 {
		return nil, &UnsupportedError{Agent: a, Command: c}
	}
	return &Resolved{Command: tokens[0], Args: tokens[1:]}, nil
}

// splice expands the args placeholder in a fixed token sequence. Templates
// without a placeholder ignore args entirely.
func splice(tokens, args []string) []string {
	out := make([]string, 0, len(tokens)+len(args))
	for _, tok := range tokens {
		if tok == placeholder {
			out = append(out, args...)
			continue
		}
		out = append(out, tok)
	}
	return out
}
