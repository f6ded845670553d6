// SPDX-License-Identifier: MPL-2.0

// Package agent defines the package-manager identity model: the Agent
// enumeration (version-line flavored, e.g. "pnpm@6"), the coarser Name
// family, and the read-only data tables (lockfiles, install-metadata
// markers) that detection strategies consult.
package agent

import "strings"

const (
	// Npm is the npm package manager.
	Npm Agent = "npm"
	// Yarn is Yarn 1.x (classic).
	Yarn Agent = "yarn"
	// YarnBerry is Yarn 2+ (the "berry" line).
	YarnBerry Agent = "yarn@berry"
	// Pnpm is pnpm 7+.
	Pnpm Agent = "pnpm"
	// Pnpm6 is the legacy pnpm 6.x line, which has a different run syntax.
	Pnpm6 Agent = "pnpm@6"
	// Bun is the Bun runtime's package manager.
	Bun Agent = "bun"
	// Deno is the Deno runtime's package manager.
	Deno Agent = "deno"

	// NameNpm is the npm family.
	NameNpm Name = "npm"
	// NameYarn is the yarn family (classic and berry).
	NameYarn Name = "yarn"
	// NamePnpm is the pnpm family (legacy and current).
	NamePnpm Name = "pnpm"
	// NameBun is the bun family.
	NameBun Name = "bun"
	// NameDeno is the deno family.
	NameDeno Name = "deno"
)

type (
	// Agent identifies a specific package manager including its version-line
	// flavor. Two flavors exist beyond the plain families: "yarn@berry"
	// (Yarn 2+) and "pnpm@6" (pnpm before 7), because their CLI surfaces
	// differ from their families' current lines.
	Agent string

	// Name is the coarse package-manager family with the version flavor
	// stripped. Every valid Agent maps to exactly one Name.
	Name string
)

// agents lists every known Agent in definition order.
var agents = []Agent{Npm, Yarn, YarnBerry, Pnpm, Pnpm6, Bun, Deno}

// names lists every known Name in definition order.
var names = []Name{NameNpm, NameYarn, NamePnpm, NameBun, NameDeno}

// Name strips the version-line flavor from the agent, e.g. "yarn@berry"
// becomes "yarn". The zero value and unknown agents map onto themselves.
func (a Agent) Name() Name {
	base, _, _ := strings.Cut(string(a), "@")
	return Name(base)
}

// IsValid reports whether a is one of the known agents.
func (a Agent) IsValid() bool {
	switch a {
	case Npm, Yarn, YarnBerry, Pnpm, Pnpm6, Bun, Deno:
		return true
	}
	return false
}

// String returns the agent identifier as written in manifests and lockfile
// tables (e.g. "pnpm@6").
func (a Agent) String() string { return string(a) }

// IsValid reports whether n is one of the known families.
func (n Name) IsValid() bool {
	switch n {
	case NameNpm, NameYarn, NamePnpm, NameBun, NameDeno:
		return true
	}
	return false
}

// Agent widens the family back to an Agent. The result is always the
// family's current line (never a flavored variant).
func (n Name) Agent() Agent { return Agent(n) }

// String returns the family name.
func (n Name) String() string { return string(n) }

// All returns a copy of the known agents in definition order.
func All() []Agent {
	out := make([]Agent, len(agents))
	copy(out, agents)
	return out
}

// Names returns a copy of the known families in definition order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}
