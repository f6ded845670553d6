// SPDX-License-Identifier: MPL-2.0

package agent

import "strings"

type (
	// Lockfile maps a lockfile filename to the family it implies. Lockfiles
	// pin dependency trees, so their presence is a strong hint about which
	// package manager governs a directory, but they carry no version
	// information beyond the family.
	Lockfile struct {
		// File is the lockfile's filename, checked for existence in each
		// candidate directory.
		File string
		// Name is the family implied by the lockfile.
		Name Name
	}

	// Marker maps an install-metadata path to the agent that leaves it
	// behind. Markers are artifacts of a prior install (linker state files,
	// virtual store directories). A trailing slash means the path must be a
	// directory; otherwise it must be a regular file.
	Marker struct {
		// Path is the marker path relative to a candidate directory.
		Path string
		// Agent is the full identity implied by the marker. Unlike lockfile
		// hits, some markers pin the version line (e.g. ".pnp.cjs" only ever
		// comes from Yarn berry).
		Agent Agent
	}
)

// lockfiles is the lockfile table in definition order. Detection iterates it
// front to back and the first existing filename wins, so more specific
// lockfiles come before the npm fallbacks.
var lockfiles = []Lockfile{
	{"bun.lock", NameBun},
	{"bun.lockb", NameBun},
	{"deno.lock", NameDeno},
	{"pnpm-lock.yaml", NamePnpm},
	{"pnpm-workspace.yaml", NamePnpm},
	{"yarn.lock", NameYarn},
	{"package-lock.json", NameNpm},
	{"npm-shrinkwrap.json", NameNpm},
}

// installMetadata is the install-metadata marker table in definition order.
// ".yarn_integrity" is only written by Yarn classic; ".yarn-state.yml" by
// Yarn berry's node_modules linker.
var installMetadata = []Marker{
	{"node_modules/.deno/", Deno},
	{"node_modules/.pnpm/", Pnpm},
	{"node_modules/.yarn-state.yml", YarnBerry},
	{"node_modules/.yarn_integrity", Yarn},
	{"node_modules/.package-lock.json", Npm},
	{".pnp.cjs", YarnBerry},
	{".pnp.js", YarnBerry},
	{"bun.lock", Bun},
	{"bun.lockb", Bun},
}

// IsDir reports whether the marker denotes a directory rather than a file.
func (m Marker) IsDir() bool { return strings.HasSuffix(m.Path, "/") }

// Lockfiles returns a copy of the lockfile table in definition order.
func Lockfiles() []Lockfile {
	out := make([]Lockfile, len(lockfiles))
	copy(out, lockfiles)
	return out
}

// InstallMetadata returns a copy of the install-metadata table in definition
// order.
func InstallMetadata() []Marker {
	out := make([]Marker, len(installMetadata))
	copy(out, installMetadata)
	return out
}
