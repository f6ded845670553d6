// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"regexp"
	"strconv"
	"strings"

	"pmdetect/pkg/agent"
)

// versionRE extracts the leading numeric x[.y[.z]] run from a version field,
// discarding range operators and pre-release suffixes ("^10.0.0" -> "10.0.0",
// "6.14.0+sha512..." -> "6.14.0").
var versionRE = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// ParseSpecifier resolves a raw name[@version] specifier (optionally prefixed
// with a caret) into a Result. Unrecognized names are handed to onUnknown
// verbatim; a nil handler or a nil handler result yields nil. ParseSpecifier
// is pure: it never touches the filesystem and never fails.
func ParseSpecifier(specifier string, onUnknown UnknownHandler) *Result {
	name, version, _ := strings.Cut(strings.TrimPrefix(specifier, "^"), "@")
	return resolveAgent(name, normalizeVersion(version), specifier, onUnknown)
}

// resolveAgent applies the agent-specific version-line quirks. Decision order
// matters: the berry and legacy-pnpm rules must run before the known-agent
// passthrough. raw is the verbatim specifier forwarded to onUnknown.
func resolveAgent(name, version, raw string, onUnknown UnknownHandler) *Result {
	switch {
	case name == string(agent.NameYarn) && majorAbove(version, 1):
		// Yarn 2+ is the "berry" line. The specifier's number is not the
		// Yarn binary's version once berry is in play, so it is discarded
		// in favor of the literal.
		return &Result{Name: agent.NameYarn, Agent: agent.YarnBerry, Version: "berry"}

	case name == string(agent.NamePnpm) && majorBelow(version, 7):
		return &Result{Name: agent.NamePnpm, Agent: agent.Pnpm6, Version: version}

	case agent.Agent(name).IsValid():
		a := agent.Agent(name)
		return &Result{Name: a.Name(), Agent: a, Version: version}

	default:
		if onUnknown == nil {
			return nil
		}
		return onUnknown(raw)
	}
}

// normalizeVersion reduces a version field to its leading numeric run. Fields
// without one (empty strings, tags like "latest") pass through unchanged so
// the major-version comparisons fail closed on them.
func normalizeVersion(version string) string {
	if m := versionRE.FindString(version); m != "" {
		return m
	}
	return version
}

// majorAbove reports whether the version's leading integer is strictly
// greater than n. Missing or non-numeric versions compare false.
func majorAbove(version string, n int) bool {
	major, ok := leadingInt(version)
	return ok && major > n
}

// majorBelow reports whether the version's leading integer is strictly less
// than n. Missing or non-numeric versions compare false.
func majorBelow(version string, n int) bool {
	major, ok := leadingInt(version)
	return ok && major < n
}

// leadingInt parses the digits at the start of version.
func leadingInt(version string) (int, bool) {
	i := 0
	for i < len(version) && version[i] >= '0' && version[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(version[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}
