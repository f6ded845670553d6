// SPDX-License-Identifier: MPL-2.0

// Package detect resolves which package-manager agent governs a project
// directory. It walks the directory tree upward from a starting point and, at
// each level, evaluates an ordered list of strategies (lockfile presence,
// manifest fields, install-metadata markers) until one yields a result.
//
// Proximity outranks precision: a weak signal close to the starting directory
// (a bare lockfile) wins over a stronger signal further up (an explicit
// packageManager field). This mirrors how the package managers themselves
// scope a project and is deliberate; callers that want field-first semantics
// can reorder Options.Strategies.
//
// All expected failures (missing files, unreadable manifests, malformed JSON,
// unknown specifiers without a handler) are absorbed as "no signal". Detect
// only returns an error for context cancellation or an unresolvable working
// directory.
package detect
