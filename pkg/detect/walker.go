// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"iter"
	"path/filepath"
)

// stopFunc reports whether a directory ends the upward walk. The directory
// that satisfies it is never yielded as a candidate.
type stopFunc func(dir string) bool

// stopCondition builds the walk boundary from Options. StopAt wins over
// StopDir; with neither set the walk ends only at the filesystem root. A
// StopDir value that is not an ancestor of the start simply never matches
// (the root check still terminates the walk) -- the boundary is not
// validated or corrected.
func stopCondition(opts Options) stopFunc {
	switch {
	case opts.StopAt != nil:
		return opts.StopAt
	case opts.StopDir != "":
		stop := filepath.Clean(opts.StopDir)
		return func(dir string) bool { return dir == stop }
	default:
		return nil
	}
}

// lookup yields start and each of its ancestors in turn, child before
// parent. The sequence is lazy: no path beyond the last one the consumer
// asks for is computed, which keeps a match near the start from costing
// filesystem access at shallower levels. The filesystem root and any
// directory satisfying stop are excluded.
func lookup(start string, stop stopFunc) iter.Seq[string] {
	return func(yield func(string) bool) {
		dir := filepath.Clean(start)
		for {
			if parent := filepath.Dir(dir); parent == dir {
				return // filesystem root
			}
			if stop != nil && stop(dir) {
				return
			}
			if !yield(dir) {
				return
			}
			dir = filepath.Dir(dir)
		}
	}
}
