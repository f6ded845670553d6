// SPDX-License-Identifier: MPL-2.0

package detect

import (
	"context"
	"os"
)

// prober performs the detector's filesystem reads. Every method checks the
// context first -- these are the call's only interruption points -- and
// absorbs I/O failures as absence: the error return is non-nil only for
// context cancellation. No handle outlives a call.
type prober struct {
	ctx context.Context
}

// fileExists reports whether path is an existing regular file.
func (p prober) fileExists(path string) (bool, error) {
	if err := p.ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	return info.Mode().IsRegular(), nil
}

// dirExists reports whether path is an existing directory.
func (p prober) dirExists(path string) (bool, error) {
	if err := p.ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	return info.IsDir(), nil
}

// readFile returns the file's content, with ok=false for any read failure
// (missing file, permission error, directory in the way).
func (p prober) readFile(path string) ([]byte, bool, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, nil
	}
	return data, true, nil
}
