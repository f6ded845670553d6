// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalFsnotifyError classifies fsnotify errors that indicate the watcher
// is fundamentally broken and cannot recover. On Windows, these correspond
// to ReadDirectoryChangesW resource errors:
//   - ERROR_TOO_MANY_OPEN_FILES (4)
//   - ERROR_INVALID_HANDLE (6): the directory handle was closed underneath us
//   - ERROR_NOT_ENOUGH_MEMORY (8)
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, syscall.Errno(4)) ||
		errors.Is(err, syscall.Errno(6)) ||
		errors.Is(err, syscall.Errno(8))
}
