// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "syscall"

// fatalErrnos are the ReadDirectoryChangesW failures a watcher cannot
// recover from: handle exhaustion (4), a handle invalidated by deleting or
// unmounting the directory (6) and a failed notification buffer
// allocation (8).
var fatalErrnos = []error{syscall.Errno(4), syscall.Errno(6), syscall.Errno(8)}
