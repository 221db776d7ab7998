// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir makes dir the user's home directory for the rest of the test
// and clears the XDG and APPDATA overrides, so config directory lookups
// derive from dir alone. The environment is restored when the test ends,
// which rules out t.Parallel in the caller.
func SetHomeDir(t testing.TB, dir string) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", "")
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", "")
		t.Setenv("USERPROFILE", dir)
		return
	}
	t.Setenv("HOME", dir)
}
