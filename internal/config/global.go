// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when set.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points ConfigDir at dir, bypassing HOME and XDG
// lookups. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
