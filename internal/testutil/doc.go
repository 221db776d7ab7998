// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: in-memory package trees
// (MemFS, WriteManifest, WriteFiles, Package), directory creation
// (MustMkdirAll) and home directory overrides (SetHomeDir).
package testutil
