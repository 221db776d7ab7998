// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so resolution code can stay in
// typed paths end to end.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/nextmain/nextmain/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments such as "node_modules" or "package.json".
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath. Returns an error if the
// underlying OS call fails.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Resolve resolves ref against base the way a manifest-relative entry is
// resolved: an absolute ref is cleaned and returned as is, a relative ref
// is joined onto base. The result is absolute whenever base is.
func Resolve(base types.FilesystemPath, ref string) types.FilesystemPath {
	if filepath.IsAbs(ref) {
		return types.FilesystemPath(filepath.Clean(ref))
	}
	return types.FilesystemPath(filepath.Join(string(base), filepath.FromSlash(ref)))
}
