// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"

	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/types"
)

// Inputs returns the directories whose contents decide how specifier
// resolves from dir: every directory probed for the parent manifest, the
// search context's node_modules directories, the package directory the
// specifier maps into, the target manifest's directory and the entry file's
// directory. Stages that fail contribute what they probed. The result is
// sorted and may name directories that do not exist yet.
func (l *Locator) Inputs(specifier types.Specifier, dir types.FilesystemPath, cache manifest.Cache) []types.FilesystemPath {
	seen := make(map[types.FilesystemPath]struct{})
	_, _ = l.walk(specifier, dir, cache, func(p types.FilesystemPath) { seen[p] = struct{}{} })
	return sorted(seen)
}

func sorted(set map[types.FilesystemPath]struct{}) []types.FilesystemPath {
	out := make([]types.FilesystemPath, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
