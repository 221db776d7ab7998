// SPDX-License-Identifier: MPL-2.0

package nodemodules

import (
	"path/filepath"

	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/types"
)

// DirName is the installed-packages directory name.
const DirName = "node_modules"

// SearchContext is the node_modules chain used to resolve a bare specifier.
// It is derived from the manifest enclosing the importing file.
type SearchContext struct {
	// ManifestPath is the package.json the context was derived from.
	ManifestPath types.FilesystemPath
	// Paths are the node_modules directories to search, innermost first.
	Paths []types.FilesystemPath
}

// Paths returns the node_modules directories for dir, innermost first:
// dir/node_modules, then one per ancestor up to the file system root.
// Ancestors that are themselves named node_modules are skipped, so
// /p/node_modules/a yields /p/node_modules/a/node_modules and
// /p/node_modules but never /p/node_modules/node_modules.
func Paths(dir types.FilesystemPath) []types.FilesystemPath {
	current := fspath.Clean(dir)
	var out []types.FilesystemPath
	for {
		if filepath.Base(string(current)) != DirName {
			out = append(out, fspath.JoinStr(current, DirName))
		}
		parent := fspath.Dir(current)
		if parent == current {
			return out
		}
		current = parent
	}
}

// NewSearchContext returns the search context anchored at a manifest path:
// the node_modules chain of the manifest's directory.
func NewSearchContext(manifestPath types.FilesystemPath) SearchContext {
	return SearchContext{
		ManifestPath: manifestPath,
		Paths:        Paths(fspath.Dir(manifestPath)),
	}
}
