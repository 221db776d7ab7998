// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/nodemodules"
	"github.com/nextmain/nextmain/pkg/types"
)

// Locator finds package manifests and maps specifiers to jsnext:main entry
// files. It holds no per-run state; caches are passed in by the caller.
type Locator struct {
	fs        afero.Fs
	manifests *manifest.Loader
	finder    *nodemodules.Finder
	logger    *log.Logger
}

// NewLocator returns a Locator reading from fs. A nil fs means the OS file
// system and a nil logger discards debug output.
func NewLocator(fs afero.Fs, logger *log.Logger, opts ...nodemodules.FinderOption) *Locator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Locator{
		fs:        fs,
		manifests: manifest.NewLoader(fs),
		finder:    nodemodules.NewFinder(fs, opts...),
		logger:    logger,
	}
}

// ResolvePackage returns the package.json nearest to anyPath, searching the
// directory containing anyPath and then each ancestor. The manifest found is
// loaded into cache; a manifest that fails to parse is still returned.
// A relative anyPath is taken against the working directory.
func (l *Locator) ResolvePackage(anyPath types.FilesystemPath, cache manifest.Cache) (types.FilesystemPath, bool) {
	dir, err := fspath.Abs(fspath.Dir(anyPath))
	if err != nil {
		return "", false
	}
	return l.resolvePackageFrom(dir, cache, nil)
}

func (l *Locator) resolvePackageFrom(dir types.FilesystemPath, cache manifest.Cache, visit func(types.FilesystemPath)) (types.FilesystemPath, bool) {
	for _, nm := range nodemodules.Paths(dir) {
		probe := fspath.Dir(nm)
		if visit != nil {
			visit(probe)
		}
		candidate := fspath.JoinStr(probe, manifest.FileName)
		if !l.manifests.Exists(candidate) {
			continue
		}
		if _, err := l.manifests.Load(candidate, cache); err != nil {
			l.logger.Debug("Manifest not cached", "path", candidate, "err", err)
		}
		return candidate, true
	}
	return "", false
}

// ResolvePath resolves an external specifier imported from importingPath to
// the absolute path of its package's jsnext:main file. A relative
// importingPath is taken against the working directory. Failures are
// returned as *ResolveError.
func (l *Locator) ResolvePath(specifier types.Specifier, importingPath types.FilesystemPath, cache manifest.Cache) (types.FilesystemPath, error) {
	return l.ResolvePathFrom(specifier, fspath.Dir(importingPath), cache)
}

// ResolvePathFrom is ResolvePath for an import issued from directory dir
// rather than from a file.
func (l *Locator) ResolvePathFrom(specifier types.Specifier, dir types.FilesystemPath, cache manifest.Cache) (types.FilesystemPath, error) {
	return l.walk(specifier, dir, cache, nil)
}

// walk runs every resolution stage from dir. visit, when set, receives each
// directory a stage looks at, including those of a failing stage.
func (l *Locator) walk(specifier types.Specifier, dir types.FilesystemPath, cache manifest.Cache, visit func(types.FilesystemPath)) (types.FilesystemPath, error) {
	if visit == nil {
		visit = func(types.FilesystemPath) {}
	}
	abs, err := fspath.Abs(dir)
	if err != nil {
		return "", stageError(specifier, StageParentPackage, dir, err)
	}

	parent, ok := l.resolvePackageFrom(abs, cache, visit)
	if !ok {
		return "", stageError(specifier, StageParentPackage, abs, nil)
	}
	sc := nodemodules.NewSearchContext(parent)
	l.logger.Debug("Search context", "specifier", specifier, "manifest", parent, "paths", len(sc.Paths))
	for _, nm := range sc.Paths {
		visit(nm)
		if name := specifier.PackageName(); name != "" {
			visit(fspath.JoinStr(nm, name))
		}
	}

	mapped, err := l.finder.ResolveFilename(specifier, sc, cache)
	if err != nil {
		return "", stageError(specifier, StagePackageLookup, "", err)
	}
	visit(fspath.Dir(mapped))

	target, ok := l.resolvePackageFrom(fspath.Dir(mapped), cache, nil)
	if !ok {
		return "", stageError(specifier, StagePackageLookup, mapped, errors.New("installed file has no enclosing package.json"))
	}
	visit(fspath.Dir(target))

	m, err := l.manifests.Load(target, cache)
	if err != nil {
		return "", stageError(specifier, StageEntryPoint, target, err)
	}
	entry, err := m.EntryPoint()
	if err != nil {
		return "", stageError(specifier, StageEntryPoint, target, err)
	}

	candidate := fspath.Resolve(fspath.Dir(target), entry)
	visit(fspath.Dir(candidate))
	if !l.manifests.Exists(candidate) {
		return "", stageError(specifier, StageCandidate, candidate, nil)
	}
	return candidate, nil
}
