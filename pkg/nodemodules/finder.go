// SPDX-License-Identifier: MPL-2.0

package nodemodules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/types"
)

var (
	// DefaultExtensions are the suffixes probed after the exact path, in order.
	DefaultExtensions = []string{".js", ".json", ".node"}

	// ErrModuleNotFound is the sentinel wrapped by NotFoundError.
	ErrModuleNotFound = errors.New("cannot find module")

	// ErrBuiltinModule is returned for Node core module specifiers.
	ErrBuiltinModule = errors.New("core module has no installed file")
)

type (
	// Finder maps bare specifiers to installed files.
	Finder struct {
		fs         afero.Fs
		manifests  *manifest.Loader
		extensions []string
	}

	// FinderOption configures a Finder.
	FinderOption func(*Finder)

	// NotFoundError reports a specifier that no search directory provides.
	NotFoundError struct {
		Specifier types.Specifier
		Searched  []types.FilesystemPath
	}
)

// WithExtensions overrides the probed file extensions.
func WithExtensions(exts []string) FinderOption {
	return func(f *Finder) {
		if len(exts) > 0 {
			f.extensions = append([]string(nil), exts...)
		}
	}
}

// NewFinder returns a Finder reading from fs. A nil fs means the OS file system.
func NewFinder(fs afero.Fs, opts ...FinderOption) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f := &Finder{
		fs:         fs,
		manifests:  manifest.NewLoader(fs),
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find module %q (searched %d node_modules directories)", e.Specifier, len(e.Searched))
}

// Unwrap returns ErrModuleNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// ResolveFilename maps specifier to an installed file, searching only the
// node_modules directories of sc. Absolute specifiers are probed directly.
// cache is consulted when a package directory's "main" must be read; it
// may be nil.
func (f *Finder) ResolveFilename(specifier types.Specifier, sc SearchContext, cache manifest.Cache) (types.FilesystemPath, error) {
	if err := specifier.Validate(); err != nil {
		return "", err
	}
	raw := string(specifier)
	if IsBuiltin(raw) {
		return "", fmt.Errorf("%q: %w", raw, ErrBuiltinModule)
	}

	dirOnly := strings.HasSuffix(raw, "/")

	if types.FilesystemPath(raw).IsAbs() {
		if p, ok := f.tryTarget(fspath.Clean(types.FilesystemPath(raw)), dirOnly, cache); ok {
			return p, nil
		}
		return "", &NotFoundError{Specifier: specifier}
	}

	for _, dir := range sc.Paths {
		if p, ok := f.tryTarget(fspath.JoinStr(dir, raw), dirOnly, cache); ok {
			return p, nil
		}
	}
	return "", &NotFoundError{Specifier: specifier, Searched: sc.Paths}
}

// tryTarget probes base as a file, as base plus each extension, then as a
// package directory. A trailing-slash request skips the file probes.
func (f *Finder) tryTarget(base types.FilesystemPath, dirOnly bool, cache manifest.Cache) (types.FilesystemPath, bool) {
	if !dirOnly {
		if f.isFile(base) {
			return base, true
		}
		if p, ok := f.tryExtensions(base); ok {
			return p, true
		}
	}
	if f.isDir(base) {
		return f.tryPackage(base, cache)
	}
	return "", false
}

// tryPackage resolves a package directory through its manifest "main",
// falling back to index files.
func (f *Finder) tryPackage(dir types.FilesystemPath, cache manifest.Cache) (types.FilesystemPath, bool) {
	manifestPath := fspath.JoinStr(dir, manifest.FileName)
	if f.isFile(manifestPath) {
		if m, err := f.manifests.Load(manifestPath, cache); err == nil {
			if main := m.MainPath(); main != "" {
				target := fspath.Resolve(dir, main)
				if f.isFile(target) {
					return target, true
				}
				if p, ok := f.tryExtensions(target); ok {
					return p, true
				}
				if p, ok := f.tryExtensions(fspath.JoinStr(target, "index")); ok {
					return p, true
				}
			}
		}
	}
	return f.tryExtensions(fspath.JoinStr(dir, "index"))
}

func (f *Finder) tryExtensions(base types.FilesystemPath) (types.FilesystemPath, bool) {
	for _, ext := range f.extensions {
		candidate := types.FilesystemPath(string(base) + ext)
		if f.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (f *Finder) isFile(p types.FilesystemPath) bool {
	info, err := f.fs.Stat(string(p))
	return err == nil && !info.IsDir()
}

func (f *Finder) isDir(p types.FilesystemPath) bool {
	info, err := f.fs.Stat(string(p))
	return err == nil && info.IsDir()
}
