// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/module"
	"github.com/nextmain/nextmain/pkg/nodemodules"
	"github.com/nextmain/nextmain/pkg/types"
)

type (
	// Resolver is the import hook. It is safe for concurrent use as long as
	// the container passed to it is.
	Resolver struct {
		rootPath  types.FilesystemPath
		roots     []types.FilesystemPath
		fs        afero.Fs
		exts      []string
		logger    *log.Logger
		newModule module.Factory
		locator   *Locator

		fallbackOnce sync.Once
		fallback     *module.Container
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// WithLogger sets the logger receiving diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFileSystem sets the file system resolution reads from.
func WithFileSystem(fs afero.Fs) Option {
	return func(r *Resolver) {
		r.fs = fs
	}
}

// WithExtensions overrides the extensions probed by the module system.
func WithExtensions(exts []string) Option {
	return func(r *Resolver) {
		r.exts = exts
	}
}

// WithModuleFactory overrides how modules are constructed on a cache miss.
func WithModuleFactory(f module.Factory) Option {
	return func(r *Resolver) {
		if f != nil {
			r.newModule = f
		}
	}
}

// DefaultLogger returns the stderr logger used when WithLogger is not given.
func DefaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: "nextmain"})
}

// New returns a Resolver over the given search roots. The first root is the
// root path used for imports without an importing module; with no roots the
// working directory is used. Relative roots are made absolute.
func New(roots []string, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		newModule: module.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = DefaultLogger()
	}

	if len(roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine root path: %w", err)
		}
		roots = []string{wd}
	}
	for _, root := range roots {
		p := types.FilesystemPath(root)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("search root: %w", err)
		}
		abs, err := fspath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("search root %s: %w", root, err)
		}
		r.roots = append(r.roots, abs)
	}
	r.rootPath = r.roots[0]

	r.locator = NewLocator(r.fs, r.logger, nodemodules.WithExtensions(r.exts))
	return r, nil
}

// RootPath returns the path imports without an importing module resolve from.
func (r *Resolver) RootPath() types.FilesystemPath { return r.rootPath }

// Roots returns every configured search root, root path first.
func (r *Resolver) Roots() []types.FilesystemPath {
	return append([]types.FilesystemPath(nil), r.roots...)
}

// Locator returns the locator used by r.
func (r *Resolver) Locator() *Locator { return r.locator }

// ResolveModule resolves specifier imported from the module from (nil for
// the root) and returns the module for its jsnext:main file. It returns nil
// for relative specifiers and for any specifier it cannot resolve, after
// logging why, so the caller can try another resolver.
func (r *Resolver) ResolveModule(specifier types.Specifier, from *module.Module, c *module.Container) *module.Module {
	m, err := r.Resolve(specifier, from, c)
	if err != nil {
		r.report(err)
		return nil
	}
	return m
}

// Resolve is ResolveModule with the failure returned instead of logged.
// Relative specifiers yield (nil, nil). Errors from the resolution stages
// are *ResolveError.
func (r *Resolver) Resolve(specifier types.Specifier, from *module.Module, c *module.Container) (*module.Module, error) {
	if !specifier.IsExternal() {
		return nil, nil
	}
	r.logger.Info("External module detected", "specifier", specifier)

	if c == nil {
		c = r.fallbackContainer()
	}

	path, err := r.resolvePath(specifier, from, c)
	if err != nil {
		return nil, err
	}

	m, _ := c.LoadOrCreate(path, func() *module.Module {
		r.logger.Info("External module found at", "path", path)
		return r.newModule(path, specifier, c)
	})
	if m == nil {
		return nil, fmt.Errorf("module factory returned nil for %s", path)
	}
	return m, nil
}

// resolvePath runs the locator from the importing module, or from each root
// in turn when there is none. Later roots are only tried when an earlier one
// has no package context or does not provide the package.
func (r *Resolver) resolvePath(specifier types.Specifier, from *module.Module, c *module.Container) (types.FilesystemPath, error) {
	if from != nil {
		return r.locator.ResolvePath(specifier, from.Path, c.Manifests())
	}

	var first error
	for _, root := range r.roots {
		path, err := r.locator.ResolvePathFrom(specifier, root, c.Manifests())
		if err == nil {
			return path, nil
		}
		if first == nil {
			first = err
		}
		if !errors.Is(err, ErrNoParentPackage) && !errors.Is(err, ErrPackageNotFound) {
			return "", err
		}
		r.logger.Debug("Root did not provide module", "root", root, "specifier", specifier, "err", err)
	}
	return "", first
}

func (r *Resolver) report(err error) {
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		r.logger.Error("Resolution failed", "err", err)
		return
	}
	kv := []any{"specifier", rerr.Specifier}
	if rerr.Path != "" {
		kv = append(kv, "at", rerr.Path)
	}
	if rerr.Cause != nil {
		kv = append(kv, "err", rerr.Cause)
	}
	r.logger.Error(rerr.Message(), kv...)
}

func (r *Resolver) fallbackContainer() *module.Container {
	r.fallbackOnce.Do(func() {
		r.fallback = module.NewContainer()
	})
	return r.fallback
}
