// SPDX-License-Identifier: MPL-2.0

package module

import (
	"cmp"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/types"
)

type (
	// Container holds the per-run caches. It is safe for concurrent use.
	Container struct {
		mu        sync.RWMutex
		modules   map[types.FilesystemPath]*Module
		inflight  singleflight.Group
		manifests manifest.Cache
	}

	// ContainerOption configures a Container.
	ContainerOption func(*Container)
)

// WithManifestCache sets the manifest cache shared by resolutions in this
// container.
func WithManifestCache(cache manifest.Cache) ContainerOption {
	return func(c *Container) {
		c.manifests = cache
	}
}

// NewContainer creates an empty container. Without WithManifestCache an
// LRU cache of manifest.DefaultCacheSize entries is used.
func NewContainer(opts ...ContainerOption) *Container {
	c := &Container{
		modules: make(map[types.FilesystemPath]*Module),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.manifests == nil {
		// NewLRUCache only fails for invalid sizes; the default is valid.
		c.manifests, _ = manifest.NewLRUCache(manifest.DefaultCacheSize)
	}
	return c
}

// GetCachedModule returns the module registered for path, if any.
func (c *Container) GetCachedModule(path types.FilesystemPath) (*Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[path]
	return m, ok
}

// Register stores m under m.Path unless a module is already registered
// there, and returns whichever module the container holds for that path.
func (c *Container) Register(m *Module) *Module {
	return c.register(m.Path, m)
}

func (c *Container) register(path types.FilesystemPath, m *Module) *Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.modules[path]; ok {
		return existing
	}
	m.container = c
	c.modules[path] = m
	return m
}

// LoadOrCreate returns the module registered for path, calling create on a
// miss. Concurrent callers missing on the same path share a single create
// call, so create runs at most once per path. The boolean reports whether
// the module was already cached. The created module is registered under
// path even when its own Path differs.
func (c *Container) LoadOrCreate(path types.FilesystemPath, create func() *Module) (*Module, bool) {
	if m, ok := c.GetCachedModule(path); ok {
		return m, true
	}

	v, _, _ := c.inflight.Do(string(path), func() (any, error) {
		// Re-check: a previous flight may have registered path between our
		// read above and joining this group.
		if m, ok := c.GetCachedModule(path); ok {
			return m, nil
		}
		m := create()
		if m == nil {
			return (*Module)(nil), nil
		}
		return c.register(path, m), nil
	})
	return v.(*Module), false
}

// Manifests returns the manifest cache for this run.
func (c *Container) Manifests() manifest.Cache { return c.manifests }

// Len returns the number of registered paths.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}

// Modules returns the registered modules sorted by path, each once.
func (c *Container) Modules() []*Module {
	c.mu.RLock()
	seen := make(map[*Module]struct{}, len(c.modules))
	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Module) int { return cmp.Compare(a.Path, b.Path) })
	return out
}
