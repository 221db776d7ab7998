// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nextmain/nextmain/pkg/types"
)

// DefaultCacheSize is the number of parsed manifests kept by NewLRUCache
// when no size is configured.
const DefaultCacheSize = 1024

type (
	// Cache maps an absolute manifest path to its parsed content.
	// Implementations must be safe for concurrent use.
	Cache interface {
		Get(path types.FilesystemPath) (*Manifest, bool)
		Add(path types.FilesystemPath, m *Manifest)
		Len() int
	}

	lruCache struct {
		entries *lru.Cache[types.FilesystemPath, *Manifest]
	}
)

// NewLRUCache returns a Cache bounded to size entries. Evicting a manifest
// only costs a re-parse on the next load.
func NewLRUCache(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[types.FilesystemPath, *Manifest](size)
	if err != nil {
		return nil, fmt.Errorf("create manifest cache: %w", err)
	}
	return &lruCache{entries: entries}, nil
}

func (c *lruCache) Get(path types.FilesystemPath) (*Manifest, bool) {
	return c.entries.Get(path)
}

func (c *lruCache) Add(path types.FilesystemPath, m *Manifest) {
	c.entries.Add(path, m)
}

func (c *lruCache) Len() int {
	return c.entries.Len()
}
