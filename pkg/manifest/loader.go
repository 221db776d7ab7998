// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/nextmain/nextmain/pkg/types"
)

// Loader reads manifests from a file system through a Cache.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader reading from fs. A nil fs means the OS file system.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Exists reports whether a regular file exists at path.
func (l *Loader) Exists(path types.FilesystemPath) bool {
	info, err := l.fs.Stat(string(path))
	return err == nil && !info.IsDir()
}

// Load returns the parsed manifest at path, consulting cache first and
// filling it on a miss. Parse failures are not cached.
func (l *Loader) Load(path types.FilesystemPath, cache Cache) (*Manifest, error) {
	if cache != nil {
		if m, ok := cache.Get(path); ok {
			return m, nil
		}
	}

	data, err := afero.ReadFile(l.fs, string(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.Add(path, m)
	}
	return m, nil
}
