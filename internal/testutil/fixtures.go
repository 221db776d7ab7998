// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// MemFS returns an in-memory file system holding files, keyed by path.
func MemFS(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, files)
	return fs
}

// WriteFiles writes each path/content pair into fs, creating parents.
func WriteFiles(t testing.TB, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// WriteManifest writes fields as dir/package.json and returns its path.
func WriteManifest(t testing.TB, fs afero.Fs, dir string, fields map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode manifest for %s: %v", dir, err)
	}
	path := filepath.Join(dir, "package.json")
	WriteFiles(t, fs, map[string]string{path: string(data)})
	return path
}

// Package is a shorthand for an installed package: a manifest declaring
// jsnext:main (omitted when empty) plus the given files, all under dir.
type Package struct {
	Dir        string
	Name       string
	JSNextMain string
	Files      map[string]string
}

// Install writes p into fs.
func (p Package) Install(t testing.TB, fs afero.Fs) {
	t.Helper()
	fields := map[string]any{"name": p.Name}
	if p.JSNextMain != "" {
		fields["jsnext:main"] = p.JSNextMain
	}
	WriteManifest(t, fs, p.Dir, fields)
	files := make(map[string]string, len(p.Files))
	for rel, content := range p.Files {
		files[filepath.Join(p.Dir, rel)] = content
	}
	WriteFiles(t, fs, files)
}
