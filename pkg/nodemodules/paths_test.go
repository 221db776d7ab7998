// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package nodemodules

import (
	"slices"
	"testing"

	"github.com/nextmain/nextmain/pkg/types"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  types.FilesystemPath
		want []types.FilesystemPath
	}{
		{
			name: "project source dir",
			dir:  "/proj/src",
			want: []types.FilesystemPath{"/proj/src/node_modules", "/proj/node_modules", "/node_modules"},
		},
		{
			name: "root",
			dir:  "/",
			want: []types.FilesystemPath{"/node_modules"},
		},
		{
			name: "inside installed package",
			dir:  "/proj/node_modules/somepkg/lib",
			want: []types.FilesystemPath{
				"/proj/node_modules/somepkg/lib/node_modules",
				"/proj/node_modules/somepkg/node_modules",
				"/proj/node_modules",
				"/node_modules",
			},
		},
		{
			name: "unclean input",
			dir:  "/proj/src/../lib/",
			want: []types.FilesystemPath{"/proj/lib/node_modules", "/proj/node_modules", "/node_modules"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Paths(tt.dir); !slices.Equal(got, tt.want) {
				t.Errorf("Paths(%q) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestNewSearchContext(t *testing.T) {
	t.Parallel()

	sc := NewSearchContext("/proj/package.json")
	if sc.ManifestPath != "/proj/package.json" {
		t.Errorf("ManifestPath = %q", sc.ManifestPath)
	}
	want := []types.FilesystemPath{"/proj/node_modules", "/node_modules"}
	if !slices.Equal(sc.Paths, want) {
		t.Errorf("Paths = %v, want %v", sc.Paths, want)
	}
}

func TestIsBuiltin(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"fs":          true,
		"fs/promises": true,
		"path/posix":  true,
		"util/types":  true,
		"node:path":   true,
		"node:test":   true,
		"somepkg":     false,
		"@scope/fs":   false,
		"fsevents":    false,
		"util/":       false,
		"events/x":    false,
		"fs/promise":  false,
	}
	for spec, want := range tests {
		if got := IsBuiltin(spec); got != want {
			t.Errorf("IsBuiltin(%q) = %v, want %v", spec, got, want)
		}
	}
}
