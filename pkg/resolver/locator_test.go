// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package resolver

import (
	"errors"
	"testing"

	"github.com/nextmain/nextmain/internal/testutil"
	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/nodemodules"
	"github.com/nextmain/nextmain/pkg/types"
)

func newCache(t *testing.T) manifest.Cache {
	t.Helper()
	c, err := manifest.NewLRUCache(16)
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	return c
}

func TestLocator_ResolvePackage(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFS(t, map[string]string{
		"/proj/package.json":                           `{"name":"proj"}`,
		"/proj/src/deep/a.js":                          "",
		"/proj/packages/app/package.json":              `{"name":"app"}`,
		"/proj/node_modules/somepkg/package.json":      `{"name":"somepkg"}`,
		"/proj/node_modules/somepkg/lib/x.js":          "",
		"/proj/node_modules/@scope/pkg/package.json":   `{"name":"@scope/pkg"}`,
		"/proj/node_modules/@scope/pkg/dist/entry.mjs": "",
		"/broken/package.json":                         `{not json`,
	})
	l := NewLocator(fs, nil)

	tests := []struct {
		name   string
		path   types.FilesystemPath
		want   types.FilesystemPath
		wantOK bool
	}{
		{"file in project", "/proj/src/deep/a.js", "/proj/package.json", true},
		{"nested package wins", "/proj/packages/app/src/x.js", "/proj/packages/app/package.json", true},
		{"installed package", "/proj/node_modules/somepkg/lib/x.js", "/proj/node_modules/somepkg/package.json", true},
		{"scoped package", "/proj/node_modules/@scope/pkg/dist/entry.mjs", "/proj/node_modules/@scope/pkg/package.json", true},
		{"unparseable manifest still found", "/broken/a.js", "/broken/package.json", true},
		{"no manifest", "/elsewhere/a.js", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := l.ResolvePackage(tt.path, newCache(t))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolvePackage(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLocator_ResolvePackageFillsCache(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFS(t, map[string]string{
		"/proj/package.json":   `{"name":"proj","jsnext:main":"src/index.js"}`,
		"/broken/package.json": `{not json`,
	})
	l := NewLocator(fs, nil)
	cache := newCache(t)

	if _, ok := l.ResolvePackage("/proj/src/a.js", cache); !ok {
		t.Fatal("ResolvePackage() found nothing")
	}
	m, ok := cache.Get("/proj/package.json")
	if !ok {
		t.Fatal("manifest was not cached")
	}
	if m.JSNextMain != "src/index.js" {
		t.Errorf("cached JSNextMain = %q", m.JSNextMain)
	}

	l.ResolvePackage("/broken/a.js", cache)
	if _, ok := cache.Get("/broken/package.json"); ok {
		t.Error("unparseable manifest was cached")
	}
}

func projectFixture(t *testing.T) *Locator {
	t.Helper()
	fs := testutil.MemFS(t, map[string]string{
		"/proj/package.json": `{"name":"proj"}`,
		"/proj/src/a.js":     "",
		"/lonely/src/a.js":   "",
		"/proj/node_modules/missingfield/package.json": `{"name":"missingfield","main":"index.js"}`,
		"/proj/node_modules/missingfield/index.js":     "",
		"/proj/node_modules/wrongtype/package.json":    `{"name":"wrongtype","jsnext:main":42}`,
		"/proj/node_modules/wrongtype/index.js":        "",
		"/proj/node_modules/blank/package.json":        `{"name":"blank","jsnext:main":"  "}`,
		"/proj/node_modules/blank/index.js":            "",
		"/proj/node_modules/stale/package.json":        `{"name":"stale","jsnext:main":"es/index.js"}`,
		"/proj/node_modules/stale/index.js":            "",
	})
	testutil.Package{
		Dir: "/proj/node_modules/somepkg", Name: "somepkg", JSNextMain: "es/index.js",
		Files: map[string]string{"index.js": "", "es/index.js": "", "lib/util.js": ""},
	}.Install(t, fs)
	testutil.Package{
		Dir: "/proj/node_modules/@scope/pkg", Name: "@scope/pkg", JSNextMain: "./module/main.js",
		Files: map[string]string{"index.js": "", "module/main.js": ""},
	}.Install(t, fs)
	return NewLocator(fs, nil)
}

func TestLocator_ResolvePath(t *testing.T) {
	t.Parallel()

	l := projectFixture(t)

	tests := []struct {
		name      string
		specifier types.Specifier
		from      types.FilesystemPath
		want      types.FilesystemPath
		wantStage Stage
		wantErrs  []error
	}{
		{
			name: "jsnext:main entry", specifier: "somepkg", from: "/proj/src/a.js",
			want: "/proj/node_modules/somepkg/es/index.js",
		},
		{
			name: "sub-path resolves to package entry", specifier: "somepkg/lib/util", from: "/proj/src/a.js",
			want: "/proj/node_modules/somepkg/es/index.js",
		},
		{
			name: "scoped package", specifier: "@scope/pkg", from: "/proj/src/a.js",
			want: "/proj/node_modules/@scope/pkg/module/main.js",
		},
		{
			name: "no parent manifest", specifier: "somepkg", from: "/lonely/src/a.js",
			wantStage: StageParentPackage, wantErrs: []error{ErrNoParentPackage},
		},
		{
			name: "not installed", specifier: "nope", from: "/proj/src/a.js",
			wantStage: StagePackageLookup, wantErrs: []error{ErrPackageNotFound, nodemodules.ErrModuleNotFound},
		},
		{
			name: "core module", specifier: "fs", from: "/proj/src/a.js",
			wantStage: StagePackageLookup, wantErrs: []error{ErrPackageNotFound, nodemodules.ErrBuiltinModule},
		},
		{
			name: "field missing", specifier: "missingfield", from: "/proj/src/a.js",
			wantStage: StageEntryPoint, wantErrs: []error{ErrMissingEntryPoint, manifest.ErrNoEntryPoint},
		},
		{
			name: "field not a string", specifier: "wrongtype", from: "/proj/src/a.js",
			wantStage: StageEntryPoint, wantErrs: []error{ErrMissingEntryPoint},
		},
		{
			name: "field blank", specifier: "blank", from: "/proj/src/a.js",
			wantStage: StageEntryPoint, wantErrs: []error{ErrMissingEntryPoint, manifest.ErrNoEntryPoint},
		},
		{
			name: "stale entry", specifier: "stale", from: "/proj/src/a.js",
			wantStage: StageCandidate, wantErrs: []error{ErrCandidateNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := l.ResolvePath(tt.specifier, tt.from, newCache(t))
			if tt.wantStage == 0 {
				if err != nil {
					t.Fatalf("ResolvePath() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("ResolvePath() = %q, want %q", got, tt.want)
				}
				return
			}

			var rerr *ResolveError
			if !errors.As(err, &rerr) {
				t.Fatalf("ResolvePath() error = %v, want *ResolveError", err)
			}
			if rerr.Stage != tt.wantStage {
				t.Errorf("Stage = %v, want %v", rerr.Stage, tt.wantStage)
			}
			if rerr.Specifier != tt.specifier {
				t.Errorf("Specifier = %q, want %q", rerr.Specifier, tt.specifier)
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("errors.Is(err, %v) = false; err = %v", want, err)
				}
			}
			if got != "" {
				t.Errorf("path = %q on failure, want empty", got)
			}
		})
	}
}

func TestLocator_StaleEntryReportsCandidate(t *testing.T) {
	t.Parallel()

	l := projectFixture(t)
	_, err := l.ResolvePath("stale", "/proj/src/a.js", newCache(t))

	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *ResolveError", err)
	}
	if rerr.Path != "/proj/node_modules/stale/es/index.js" {
		t.Errorf("Path = %q, want the missing candidate", rerr.Path)
	}
	if errors.Is(err, ErrMissingEntryPoint) {
		t.Error("stale entry must be distinguishable from a missing field")
	}
}

func TestLocator_AncestorPrecedence(t *testing.T) {
	t.Parallel()

	fs := testutil.MemFS(t, map[string]string{
		"/proj/package.json":              `{"name":"proj"}`,
		"/proj/packages/app/package.json": `{"name":"app"}`,
	})
	testutil.Package{
		Dir: "/proj/node_modules/somepkg", Name: "somepkg", JSNextMain: "v1.js",
		Files: map[string]string{"index.js": "", "v1.js": ""},
	}.Install(t, fs)
	testutil.Package{
		Dir: "/proj/packages/app/node_modules/somepkg", Name: "somepkg", JSNextMain: "v2.js",
		Files: map[string]string{"index.js": "", "v2.js": ""},
	}.Install(t, fs)
	l := NewLocator(fs, nil)

	got, err := l.ResolvePath("somepkg", "/proj/packages/app/src/x.js", newCache(t))
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != "/proj/packages/app/node_modules/somepkg/v2.js" {
		t.Errorf("nested importer got %q, want the nearest installation", got)
	}

	got, err = l.ResolvePath("somepkg", "/proj/src/y.js", newCache(t))
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if got != "/proj/node_modules/somepkg/v1.js" {
		t.Errorf("root importer got %q, want the outer installation", got)
	}
}

func TestLocator_ResolvePathFrom(t *testing.T) {
	t.Parallel()

	l := projectFixture(t)
	got, err := l.ResolvePathFrom("somepkg", "/proj", newCache(t))
	if err != nil {
		t.Fatalf("ResolvePathFrom() error = %v", err)
	}
	if got != "/proj/node_modules/somepkg/es/index.js" {
		t.Errorf("ResolvePathFrom() = %q", got)
	}
}
