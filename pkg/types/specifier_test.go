// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestSpecifier_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec         Specifier
		wantRelative bool
		wantExternal bool
	}{
		{"./a", true, false},
		{"../lib/b.js", true, false},
		{".", true, false},
		{".hidden", true, false},
		{"somepkg", false, true},
		{"@scope/pkg", false, true},
		{"somepkg/sub/file.js", false, true},
		{"/abs/file.js", false, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.spec), func(t *testing.T) {
			t.Parallel()
			if got := tt.spec.IsRelative(); got != tt.wantRelative {
				t.Errorf("Specifier(%q).IsRelative() = %v, want %v", tt.spec, got, tt.wantRelative)
			}
			if got := tt.spec.IsExternal(); got != tt.wantExternal {
				t.Errorf("Specifier(%q).IsExternal() = %v, want %v", tt.spec, got, tt.wantExternal)
			}
		})
	}
}

func TestSpecifier_PackageNameAndSubPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    Specifier
		name    string
		subPath string
	}{
		{"somepkg", "somepkg", ""},
		{"somepkg/es/index.js", "somepkg", "es/index.js"},
		{"@scope/pkg", "@scope/pkg", ""},
		{"@scope/pkg/lib/x", "@scope/pkg", "lib/x"},
		{"@scope", "@scope", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.spec), func(t *testing.T) {
			t.Parallel()
			if got := tt.spec.PackageName(); got != tt.name {
				t.Errorf("PackageName() = %q, want %q", got, tt.name)
			}
			if got := tt.spec.SubPath(); got != tt.subPath {
				t.Errorf("SubPath() = %q, want %q", got, tt.subPath)
			}
		})
	}
}

func TestSpecifier_Validate(t *testing.T) {
	t.Parallel()

	if err := Specifier("somepkg").Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	err := Specifier("  ").Validate()
	if !errors.Is(err, ErrInvalidSpecifier) {
		t.Fatalf("Validate() error = %v, want ErrInvalidSpecifier", err)
	}
	var specErr *InvalidSpecifierError
	if !errors.As(err, &specErr) {
		t.Fatalf("error should be *InvalidSpecifierError, got %T", err)
	}
	if specErr.Value != "  " {
		t.Errorf("Value = %q, want %q", specErr.Value, "  ")
	}
}
