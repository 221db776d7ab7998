// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpecifier is the sentinel error wrapped by InvalidSpecifierError.
var ErrInvalidSpecifier = errors.New("invalid import specifier")

type (
	// Specifier is the string an import statement names, e.g. "lodash",
	// "@scope/pkg/sub/file" or "./local". A specifier whose first character
	// is '.' is relative; anything else is external.
	Specifier string

	// InvalidSpecifierError is returned when a Specifier is empty or
	// whitespace-only.
	InvalidSpecifierError struct {
		Value Specifier
	}
)

// String returns the raw specifier text.
func (s Specifier) String() string { return string(s) }

// IsRelative reports whether the specifier starts with a path-relative
// marker. Relative specifiers are never resolved as packages.
func (s Specifier) IsRelative() bool {
	return strings.HasPrefix(string(s), ".")
}

// IsExternal reports whether the specifier names a package.
func (s Specifier) IsExternal() bool {
	return s != "" && !s.IsRelative()
}

// PackageName returns the package portion of an external specifier:
// "@scope/name" for scoped packages, the first path segment otherwise.
func (s Specifier) PackageName() string {
	name, _ := s.split()
	return name
}

// SubPath returns the portion after the package name, without a leading
// slash. It is empty when the specifier names the package root.
func (s Specifier) SubPath() string {
	_, sub := s.split()
	return sub
}

func (s Specifier) split() (name, sub string) {
	raw := string(s)
	if strings.HasPrefix(raw, "@") {
		scope, rest, ok := strings.Cut(raw, "/")
		if !ok {
			return raw, ""
		}
		pkg, sub, _ := strings.Cut(rest, "/")
		return scope + "/" + pkg, sub
	}
	name, sub, _ = strings.Cut(raw, "/")
	return name, sub
}

// Validate returns an error if the specifier is empty or whitespace-only.
func (s Specifier) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return &InvalidSpecifierError{Value: s}
	}
	return nil
}

// Error implements the error interface for InvalidSpecifierError.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid import specifier %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSpecifier for errors.Is() compatibility.
func (e *InvalidSpecifierError) Unwrap() error { return ErrInvalidSpecifier }
