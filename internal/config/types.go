// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nextmain/nextmain/pkg/manifest"
	"github.com/nextmain/nextmain/pkg/nodemodules"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultDebounce is the quiet period before the watcher re-resolves.
	DefaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidSearchRoot is returned when a SearchRoot value is blank.
	ErrInvalidSearchRoot = errors.New("invalid search root")
	// ErrInvalidExtension is returned when an Extension does not start with a dot.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// SearchRoot is a directory that anchors resolution when an import has
	// no importing module. Relative roots are made absolute by the resolver.
	SearchRoot string

	// Extension is a file suffix probed by the module system, including the dot.
	Extension string

	// InvalidWatchConfigError is returned when a WatchConfig has invalid fields.
	// It wraps ErrInvalidWatchConfig for errors.Is() compatibility.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Roots lists the search roots; the first is the resolver's root path.
		Roots []SearchRoot `json:"roots" mapstructure:"roots"`
		// ManifestCacheSize bounds the parsed package.json cache of a run.
		ManifestCacheSize int `json:"manifest_cache_size" mapstructure:"manifest_cache_size"`
		// Extensions overrides the suffixes probed by the module system.
		Extensions []Extension `json:"extensions" mapstructure:"extensions"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Watch configures `nextmain watch`
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures the file watcher.
	WatchConfig struct {
		// Patterns are doublestar globs, relative to each watched directory,
		// that trigger re-resolution.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Ignore are doublestar globs excluded from watching.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
		// Debounce is the quiet period after the last event.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}
)

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// GlamourStyle maps the scheme onto a glamour standard style name.
func (cs ColorScheme) GlamourStyle() string {
	switch cs {
	case ColorSchemeDark, ColorSchemeLight:
		return string(cs)
	default:
		return "auto"
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the SearchRoot.
func (r SearchRoot) String() string { return string(r) }

// IsValid returns whether the root is non-blank.
func (r SearchRoot) IsValid() (bool, []error) {
	if strings.TrimSpace(string(r)) == "" {
		return false, []error{fmt.Errorf("%w: %q must be non-empty", ErrInvalidSearchRoot, r)}
	}
	return true, nil
}

// String returns the string representation of the Extension.
func (e Extension) String() string { return string(e) }

// IsValid returns whether the extension is a dot followed by at least one character.
func (e Extension) IsValid() (bool, []error) {
	if len(e) < 2 || e[0] != '.' || strings.ContainsAny(string(e), `/\`) {
		return false, []error{fmt.Errorf("%w: %q must look like \".js\"", ErrInvalidExtension, e)}
	}
	return true, nil
}

// IsValid returns whether the WatchConfig has valid fields.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce %s must not be negative", c.Debounce))
	}
	for _, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, errors.New("watch pattern must be non-empty"))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWatchConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWatchConfig and the field errors.
func (e *InvalidWatchConfigError) Unwrap() []error {
	return append([]error{ErrInvalidWatchConfig}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields.
// It delegates to the validation of every typed field and sub-config.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, r := range c.Roots {
		if valid, fieldErrs := r.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, ext := range c.Extensions {
		if valid, fieldErrs := ext.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.ManifestCacheSize < 0 {
		errs = append(errs, fmt.Errorf("manifest_cache_size %d must not be negative", c.ManifestCacheSize))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig and the field errors, so errors.Is also
// matches the sentinel of any invalid field.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// RootStrings returns the roots as plain strings.
func (c *Config) RootStrings() []string {
	out := make([]string, len(c.Roots))
	for i, r := range c.Roots {
		out[i] = string(r)
	}
	return out
}

// ExtensionStrings returns the configured extensions as plain strings.
func (c *Config) ExtensionStrings() []string {
	out := make([]string, len(c.Extensions))
	for i, e := range c.Extensions {
		out[i] = string(e)
	}
	return out
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	exts := make([]Extension, len(nodemodules.DefaultExtensions))
	for i, e := range nodemodules.DefaultExtensions {
		exts[i] = Extension(e)
	}
	return &Config{
		Roots:             []SearchRoot{},
		ManifestCacheSize: manifest.DefaultCacheSize,
		Extensions:        exts,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Watch: WatchConfig{
			Patterns: []string{"**/" + manifest.FileName, "**/*.{js,mjs,json}"},
			Ignore:   []string{"**/.git/**"},
			Debounce: DefaultDebounce,
		},
	}
}
