// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nextmain/nextmain/pkg/cueutil"
	"github.com/nextmain/nextmain/pkg/types"
)

const (
	// FileName is the manifest file name looked up beside node_modules.
	FileName = "package.json"

	// EntryField is the manifest field naming the alternate entry point.
	EntryField = "jsnext:main"
)

var (
	//go:embed manifest_schema.cue
	manifestSchema string

	// ErrNoEntryPoint is returned when a manifest does not declare EntryField.
	ErrNoEntryPoint = errors.New("manifest has no " + EntryField + " field")
)

type (
	// Manifest is the decoded subset of a package.json.
	// Name, Version and Main are informational only; see MainPath.
	Manifest struct {
		Name       any    `json:"name"`
		Version    any    `json:"version"`
		Main       any    `json:"main"`
		JSNextMain string `json:"jsnext:main"`

		// Path is the absolute path of the manifest file.
		Path types.FilesystemPath `json:"-"`
	}
)

// Parse decodes package.json content located at path. Duplicate keys keep
// their last value, as JSON.parse does.
func Parse(data []byte, path types.FilesystemPath) (*Manifest, error) {
	normalized, err := normalizeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	result, err := cueutil.ParseAndDecodeString[Manifest](
		manifestSchema,
		normalized,
		"#Manifest",
		cueutil.WithFilename(string(path)),
	)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m := result.Value
	m.Path = path
	return m, nil
}

// normalizeJSON re-encodes a single JSON document. CUE unifies repeated
// keys instead of overwriting them, so duplicates are collapsed here first.
func normalizeJSON(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return json.Marshal(doc)
}

// EntryPoint returns the declared jsnext:main value. A missing or blank
// field yields ErrNoEntryPoint.
func (m *Manifest) EntryPoint() (string, error) {
	if m == nil || strings.TrimSpace(m.JSNextMain) == "" {
		return "", ErrNoEntryPoint
	}
	return m.JSNextMain, nil
}

// MainPath returns the "main" field when it is a non-empty string. The
// module system uses it to pick a package's default file; it is never
// used as a fallback for EntryPoint.
func (m *Manifest) MainPath() string {
	if m == nil {
		return ""
	}
	s, _ := m.Main.(string)
	return strings.TrimSpace(s)
}

// PackageName returns the "name" field when it is a string.
func (m *Manifest) PackageName() string {
	if m == nil {
		return ""
	}
	s, _ := m.Name.(string)
	return s
}
