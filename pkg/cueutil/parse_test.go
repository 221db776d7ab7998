// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Pkg: {
	name?: string
	"jsnext:main"?: string
	...
}
`

type testPkg struct {
	Name       string `json:"name"`
	JSNextMain string `json:"jsnext:main"`
}

func TestParseAndDecodeString_JSONInput(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "somepkg", "jsnext:main": "es/index.js", "scripts": {"test": "tap"}}`)
	result, err := ParseAndDecodeString[testPkg](testSchema, data, "#Pkg", WithFilename("package.json"))
	if err != nil {
		t.Fatalf("ParseAndDecodeString() error = %v", err)
	}
	if result.Value.Name != "somepkg" {
		t.Errorf("Name = %q, want %q", result.Value.Name, "somepkg")
	}
	if result.Value.JSNextMain != "es/index.js" {
		t.Errorf("JSNextMain = %q, want %q", result.Value.JSNextMain, "es/index.js")
	}
}

func TestParseAndDecodeString_TypeMismatch(t *testing.T) {
	t.Parallel()

	data := []byte(`{"jsnext:main": 42}`)
	_, err := ParseAndDecodeString[testPkg](testSchema, data, "#Pkg", WithFilename("package.json"))
	if err == nil {
		t.Fatal("ParseAndDecodeString() error = nil, want type mismatch")
	}
	if !strings.Contains(err.Error(), "package.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestParseAndDecodeString_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[testPkg](testSchema, []byte(`{"name": `), "#Pkg")
	if err == nil {
		t.Fatal("ParseAndDecodeString() error = nil, want syntax error")
	}
	if !strings.Contains(err.Error(), "<input>") {
		t.Errorf("error should use the default filename, got: %v", err)
	}
}

func TestParseAndDecodeString_MaxFileSize(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[testPkg](testSchema, []byte(`{"name": "x"}`), "#Pkg", WithMaxFileSize(4))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("ParseAndDecodeString() error = %v, want size error", err)
	}
}

func TestParseAndDecodeString_NonConcrete(t *testing.T) {
	t.Parallel()

	schema := `#Cfg: { roots?: [...string] }`
	result, err := ParseAndDecodeString[struct {
		Roots []string `json:"roots"`
	}](schema, []byte(`roots: ["/proj"]`), "#Cfg", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecodeString() error = %v", err)
	}
	if len(result.Value.Roots) != 1 || result.Value.Roots[0] != "/proj" {
		t.Errorf("Roots = %v, want [/proj]", result.Value.Roots)
	}
}
