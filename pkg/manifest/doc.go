// SPDX-License-Identifier: MPL-2.0

// Package manifest reads package manifests (package.json files).
//
// Only one field carries behavior for nextmain: "jsnext:main", the
// alternate source entry point a package declares next to its default
// "main". Manifests are decoded through CUE (JSON is valid CUE) against an
// open schema that types that single field, and parsed manifests are kept
// in a [Cache] so the directory walk and the entry-point lookup never parse
// the same file twice.
package manifest
