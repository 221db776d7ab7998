// SPDX-License-Identifier: MPL-2.0

// Package module defines the module and container types a transpiler hands
// to the resolver.
//
// A [Container] lives for one transpilation run. It owns the resolution
// cache (resolved path to [*Module]) and the manifest cache shared by every
// resolution in the run. For a given path the container constructs and
// returns at most one Module; every later lookup returns the same pointer.
package module
