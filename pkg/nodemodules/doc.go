// SPDX-License-Identifier: MPL-2.0

// Package nodemodules implements the Node.js package lookup that bare import
// specifiers are resolved with.
//
// [Paths] enumerates the node_modules directories visible from a directory,
// innermost first. A [SearchContext] pins that enumeration to one package
// manifest so lookups for a dependency start from the importing package,
// not from the process working directory. [Finder.ResolveFilename] maps a
// specifier to an installed file within a search context, following Node's
// file, extension, package "main" and index probing order.
package nodemodules
