// SPDX-License-Identifier: MPL-2.0

// Package resolver resolves bare import specifiers to the "jsnext:main"
// entry point of the installed package they name.
//
// # Resolution
//
// [Resolver.ResolveModule] is the hook a transpiler calls for every import
// it cannot resolve itself. Relative specifiers ("./x", "../y") are declined
// immediately. For anything else the [Locator]:
//
//  1. finds the package.json nearest to the importing file, which fixes the
//     node_modules search context,
//  2. maps the specifier to an installed file within that context,
//  3. finds the package.json nearest to that file (the target package),
//  4. reads its "jsnext:main" field,
//  5. resolves the field against the manifest's directory,
//  6. checks the resulting file exists.
//
// A failure at any step is reported as a [*ResolveError] naming the stage;
// ResolveModule logs it and returns nil so other resolvers can be tried.
//
// # Identity
//
// Modules are cached in the [module.Container] by resolved path. Two imports
// resolving to one file, from any importer, get the same *module.Module.
package resolver
