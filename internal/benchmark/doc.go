// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for the resolution hot paths, used
// for PGO profile generation:
//   - package.json decoding through the CUE schema
//   - node_modules path enumeration
//   - cold and warm ResolvePath on a real file system
//   - ResolveModule container hits, serially and in parallel
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -bench . -cpuprofile default.pgo
package benchmark
