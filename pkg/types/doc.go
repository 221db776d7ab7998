// SPDX-License-Identifier: MPL-2.0

// Package types holds the small value types shared across nextmain packages:
// import specifiers, filesystem paths and process exit codes. Each type
// carries its own validation so callers can reject bad input at the boundary.
package types
