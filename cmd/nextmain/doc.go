// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for nextmain.
//
// The root command wires configuration, logging and an App composition root
// into the resolve, watch and config subcommands. Commands never call
// os.Exit; a non-zero status travels as *ExitError to Execute.
package cmd
