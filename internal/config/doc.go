// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/nextmain/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/nextmain/config.cue on macOS, %APPDATA%\nextmain\config.cue
// on Windows), falling back to ./config.cue. Values can be overridden with NEXTMAIN_*
// environment variables, which may also come from a .env file in the base directory.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
