// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Both package manifests (JSON, which CUE reads natively) and the nextmain
// configuration file go through the same 3-step flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecodeString[Manifest](
//	    schema,
//	    packageJSON,
//	    "#Manifest",
//	    cueutil.WithFilename("/proj/node_modules/somepkg/package.json"),
//	)
//	if err != nil {
//	    return nil, err // error carries the JSON path of the bad field
//	}
//	return result.Value, nil
package cueutil
