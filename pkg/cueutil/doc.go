// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE validation utilities.
//
// The package consolidates the schema-unification flow used across the
// envfile and config packages:
//
//  1. Compile the embedded schema
//  2. Build the document value and unify it with the schema
//  3. Validate and decode to a Go struct
//
// Documents arrive two ways: as CUE source bytes (ParseAndDecode) or as
// values already decoded from another surface syntax such as TOML
// (EncodeAndDecode).
//
// # Usage
//
//	//go:embed envfile_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.EncodeAndDecode[rawDocument](
//	    schemaBytes,
//	    tree,
//	    "#SingleEnvironment",
//	    cueutil.WithFilename("denv.toml"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
