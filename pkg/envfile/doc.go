// SPDX-License-Identifier: MPL-2.0

// Package envfile provides types and parsing for TOML environment
// specification files.
//
// An environment file describes either a single environment (a flat set of
// dependency tables) or a multi-environment workspace (named dependency
// groups composed into named environments). This package handles document
// shape detection, CUE schema validation, decoding to Go structs, and
// normalization of the heterogeneous dependency declarations into an
// explicit tagged union.
//
// This package uses pkg/cueutil for CUE validation implementation details.
// External consumers should use the exported Parse() and ParseBytes()
// functions; the CUE internals are not part of the public API.
package envfile
