// SPDX-License-Identifier: MPL-2.0

// Package envspec is the host-facing plugin surface for environment
// specification formats. A host package manager registers Handler
// implementations in a Registry and asks it which handler, if any, can load
// a given file. The package ships one handler for TOML environment files.
package envspec
