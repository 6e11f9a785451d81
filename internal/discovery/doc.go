// SPDX-License-Identifier: MPL-2.0

// Package discovery locates environment files on disk.
//
// A Locator probes a list of configured file names in the working directory
// and, when enabled, walks parent directories up to the filesystem root.
// An explicit path (from a --file flag) short-circuits the search. Every
// returned Location records where the file came from so the CLI can report
// which file it is acting on.
package discovery
