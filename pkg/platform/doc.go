// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// This package centralizes the operating system name constants used for
// runtime.GOOS comparisons, such as resolving the per-OS configuration
// directory.
package platform
