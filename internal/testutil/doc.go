// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// The helpers manage process-global state (environment variables) and
// return cleanup functions that restore the previous state.
package testutil
