// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCUEPath is the sentinel error wrapped by CUEPath validation
// failures.
var ErrInvalidCUEPath = errors.New("invalid CUE path")

// CUEPath addresses a definition or field inside a compiled schema, in the
// dotted notation cue.ParsePath understands (e.g. "#SingleEnvironment" or
// "about.urls").
type CUEPath string

// String returns the string representation of the CUEPath.
func (p CUEPath) String() string { return string(p) }

// Validate checks that the path is non-empty and not whitespace-only.
func (p CUEPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidCUEPath)
	}
	return nil
}
