// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrAmbiguousShape is the sentinel error wrapped by AmbiguousShapeError.
var ErrAmbiguousShape = errors.New("ambiguous document shape")

// Top-level keys that commit a document to one shape. A document using keys
// from both sets has no well-defined shape and is rejected before any
// schema validation runs.
var (
	singleOnlyKeys = []string{"dependencies", "pypi_dependencies", "platform"}
	multiOnlyKeys  = []string{"groups", "environments"}
)

// AmbiguousShapeError is returned when a document mixes single-environment
// and multi-environment keys at the top level.
type AmbiguousShapeError struct {
	// SingleKeys are the single-environment keys found in the document.
	SingleKeys []string

	// MultiKeys are the multi-environment keys found in the document.
	MultiKeys []string
}

// DetectShape decides whether a raw document is a single-environment or
// multi-environment specification by inspecting which shape-specific
// top-level keys are present. Documents carrying keys from both shapes are
// rejected. A document with no shape-specific keys at all is treated as a
// single-environment specification with no dependencies.
func DetectShape(raw map[string]any) (Shape, error) {
	var single, multi []string
	for key := range raw {
		if slices.Contains(singleOnlyKeys, key) {
			single = append(single, key)
		}
		if slices.Contains(multiOnlyKeys, key) {
			multi = append(multi, key)
		}
	}
	slices.Sort(single)
	slices.Sort(multi)

	if len(single) > 0 && len(multi) > 0 {
		return "", &AmbiguousShapeError{SingleKeys: single, MultiKeys: multi}
	}
	if len(multi) > 0 {
		return ShapeMulti, nil
	}
	return ShapeSingle, nil
}

// Error implements the error interface for AmbiguousShapeError.
func (e *AmbiguousShapeError) Error() string {
	return fmt.Sprintf(
		"document mixes single-environment keys (%s) with multi-environment keys (%s); use either dependencies/platform or groups/environments, not both",
		strings.Join(e.SingleKeys, ", "), strings.Join(e.MultiKeys, ", "))
}

// Unwrap returns ErrAmbiguousShape for errors.Is() compatibility.
func (e *AmbiguousShapeError) Unwrap() error { return ErrAmbiguousShape }
