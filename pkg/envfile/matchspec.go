// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMatchSpec is the sentinel error wrapped by InvalidMatchSpecError.
var ErrInvalidMatchSpec = errors.New("invalid match specification")

type (
	// MatchSpec is a structured constraint identifying a package name plus
	// optional version, build, and channel qualifiers. Both the plain
	// version-string and structured dependency forms normalize into one of
	// these.
	MatchSpec struct {
		// Name is the package the constraint applies to.
		Name PackageName

		// Version is a version constraint string ("" matches any version).
		Version string

		// Build is a build-string constraint ("" matches any build).
		Build string

		// Channel restricts resolution to one channel ("" means any
		// configured channel).
		Channel ChannelName
	}

	// InvalidMatchSpecError is returned when a MatchSpec has invalid
	// qualifier fields.
	InvalidMatchSpecError struct {
		Name        PackageName
		FieldErrors []error
	}
)

// String renders the spec in channel::name version build form, omitting
// empty qualifiers.
func (m MatchSpec) String() string {
	var sb strings.Builder
	if m.Channel != "" {
		sb.WriteString(string(m.Channel))
		sb.WriteString("::")
	}
	sb.WriteString(string(m.Name))
	if m.Version != "" {
		sb.WriteString(" ")
		sb.WriteString(m.Version)
	}
	if m.Build != "" {
		sb.WriteString(" ")
		sb.WriteString(m.Build)
	}
	return sb.String()
}

// IsValid returns whether the MatchSpec has a valid name and well-formed
// qualifier fields.
func (m MatchSpec) IsValid() (bool, []error) {
	var errs []error
	if ok, nameErrs := m.Name.IsValid(); !ok {
		errs = append(errs, nameErrs...)
	}
	if m.Version != "" {
		if err := ValidateVersionConstraint(m.Version); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Build != "" {
		if err := ValidateBuildConstraint(m.Build); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Channel != "" {
		if ok, chErrs := m.Channel.IsValid(); !ok {
			errs = append(errs, chErrs...)
		}
	}
	return len(errs) == 0, errs
}

// Error implements the error interface for InvalidMatchSpecError.
func (e *InvalidMatchSpecError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid match specification for %q: %s", e.Name, strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidMatchSpec for errors.Is() compatibility.
func (e *InvalidMatchSpecError) Unwrap() error { return ErrInvalidMatchSpec }
