// SPDX-License-Identifier: MPL-2.0

package envfile

import "fmt"

const (
	// SeverityWarning indicates a non-fatal finding the author should
	// review. Warnings never fail a parse.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a finding that fails the parse.
	SeverityError Severity = "error"
)

// Diagnostic codes emitted during parsing and validation.
const (
	// CodeUnusedGroups marks dependency groups declared but referenced by
	// no environment.
	CodeUnusedGroups = "unused_groups"
	// CodeDependencyOverride marks a dependency declared by more than one
	// group of the same environment, where the later group wins.
	CodeDependencyOverride = "dependency_override"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic represents a structured validation finding that is
	// returned to callers (rather than written to stderr) for consistent
	// rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "unused_groups").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// String renders the diagnostic as "severity: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Warnings filters a diagnostic list down to warning severity.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}
