// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatTOML exports the descriptor as TOML.
	FormatTOML ExportFormat = "toml"

	// FormatJSON exports the descriptor as indented JSON.
	FormatJSON ExportFormat = "json"
)

// ErrInvalidExportFormat is the sentinel error wrapped by
// InvalidExportFormatError.
var ErrInvalidExportFormat = errors.New("invalid export format")

type (
	// ExportFormat selects the serialization format for Export.
	ExportFormat string

	// InvalidExportFormatError is returned when an ExportFormat is not one
	// of the supported formats.
	InvalidExportFormatError struct {
		Value ExportFormat
	}
)

// String returns the string representation of the ExportFormat.
func (f ExportFormat) String() string { return string(f) }

// IsValid returns true if the ExportFormat is one of the supported formats.
func (f ExportFormat) IsValid() bool {
	return f == FormatTOML || f == FormatJSON
}

// Error implements the error interface for InvalidExportFormatError.
func (e *InvalidExportFormatError) Error() string {
	return fmt.Sprintf("invalid export format %q (valid: toml, json)", e.Value)
}

// Unwrap returns ErrInvalidExportFormat for errors.Is() compatibility.
func (e *InvalidExportFormatError) Unwrap() error { return ErrInvalidExportFormat }

// Export serializes the descriptor in the requested format for consumption
// by a host package manager. Diagnostics are never exported.
func Export(env *Environment, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("failed to export environment %q as TOML: %w", env.Name, err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to export environment %q as JSON: %w", env.Name, err)
		}
		return append(data, '\n'), nil
	default:
		return nil, &InvalidExportFormatError{Value: format}
	}
}
