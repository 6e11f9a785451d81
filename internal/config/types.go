// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorModeAuto enables color only when stdout is a terminal.
	ColorModeAuto ColorMode = "auto"
	// ColorModeAlways forces colored output.
	ColorModeAlways ColorMode = "always"
	// ColorModeNever disables colored output.
	ColorModeNever ColorMode = "never"

	// DefaultMaxFileSize caps environment file sizes at 5 MB.
	DefaultMaxFileSize int64 = 5 * 1024 * 1024
)

var (
	// ErrInvalidColorMode is returned when a ColorMode value is not recognized.
	ErrInvalidColorMode = errors.New("invalid color mode")
	// ErrInvalidSearchName is the sentinel error wrapped by InvalidSearchNameError.
	ErrInvalidSearchName = errors.New("invalid search name")
	// ErrInvalidMaxFileSize is returned when validation.max_file_size is not positive.
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidValidationConfig is the sentinel error wrapped by InvalidValidationConfigError.
	ErrInvalidValidationConfig = errors.New("invalid validation config")
	// ErrInvalidDiscoveryConfig is the sentinel error wrapped by InvalidDiscoveryConfigError.
	ErrInvalidDiscoveryConfig = errors.New("invalid discovery config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorMode specifies the terminal color preference.
	ColorMode string

	// InvalidColorModeError is returned when a ColorMode value is not recognized.
	// It wraps ErrInvalidColorMode for errors.Is() compatibility.
	InvalidColorModeError struct {
		Value ColorMode
	}

	// SearchName is a bare file name that discovery probes for in each
	// candidate directory. A valid name is non-empty, not whitespace-only,
	// and contains no path separators.
	SearchName string

	// InvalidSearchNameError is returned when a SearchName value is empty,
	// whitespace-only, or contains a path separator. It wraps
	// ErrInvalidSearchName for errors.Is() compatibility.
	InvalidSearchNameError struct {
		Value  SearchName
		Reason string
	}

	// InvalidMaxFileSizeError is returned when validation.max_file_size is
	// zero or negative. It wraps ErrInvalidMaxFileSize for errors.Is().
	InvalidMaxFileSizeError struct {
		Value int64
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidValidationConfigError is returned when a ValidationConfig has
	// invalid fields. It wraps ErrInvalidValidationConfig for errors.Is()
	// compatibility and collects field-level validation errors.
	InvalidValidationConfigError struct {
		FieldErrors []error
	}

	// InvalidDiscoveryConfigError is returned when a DiscoveryConfig has
	// invalid fields. It wraps ErrInvalidDiscoveryConfig for errors.Is()
	// compatibility and collects field-level validation errors.
	InvalidDiscoveryConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Validation configures environment file validation behavior.
		Validation ValidationConfig `json:"validation" mapstructure:"validation"`
		// Discovery configures how environment files are located.
		Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Color sets the terminal color preference.
		Color ColorMode `json:"color" mapstructure:"color"`
		// Verbose enables verbose output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// ValidationConfig configures environment file validation behavior.
	ValidationConfig struct {
		// WarningsAsErrors makes non-fatal diagnostics fail validation.
		WarningsAsErrors bool `json:"warnings_as_errors" mapstructure:"warnings_as_errors"`
		// MaxFileSize caps environment file sizes, in bytes.
		MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size"`
	}

	// DiscoveryConfig configures how environment files are located.
	DiscoveryConfig struct {
		// SearchNames lists the file names probed in each candidate directory,
		// in order of precedence.
		SearchNames []SearchName `json:"search_names" mapstructure:"search_names"`
		// SearchParents enables walking parent directories up to the
		// filesystem root when no file is found in the working directory.
		SearchParents bool `json:"search_parents" mapstructure:"search_parents"`
	}
)

// String returns the string representation of the ColorMode.
func (m ColorMode) String() string { return string(m) }

// IsValid returns whether the ColorMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m ColorMode) IsValid() (bool, []error) {
	switch m {
	case ColorModeAuto, ColorModeAlways, ColorModeNever:
		return true, nil
	default:
		return false, []error{&InvalidColorModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorModeError.
func (e *InvalidColorModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q (valid: auto, always, never)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorModeError) Unwrap() error { return ErrInvalidColorMode }

// String returns the string representation of the SearchName.
func (n SearchName) String() string { return string(n) }

// IsValid returns whether the SearchName is a bare, non-empty file name,
// and a list of validation errors if it is not.
func (n SearchName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" {
		return false, []error{&InvalidSearchNameError{Value: n, Reason: "must be non-empty"}}
	}
	if strings.ContainsAny(string(n), `/\`) {
		return false, []error{&InvalidSearchNameError{Value: n, Reason: "must not contain path separators"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidSearchNameError.
func (e *InvalidSearchNameError) Error() string {
	return fmt.Sprintf("invalid search name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidSearchName for errors.Is() compatibility.
func (e *InvalidSearchNameError) Unwrap() error { return ErrInvalidSearchName }

// Error implements the error interface for InvalidMaxFileSizeError.
func (e *InvalidMaxFileSizeError) Error() string {
	return fmt.Sprintf("invalid max file size %d: must be positive", e.Value)
}

// Unwrap returns ErrInvalidMaxFileSize for errors.Is() compatibility.
func (e *InvalidMaxFileSizeError) Unwrap() error { return ErrInvalidMaxFileSize }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to Color.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Color.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the ValidationConfig has valid fields.
// MaxFileSize must be positive; WarningsAsErrors needs no validation.
func (c ValidationConfig) IsValid() (bool, []error) {
	var errs []error
	if c.MaxFileSize <= 0 {
		errs = append(errs, &InvalidMaxFileSizeError{Value: c.MaxFileSize})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidValidationConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidValidationConfigError.
func (e *InvalidValidationConfigError) Error() string {
	return fmt.Sprintf("invalid validation config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidValidationConfig for errors.Is() compatibility.
func (e *InvalidValidationConfigError) Unwrap() error { return ErrInvalidValidationConfig }

// IsValid returns whether the DiscoveryConfig has valid fields.
// It delegates to each SearchNames entry's IsValid(); duplicate detection
// happens at load time where the full list is in hand.
func (c DiscoveryConfig) IsValid() (bool, []error) {
	var errs []error
	if len(c.SearchNames) == 0 {
		errs = append(errs, &InvalidSearchNameError{Value: "", Reason: "at least one search name is required"})
	}
	for _, name := range c.SearchNames {
		if valid, fieldErrs := name.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDiscoveryConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDiscoveryConfigError.
func (e *InvalidDiscoveryConfigError) Error() string {
	return fmt.Sprintf("invalid discovery config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidDiscoveryConfig for errors.Is() compatibility.
func (e *InvalidDiscoveryConfigError) Unwrap() error { return ErrInvalidDiscoveryConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to UI.IsValid(), Validation.IsValid(), and Discovery.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Validation.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Discovery.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Color:   ColorModeAuto,
			Verbose: false,
		},
		Validation: ValidationConfig{
			WarningsAsErrors: false,
			MaxFileSize:      DefaultMaxFileSize,
		},
		Discovery: DiscoveryConfig{
			SearchNames:   []SearchName{"denv.toml", "environment.toml"},
			SearchParents: true,
		},
	}
}
