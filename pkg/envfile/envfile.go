// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/denvkit/denv/pkg/types"
)

// SupportedSchemaVersion is the only environment file schema version this
// package understands. Documents may omit the version field entirely, in
// which case it defaults to this value.
const SupportedSchemaVersion = 1

const (
	// ShapeSingle identifies a single-environment document: one flat set of
	// dependency tables that describes exactly one environment.
	ShapeSingle Shape = "single"

	// ShapeMulti identifies a multi-environment document: named dependency
	// groups composed into named environments.
	ShapeMulti Shape = "multi"
)

var (
	// ErrUnsupportedSchemaVersion is the sentinel error wrapped by
	// UnsupportedSchemaVersionError.
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")

	// ErrMissingSection is the sentinel error wrapped by MissingSectionError.
	ErrMissingSection = errors.New("missing required section")

	// ErrInvalidEnvFile is the sentinel error wrapped by InvalidEnvFileError.
	ErrInvalidEnvFile = errors.New("invalid environment file")
)

type (
	// Shape identifies which of the two document forms an environment file
	// uses. It is decided by DetectShape before decoding, never by trial
	// parsing.
	Shape string

	// EnvFile is a parsed, validated environment file. Exactly one of Single
	// and Multi is non-nil, matching Shape.
	EnvFile struct {
		// Shape records the detected document form.
		Shape Shape

		// Single holds the document when Shape == ShapeSingle.
		Single *SingleEnvironment

		// Multi holds the document when Shape == ShapeMulti.
		Multi *MultiEnvironment

		// FilePath is the path the document was loaded from ("" for bytes).
		FilePath string

		// Diagnostics collects the non-fatal findings produced during
		// validation (for example unused dependency groups). Library code
		// never prints these; callers decide how to render them.
		Diagnostics []Diagnostic
	}

	// Document is the header shared by both document shapes: schema version,
	// authorship metadata, shared configuration, and host system
	// requirements.
	Document struct {
		// Version is the schema version (SupportedSchemaVersion).
		Version int

		// About carries the authorship and licensing metadata.
		About About

		// Config carries the shared environment configuration.
		Config Config

		// SystemRequirements are constraints on the host system (virtual
		// packages), normalized to match specifications.
		SystemRequirements []MatchSpec
	}

	// About stores metadata about an environment: identity, authorship, and
	// licensing.
	About struct {
		// Name identifies the environment.
		Name string

		// Revision is the environment revision string.
		Revision string

		// Description is a human-readable summary.
		Description types.DescriptionText

		// Authors lists the environment authors.
		Authors []string

		// License is an SPDX license expression ("" when unlicensed).
		License string

		// LicenseFiles lists paths to license texts.
		LicenseFiles []string

		// URLs maps arbitrary labels (homepage, repository, ...) to URLs.
		URLs Urls
	}

	// Urls is an open table of label → URL. Labels are free-form; every
	// value must be an absolute http or https URL.
	Urls map[string]string

	// Config stores the configuration shared by an environment or group:
	// package channels, target platforms, environment variables, and
	// optional activation hooks.
	Config struct {
		// Channels lists the package channels to resolve against, highest
		// priority first.
		Channels []ChannelName

		// Platforms lists the platforms the environment targets.
		Platforms []PlatformName

		// Variables are environment variables set on activation.
		Variables map[string]string

		// Activation configures optional activation hooks (nil when absent).
		Activation *Activation
	}

	// Activation configures scripts run when an environment is activated.
	Activation struct {
		// Scripts are paths to shell scripts, relative to the environment
		// file.
		Scripts []string

		// EnvScript is an inline shell fragment sourced on activation. It is
		// syntax-checked at parse time.
		EnvScript string
	}

	// UnsupportedSchemaVersionError is returned when a document declares a
	// schema version other than SupportedSchemaVersion.
	UnsupportedSchemaVersionError struct {
		Version int
	}

	// MissingSectionError is returned when a required document section
	// (about, config, about.urls) is absent.
	MissingSectionError struct {
		Section string
	}

	// InvalidEnvFileError collects all field-level validation errors found
	// while normalizing a document.
	InvalidEnvFileError struct {
		FilePath    string
		FieldErrors []error
	}
)

// IsValid returns true if the Shape is one of the known document forms.
func (s Shape) IsValid() bool {
	return s == ShapeSingle || s == ShapeMulti
}

// String returns the string representation of the Shape.
func (s Shape) String() string { return string(s) }

// Document returns the shared header of the parsed document.
func (f *EnvFile) Document() *Document {
	switch f.Shape {
	case ShapeSingle:
		return &f.Single.Document
	case ShapeMulti:
		return &f.Multi.Document
	}
	return nil
}

// Version returns the document schema version.
func (f *EnvFile) Version() int { return f.Document().Version }

// About returns the document metadata section.
func (f *EnvFile) About() *About { return &f.Document().About }

// Config returns the shared configuration section.
func (f *EnvFile) Config() *Config { return &f.Document().Config }

// EnvironmentNames returns the names of the environments the document can
// produce. For single-environment documents this is the about name; for
// multi-environment documents it is the sorted environment names.
func (f *EnvFile) EnvironmentNames() []string {
	if f.Shape == ShapeSingle {
		return []string{f.Single.About.Name}
	}

	names := make([]string, 0, len(f.Multi.Environments))
	for name := range f.Multi.Environments {
		names = append(names, string(name))
	}
	slices.Sort(names)
	return names
}

// IsValid returns whether the Urls table is valid. Every value must be an
// absolute http or https URL.
func (u Urls) IsValid() (bool, []error) {
	var errs []error
	for _, label := range sortedKeys(u) {
		if err := ValidateHTTPURL(u[label]); err != nil {
			errs = append(errs, fmt.Errorf("urls.%s: %w", label, err))
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the About section is valid.
// Name and revision must be non-empty; every URL must parse.
func (a *About) IsValid() (bool, []error) {
	var errs []error
	if err := ValidateNonEmpty(a.Name, "about.name"); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateNonEmpty(a.Revision, "about.revision"); err != nil {
		errs = append(errs, err)
	}
	if ok, descErrs := a.Description.IsValid(); !ok {
		errs = append(errs, descErrs...)
	}
	if ok, urlErrs := a.URLs.IsValid(); !ok {
		errs = append(errs, urlErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config section is valid: known platform
// names, valid channel names, and POSIX environment variable names.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for _, ch := range c.Channels {
		if ok, chErrs := ch.IsValid(); !ok {
			errs = append(errs, chErrs...)
		}
	}
	for _, p := range c.Platforms {
		if ok, pErrs := p.IsValid(); !ok {
			errs = append(errs, pErrs...)
		}
	}
	for _, name := range sortedKeys(c.Variables) {
		if err := ValidateEnvVarName(name); err != nil {
			errs = append(errs, err)
		}
		if err := ValidateEnvVarValue(c.Variables[name]); err != nil {
			errs = append(errs, fmt.Errorf("variable %s: %w", name, err))
		}
	}
	if c.Activation != nil {
		if ok, actErrs := c.Activation.IsValid(); !ok {
			errs = append(errs, actErrs...)
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Activation section is valid. Script paths
// must be relative and inline fragments must be parseable shell.
func (a *Activation) IsValid() (bool, []error) {
	var errs []error
	for _, script := range a.Scripts {
		if err := ValidateRelativePath(script, "activation script"); err != nil {
			errs = append(errs, err)
		}
	}
	if a.EnvScript != "" {
		if err := ValidateShellFragment(a.EnvScript, "activation.env_script"); err != nil {
			errs = append(errs, err)
		}
	}
	return len(errs) == 0, errs
}

// Error implements the error interface for UnsupportedSchemaVersionError.
func (e *UnsupportedSchemaVersionError) Error() string {
	return fmt.Sprintf("unsupported schema version %d (this release supports version %d)", e.Version, SupportedSchemaVersion)
}

// Unwrap returns ErrUnsupportedSchemaVersion for errors.Is() compatibility.
func (e *UnsupportedSchemaVersionError) Unwrap() error { return ErrUnsupportedSchemaVersion }

// Error implements the error interface for MissingSectionError.
func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("missing required section [%s]", e.Section)
}

// Unwrap returns ErrMissingSection for errors.Is() compatibility.
func (e *MissingSectionError) Unwrap() error { return ErrMissingSection }

// Error implements the error interface for InvalidEnvFileError.
// All collected field errors are listed, one per line.
func (e *InvalidEnvFileError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("%s: %v", e.FilePath, e.FieldErrors[0])
	}

	msg := fmt.Sprintf("%s: %d validation errors:", e.FilePath, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msg += "\n  " + err.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidEnvFile for errors.Is() compatibility.
func (e *InvalidEnvFileError) Unwrap() error { return ErrInvalidEnvFile }

// sortedKeys returns the map's keys in sorted order so iteration (and any
// message built from it) is deterministic.
func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
