// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/denvkit/denv/pkg/types"
)

const (
	// DependencyVersion marks an entry declared as a plain version
	// constraint string (numpy = ">=1.21").
	DependencyVersion DependencyKind = "version"

	// DependencyMatchSpec marks an entry declared as a structured table of
	// match fields (numpy = { version = ">=1.21", build = "py311*" }).
	DependencyMatchSpec DependencyKind = "matchspec"

	// DependencyEditable marks an entry resolved from a local filesystem
	// path (mylib = { path = "../mylib", editable = true }).
	DependencyEditable DependencyKind = "editable"
)

// ErrInvalidDependency is the sentinel error wrapped by InvalidDependencyError.
var ErrInvalidDependency = errors.New("invalid dependency")

type (
	// DependencyKind discriminates the three dependency declaration forms.
	// Every normalized Dependency carries exactly one kind; no call site
	// inspects raw TOML values after normalization.
	DependencyKind string

	// Dependency is a normalized dependency entry: a package name tagged
	// with the declaration form it used.
	//
	// For DependencyVersion and DependencyMatchSpec entries, Spec holds the
	// match specification and Local is nil. For DependencyEditable entries,
	// Local holds the path reference and Spec carries only the name.
	Dependency struct {
		// Name is the package name (the dependency table key).
		Name PackageName

		// Kind is the declaration form discriminator.
		Kind DependencyKind

		// Spec is the normalized match specification.
		Spec MatchSpec

		// Local is the local path reference (nil unless Kind is
		// DependencyEditable).
		Local *EditablePackage
	}

	// EditablePackage is a dependency resolved from a local filesystem path
	// rather than a package index.
	EditablePackage struct {
		// Path locates the package, relative to the environment file or
		// absolute.
		Path types.FilesystemPath

		// Editable installs the package in development (in-place) mode.
		Editable bool
	}

	// InvalidDependencyError is returned when a dependency entry cannot be
	// normalized: wrong value type, empty table, mixed declaration forms,
	// or invalid field values.
	InvalidDependencyError struct {
		// Section is the dependency table the entry came from
		// ("dependencies", "pypi_dependencies", a platform override, ...).
		Section string

		// Name is the offending entry's package name.
		Name PackageName

		// Reason describes what is wrong with the declaration.
		Reason string
	}
)

// IsValid returns true if the DependencyKind is one of the three known
// declaration forms.
func (k DependencyKind) IsValid() bool {
	return k == DependencyVersion || k == DependencyMatchSpec || k == DependencyEditable
}

// String returns the string representation of the DependencyKind.
func (k DependencyKind) String() string { return string(k) }

// IsLocal returns true if the dependency resolves from a local path rather
// than a package index.
func (d Dependency) IsLocal() bool { return d.Kind == DependencyEditable }

// AsMatchSpec returns the dependency's match specification. The second
// return is false for editable entries, which have no index constraint.
func (d Dependency) AsMatchSpec() (MatchSpec, bool) {
	if d.Kind == DependencyEditable {
		return MatchSpec{}, false
	}
	return d.Spec, true
}

// String renders the dependency for display: the match spec form for index
// dependencies, "name @ path" for local ones.
func (d Dependency) String() string {
	if d.Kind == DependencyEditable {
		suffix := ""
		if d.Local.Editable {
			suffix = " (editable)"
		}
		return fmt.Sprintf("%s @ %s%s", d.Name, d.Local.Path, suffix)
	}
	return d.Spec.String()
}

// IsValid returns whether the Dependency is internally consistent: a known
// kind, a valid name, and fields matching the kind.
func (d Dependency) IsValid() (bool, []error) {
	var errs []error
	if !d.Kind.IsValid() {
		errs = append(errs, &InvalidDependencyError{Name: d.Name, Reason: fmt.Sprintf("unknown dependency kind %q", d.Kind)})
	}
	if ok, nameErrs := d.Name.IsValid(); !ok {
		errs = append(errs, nameErrs...)
	}
	switch d.Kind {
	case DependencyEditable:
		if d.Local == nil {
			errs = append(errs, &InvalidDependencyError{Name: d.Name, Reason: "editable dependency has no path reference"})
		} else if ok, pathErrs := d.Local.Path.IsValid(); !ok {
			errs = append(errs, pathErrs...)
		}
	case DependencyVersion, DependencyMatchSpec:
		if d.Local != nil {
			errs = append(errs, &InvalidDependencyError{Name: d.Name, Reason: "index dependency carries a path reference"})
		}
		if ok, specErrs := d.Spec.IsValid(); !ok {
			errs = append(errs, specErrs...)
		}
	}
	return len(errs) == 0, errs
}

// Error implements the error interface for InvalidDependencyError.
func (e *InvalidDependencyError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("%s: dependency %q: %s", e.Section, e.Name, e.Reason)
	}
	return fmt.Sprintf("dependency %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidDependency for errors.Is() compatibility.
func (e *InvalidDependencyError) Unwrap() error { return ErrInvalidDependency }

// dependencyTableKeys are the allowed keys of a structured dependency
// table, split by the declaration form they select.
var (
	matchSpecTableKeys = []string{"version", "build", "channel"}
	editableTableKeys  = []string{"path", "editable"}
)

// normalizeDependencyTable converts a raw dependency table (package name →
// string | table) into sorted, tagged Dependency values. The section name
// is used in error messages ("dependencies", "pypi_dependencies",
// "platform.linux-64.dependencies", ...).
func normalizeDependencyTable(raw map[string]any, section string) ([]Dependency, []error) {
	if len(raw) == 0 {
		return nil, nil
	}

	deps := make([]Dependency, 0, len(raw))
	var errs []error
	for _, name := range sortedKeys(raw) {
		dep, err := normalizeDependencyValue(PackageName(name), raw[name], section)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		deps = append(deps, dep)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return deps, nil
}

// normalizeDependencyValue converts one raw dependency value into a tagged
// Dependency. The declaration form is decided by the value type and, for
// tables, by which key family is present; mixing families is an error.
func normalizeDependencyValue(name PackageName, value any, section string) (Dependency, error) {
	if ok, nameErrs := name.IsValid(); !ok {
		return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: nameErrs[0].Error()}
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: "version constraint must not be empty (omit the qualifier to match any version)"}
		}
		if err := ValidateVersionConstraint(v); err != nil {
			return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: err.Error()}
		}
		return Dependency{
			Name: name,
			Kind: DependencyVersion,
			Spec: MatchSpec{Name: name, Version: v},
		}, nil

	case map[string]any:
		return normalizeDependencyTableValue(name, v, section)

	default:
		return Dependency{}, &InvalidDependencyError{
			Section: section,
			Name:    name,
			Reason:  fmt.Sprintf("must be a version constraint string or a table, got %T", value),
		}
	}
}

// normalizeDependencyTableValue handles the structured table forms: match
// fields or an editable/local path reference.
func normalizeDependencyTableValue(name PackageName, table map[string]any, section string) (Dependency, error) {
	if len(table) == 0 {
		return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: "table must declare at least one field"}
	}

	var hasMatch, hasLocal bool
	for key := range table {
		switch {
		case slices.Contains(matchSpecTableKeys, key):
			hasMatch = true
		case slices.Contains(editableTableKeys, key):
			hasLocal = true
		default:
			return Dependency{}, &InvalidDependencyError{
				Section: section,
				Name:    name,
				Reason:  fmt.Sprintf("unknown field %q (expected version, build, channel, path, or editable)", key),
			}
		}
	}
	if hasMatch && hasLocal {
		return Dependency{}, &InvalidDependencyError{
			Section: section,
			Name:    name,
			Reason:  "mixes match fields (version/build/channel) with local reference fields (path/editable)",
		}
	}

	if hasLocal {
		return normalizeEditableDependency(name, table, section)
	}
	return normalizeMatchSpecDependency(name, table, section)
}

// normalizeEditableDependency builds a DependencyEditable entry from a
// table containing path and/or editable keys.
func normalizeEditableDependency(name PackageName, table map[string]any, section string) (Dependency, error) {
	path, err := stringField(table, "path", section, name)
	if err != nil {
		return Dependency{}, err
	}
	editable, err := boolField(table, "editable", section, name)
	if err != nil {
		return Dependency{}, err
	}
	if path == "" {
		return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: "editable dependency requires a path"}
	}
	if err := ValidatePackagePath(path); err != nil {
		return Dependency{}, &InvalidDependencyError{Section: section, Name: name, Reason: err.Error()}
	}

	return Dependency{
		Name: name,
		Kind: DependencyEditable,
		Spec: MatchSpec{Name: name},
		Local: &EditablePackage{
			Path:     types.FilesystemPath(path),
			Editable: editable,
		},
	}, nil
}

// normalizeMatchSpecDependency builds a DependencyMatchSpec entry from a
// table of version/build/channel fields.
func normalizeMatchSpecDependency(name PackageName, table map[string]any, section string) (Dependency, error) {
	version, err := stringField(table, "version", section, name)
	if err != nil {
		return Dependency{}, err
	}
	build, err := stringField(table, "build", section, name)
	if err != nil {
		return Dependency{}, err
	}
	channel, err := stringField(table, "channel", section, name)
	if err != nil {
		return Dependency{}, err
	}

	spec := MatchSpec{
		Name:    name,
		Version: version,
		Build:   build,
		Channel: ChannelName(channel),
	}
	if ok, specErrs := spec.IsValid(); !ok {
		return Dependency{}, &InvalidMatchSpecError{Name: name, FieldErrors: specErrs}
	}

	return Dependency{Name: name, Kind: DependencyMatchSpec, Spec: spec}, nil
}

// stringField extracts an optional string field from a dependency table.
func stringField(table map[string]any, key, section string, name PackageName) (string, error) {
	value, ok := table[key]
	if !ok {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", &InvalidDependencyError{
			Section: section,
			Name:    name,
			Reason:  fmt.Sprintf("field %q must be a string, got %T", key, value),
		}
	}
	return s, nil
}

// boolField extracts an optional bool field from a dependency table.
func boolField(table map[string]any, key, section string, name PackageName) (bool, error) {
	value, ok := table[key]
	if !ok {
		return false, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, &InvalidDependencyError{
			Section: section,
			Name:    name,
			Reason:  fmt.Sprintf("field %q must be a boolean, got %T", key, value),
		}
	}
	return b, nil
}
