// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/types"
)

var (
	// ErrUnknownEnvironment is the sentinel error wrapped by
	// UnknownEnvironmentError.
	ErrUnknownEnvironment = errors.New("unknown environment")

	// ErrNilSpecification is returned when a nil document is passed to one
	// of the From* constructors.
	ErrNilSpecification = errors.New("nil environment specification")
)

type (
	// Environment is the runtime environment descriptor: the resolved,
	// flat view of one environment, ready for a host package manager to
	// solve and materialize. Package lists are sorted by package name;
	// channels and platforms keep their priority order (document
	// configuration first, then groups in reference order).
	Environment struct {
		// Name identifies the environment (the about name for
		// single-environment documents, the selected environment name for
		// multi-environment ones).
		Name string `toml:"name" json:"name"`

		// Channels lists the package channels, highest priority first.
		Channels []envfile.ChannelName `toml:"channels,omitempty" json:"channels,omitempty"`

		// Platforms lists the platforms the environment targets.
		Platforms []envfile.PlatformName `toml:"platforms,omitempty" json:"platforms,omitempty"`

		// Variables are environment variables set on activation.
		Variables map[string]string `toml:"variables,omitempty" json:"variables,omitempty"`

		// Activation holds the resolved activation hooks (nil when none).
		Activation *Activation `toml:"activation,omitempty" json:"activation,omitempty"`

		// Packages are the requested index packages.
		Packages []PackageSpec `toml:"packages,omitempty" json:"packages,omitempty"`

		// PypiPackages are packages resolved from PyPI.
		PypiPackages []PackageSpec `toml:"pypi_packages,omitempty" json:"pypi_packages,omitempty"`

		// LocalPackages are packages resolved from local filesystem paths.
		LocalPackages []LocalPackage `toml:"local_packages,omitempty" json:"local_packages,omitempty"`

		// SystemRequirements are constraints on the host system.
		SystemRequirements []PackageSpec `toml:"system_requirements,omitempty" json:"system_requirements,omitempty"`

		// Diagnostics collects the non-fatal findings produced during
		// composition (dependency overrides between groups). Not exported.
		Diagnostics []envfile.Diagnostic `toml:"-" json:"-"`
	}

	// PackageSpec is the descriptor form of a match specification.
	PackageSpec struct {
		// Name is the package name.
		Name envfile.PackageName `toml:"name" json:"name"`

		// Version is a version constraint ("" matches any version).
		Version string `toml:"version,omitempty" json:"version,omitempty"`

		// Build is a build-string constraint ("" matches any build).
		Build string `toml:"build,omitempty" json:"build,omitempty"`

		// Channel restricts resolution to one channel ("" means any).
		Channel envfile.ChannelName `toml:"channel,omitempty" json:"channel,omitempty"`
	}

	// LocalPackage is a package installed from a local filesystem path.
	LocalPackage struct {
		// Name is the package name.
		Name envfile.PackageName `toml:"name" json:"name"`

		// Path locates the package source tree.
		Path types.FilesystemPath `toml:"path" json:"path"`

		// Editable installs the package in development (in-place) mode.
		Editable bool `toml:"editable,omitempty" json:"editable,omitempty"`
	}

	// Activation holds the resolved activation hooks of an environment.
	Activation struct {
		// Scripts are shell script paths run on activation.
		Scripts []string `toml:"scripts,omitempty" json:"scripts,omitempty"`

		// EnvScript is an inline shell fragment sourced on activation.
		EnvScript string `toml:"env_script,omitempty" json:"env_script,omitempty"`
	}

	// UnknownEnvironmentError is returned when the selected environment
	// name is not declared by the multi-environment document.
	UnknownEnvironmentError struct {
		// Name is the requested environment name.
		Name envfile.EnvironmentName

		// Available lists the declared environment names, sorted.
		Available []envfile.EnvironmentName
	}
)

// specFromMatch converts a normalized match specification into its
// descriptor form.
func specFromMatch(m envfile.MatchSpec) PackageSpec {
	return PackageSpec{
		Name:    m.Name,
		Version: m.Version,
		Build:   m.Build,
		Channel: m.Channel,
	}
}

// String renders the spec in channel::name version build form, omitting
// empty qualifiers.
func (p PackageSpec) String() string {
	return envfile.MatchSpec{
		Name:    p.Name,
		Version: p.Version,
		Build:   p.Build,
		Channel: p.Channel,
	}.String()
}

// String renders the local package as "name @ path".
func (p LocalPackage) String() string {
	suffix := ""
	if p.Editable {
		suffix = " (editable)"
	}
	return fmt.Sprintf("%s @ %s%s", p.Name, p.Path, suffix)
}

// PackageCount returns the total number of requested packages across the
// index, PyPI, and local lists.
func (e *Environment) PackageCount() int {
	return len(e.Packages) + len(e.PypiPackages) + len(e.LocalPackages)
}

// Error implements the error interface for UnknownEnvironmentError.
func (e *UnknownEnvironmentError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown environment %q (the document declares no environments)", e.Name)
	}
	names := make([]string, len(e.Available))
	for i, n := range e.Available {
		names[i] = string(n)
	}
	return fmt.Sprintf("unknown environment %q (available: %s)", e.Name, strings.Join(names, ", "))
}

// Unwrap returns ErrUnknownEnvironment for errors.Is() compatibility.
func (e *UnknownEnvironmentError) Unwrap() error { return ErrUnknownEnvironment }
