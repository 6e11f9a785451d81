// SPDX-License-Identifier: MPL-2.0

package envfile

import "fmt"

type (
	// SingleEnvironment is a single-environment specification: the shared
	// document header plus one flat set of dependency tables describing
	// exactly one environment.
	SingleEnvironment struct {
		Document

		// Dependencies are the environment's package dependencies.
		Dependencies []Dependency

		// PypiDependencies are packages resolved from PyPI instead of the
		// configured channels.
		PypiDependencies []Dependency

		// Platforms holds per-platform dependency additions, keyed by
		// platform name.
		Platforms map[PlatformName]Platform
	}

	// Platform stores the dependencies added when resolving for one
	// specific platform.
	Platform struct {
		// Dependencies are the platform-specific package dependencies.
		Dependencies []Dependency
	}
)

// DependenciesFor returns the environment's dependencies when resolving
// for the given platform: the base set followed by the platform-specific
// additions, if any.
func (s *SingleEnvironment) DependenciesFor(platform PlatformName) []Dependency {
	p, ok := s.Platforms[platform]
	if !ok {
		return s.Dependencies
	}
	merged := make([]Dependency, 0, len(s.Dependencies)+len(p.Dependencies))
	merged = append(merged, s.Dependencies...)
	merged = append(merged, p.Dependencies...)
	return merged
}

// IsValid returns whether the single-environment document is internally
// consistent. Field errors are collected, not short-circuited, so one pass
// reports everything wrong with the file.
func (s *SingleEnvironment) IsValid() (bool, []error) {
	var errs []error
	if ok, aboutErrs := s.About.IsValid(); !ok {
		errs = append(errs, aboutErrs...)
	}
	if ok, configErrs := s.Config.IsValid(); !ok {
		errs = append(errs, configErrs...)
	}
	errs = append(errs, validateSpecList(s.SystemRequirements)...)
	errs = append(errs, validateDependencyList(s.Dependencies)...)
	errs = append(errs, validateDependencyList(s.PypiDependencies)...)
	for _, name := range sortedKeys(s.Platforms) {
		if ok, nameErrs := name.IsValid(); !ok {
			errs = append(errs, nameErrs...)
		}
		p := s.Platforms[name]
		if len(p.Dependencies) == 0 {
			errs = append(errs, fmt.Errorf("platform.%s: dependencies table is required", name))
		}
		errs = append(errs, validateDependencyList(p.Dependencies)...)
	}
	return len(errs) == 0, errs
}

// validateDependencyList collects the validation errors of each dependency
// in a list.
func validateDependencyList(deps []Dependency) []error {
	var errs []error
	for _, d := range deps {
		if ok, depErrs := d.IsValid(); !ok {
			errs = append(errs, depErrs...)
		}
	}
	return errs
}

// validateSpecList collects the validation errors of each match spec in a
// list.
func validateSpecList(specs []MatchSpec) []error {
	var errs []error
	for _, s := range specs {
		if ok, specErrs := s.IsValid(); !ok {
			errs = append(errs, specErrs...)
		}
	}
	return errs
}
