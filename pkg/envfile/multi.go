// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/denvkit/denv/pkg/types"
)

var (
	// ErrNoGroups is returned when a multi-environment document declares no
	// dependency groups.
	ErrNoGroups = errors.New("at least one dependency group is required in a multi-environment specification")

	// ErrNoEnvironments is returned when a multi-environment document
	// declares no environments.
	ErrNoEnvironments = errors.New("multi-environment specifications must contain at least one environment")

	// ErrUndefinedGroups is the sentinel error wrapped by
	// UndefinedGroupsError.
	ErrUndefinedGroups = errors.New("undefined dependency groups")
)

type (
	// MultiEnvironment is a multi-environment specification: the shared
	// document header, named dependency groups, and named environments
	// composed from those groups.
	MultiEnvironment struct {
		Document

		// Groups are the reusable dependency groups, keyed by group name.
		Groups map[GroupName]Group

		// Environments maps each environment name to the ordered list of
		// groups composing it.
		Environments map[EnvironmentName][]GroupName
	}

	// Group is a named, reusable set of dependencies plus the
	// configuration that applies when the group is included in an
	// environment.
	Group struct {
		// Config carries the group's configuration. Unlike most group
		// fields it is required, mirroring the document-level config.
		Config Config

		// Description is an optional human-readable summary.
		Description types.DescriptionText

		// Dependencies are the group's package dependencies.
		Dependencies []Dependency

		// PypiDependencies are packages resolved from PyPI instead of the
		// configured channels.
		PypiDependencies []Dependency

		// SystemRequirements are host system constraints added by this
		// group.
		SystemRequirements []MatchSpec

		// Platforms holds per-platform dependency additions, keyed by
		// platform name.
		Platforms map[PlatformName]Platform
	}

	// UndefinedGroupsError is returned when environments reference
	// dependency groups the document never declares.
	UndefinedGroupsError struct {
		// Missing maps each offending environment to the group names it
		// references but the document does not declare, in reference order.
		Missing map[EnvironmentName][]GroupName
	}
)

// GroupNames returns the declared group names in sorted order.
func (m *MultiEnvironment) GroupNames() []GroupName {
	return sortedKeys(m.Groups)
}

// ValidateReferences checks the referential integrity between groups and
// environments: the document must declare at least one group and at least
// one environment, and every group an environment references must exist.
// Groups declared but referenced by nothing produce a warning diagnostic,
// not an error. Duplicate references within one environment are counted
// once.
func (m *MultiEnvironment) ValidateReferences() ([]Diagnostic, error) {
	if len(m.Groups) == 0 {
		return nil, ErrNoGroups
	}
	if len(m.Environments) == 0 {
		return nil, ErrNoEnvironments
	}

	used := make(map[GroupName]bool, len(m.Groups))
	missing := make(map[EnvironmentName][]GroupName)
	for _, env := range sortedKeys(m.Environments) {
		seen := make(map[GroupName]bool)
		for _, group := range m.Environments[env] {
			if seen[group] {
				continue
			}
			seen[group] = true
			if _, declared := m.Groups[group]; !declared {
				missing[env] = append(missing[env], group)
				continue
			}
			used[group] = true
		}
	}
	if len(missing) > 0 {
		return nil, &UndefinedGroupsError{Missing: missing}
	}

	var unused []GroupName
	for _, group := range sortedKeys(m.Groups) {
		if !used[group] {
			unused = append(unused, group)
		}
	}
	if len(unused) == 0 {
		return nil, nil
	}
	return []Diagnostic{{
		Severity: SeverityWarning,
		Code:     CodeUnusedGroups,
		Message: fmt.Sprintf(
			"dependency groups declared but never used by any environment: %s (consider removing them)",
			joinNames(unused, ", ")),
	}}, nil
}

// IsValid returns whether the multi-environment document is internally
// consistent. Referential integrity is checked separately by
// ValidateReferences.
func (m *MultiEnvironment) IsValid() (bool, []error) {
	var errs []error
	if ok, aboutErrs := m.About.IsValid(); !ok {
		errs = append(errs, aboutErrs...)
	}
	if ok, configErrs := m.Config.IsValid(); !ok {
		errs = append(errs, configErrs...)
	}
	errs = append(errs, validateSpecList(m.SystemRequirements)...)
	for _, name := range sortedKeys(m.Groups) {
		if ok, nameErrs := name.IsValid(); !ok {
			errs = append(errs, nameErrs...)
		}
		group := m.Groups[name]
		if ok, groupErrs := group.IsValid(); !ok {
			for _, err := range groupErrs {
				errs = append(errs, fmt.Errorf("groups.%s: %w", name, err))
			}
		}
	}
	for _, name := range sortedKeys(m.Environments) {
		if ok, nameErrs := name.IsValid(); !ok {
			errs = append(errs, nameErrs...)
		}
		for _, group := range m.Environments[name] {
			if ok, groupErrs := group.IsValid(); !ok {
				for _, err := range groupErrs {
					errs = append(errs, fmt.Errorf("environments.%s: %w", name, err))
				}
			}
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Group is internally consistent.
func (g *Group) IsValid() (bool, []error) {
	var errs []error
	if ok, configErrs := g.Config.IsValid(); !ok {
		errs = append(errs, configErrs...)
	}
	if ok, descErrs := g.Description.IsValid(); !ok {
		errs = append(errs, descErrs...)
	}
	errs = append(errs, validateDependencyList(g.Dependencies)...)
	errs = append(errs, validateDependencyList(g.PypiDependencies)...)
	errs = append(errs, validateSpecList(g.SystemRequirements)...)
	for _, name := range sortedKeys(g.Platforms) {
		if ok, nameErrs := name.IsValid(); !ok {
			errs = append(errs, nameErrs...)
		}
		p := g.Platforms[name]
		if len(p.Dependencies) == 0 {
			errs = append(errs, fmt.Errorf("platform.%s: dependencies table is required", name))
		}
		errs = append(errs, validateDependencyList(p.Dependencies)...)
	}
	return len(errs) == 0, errs
}

// Error implements the error interface for UndefinedGroupsError. Each
// offending environment is listed with the groups it references but the
// document never declares.
func (e *UndefinedGroupsError) Error() string {
	var sb strings.Builder
	sb.WriteString("multi-environment specification has environments with undefined dependency groups:")
	for _, env := range sortedKeys(e.Missing) {
		sb.WriteString(fmt.Sprintf("\n  %s: %s", env, joinNames(e.Missing[env], ", ")))
	}
	return sb.String()
}

// Unwrap returns ErrUndefinedGroups for errors.Is() compatibility.
func (e *UndefinedGroupsError) Unwrap() error { return ErrUndefinedGroups }

// joinNames joins a slice of string-typed names with a separator.
func joinNames[T ~string](names []T, sep string) string {
	strs := make([]string, len(names))
	for i, n := range names {
		strs[i] = string(n)
	}
	return strings.Join(strs, sep)
}
