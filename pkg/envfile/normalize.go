// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"github.com/denvkit/denv/pkg/types"
)

// Raw document structs mirror the schema layout. Dependency tables stay
// untyped here; the declaration forms are separated during normalization.
type (
	rawSingleDocument struct {
		Version            int                    `json:"version"`
		About              rawAbout               `json:"about"`
		Config             rawConfig              `json:"config"`
		SystemRequirements map[string]string      `json:"system_requirements,omitempty"`
		Dependencies       map[string]any         `json:"dependencies,omitempty"`
		PypiDependencies   map[string]any         `json:"pypi_dependencies,omitempty"`
		Platform           map[string]rawPlatform `json:"platform,omitempty"`
	}

	rawMultiDocument struct {
		Version            int                 `json:"version"`
		About              rawAbout            `json:"about"`
		Config             rawConfig           `json:"config"`
		SystemRequirements map[string]string   `json:"system_requirements,omitempty"`
		Groups             map[string]rawGroup `json:"groups,omitempty"`
		Environments       map[string][]string `json:"environments,omitempty"`
	}

	rawAbout struct {
		Name         string            `json:"name"`
		Revision     string            `json:"revision"`
		Description  string            `json:"description"`
		Authors      []string          `json:"authors,omitempty"`
		License      string            `json:"license,omitempty"`
		LicenseFiles []string          `json:"license_files,omitempty"`
		URLs         map[string]string `json:"urls"`
	}

	rawConfig struct {
		Channels   []string          `json:"channels,omitempty"`
		Platforms  []string          `json:"platforms,omitempty"`
		Variables  map[string]string `json:"variables,omitempty"`
		Activation *rawActivation    `json:"activation,omitempty"`
	}

	rawActivation struct {
		Scripts   []string `json:"scripts,omitempty"`
		EnvScript string   `json:"env_script,omitempty"`
	}

	rawPlatform struct {
		Dependencies map[string]any `json:"dependencies"`
	}

	rawGroup struct {
		Config             rawConfig              `json:"config"`
		Description        string                 `json:"description,omitempty"`
		Dependencies       map[string]any         `json:"dependencies,omitempty"`
		PypiDependencies   map[string]any         `json:"pypi_dependencies,omitempty"`
		SystemRequirements map[string]string      `json:"system_requirements,omitempty"`
		Platform           map[string]rawPlatform `json:"platform,omitempty"`
	}
)

// normalizeSingle converts a schema-validated single-environment document
// into typed values. All normalization errors are collected before
// returning so the caller can report them together.
func normalizeSingle(raw *rawSingleDocument) (*SingleEnvironment, []error) {
	var errs []error

	doc, docErrs := normalizeDocument(raw.Version, raw.About, raw.Config, raw.SystemRequirements)
	errs = append(errs, docErrs...)

	deps, depErrs := normalizeDependencyTable(raw.Dependencies, "dependencies")
	errs = append(errs, depErrs...)

	pypi, pypiErrs := normalizeDependencyTable(raw.PypiDependencies, "pypi_dependencies")
	errs = append(errs, pypiErrs...)

	platforms, platformErrs := normalizePlatforms(raw.Platform, "platform")
	errs = append(errs, platformErrs...)

	if len(errs) > 0 {
		return nil, errs
	}
	return &SingleEnvironment{
		Document:         doc,
		Dependencies:     deps,
		PypiDependencies: pypi,
		Platforms:        platforms,
	}, nil
}

// normalizeMulti converts a schema-validated multi-environment document
// into typed values.
func normalizeMulti(raw *rawMultiDocument) (*MultiEnvironment, []error) {
	var errs []error

	doc, docErrs := normalizeDocument(raw.Version, raw.About, raw.Config, raw.SystemRequirements)
	errs = append(errs, docErrs...)

	groups := make(map[GroupName]Group, len(raw.Groups))
	for _, name := range sortedKeys(raw.Groups) {
		group, groupErrs := normalizeGroup(raw.Groups[name], "groups."+name)
		errs = append(errs, groupErrs...)
		groups[GroupName(name)] = group
	}

	environments := make(map[EnvironmentName][]GroupName, len(raw.Environments))
	for _, name := range sortedKeys(raw.Environments) {
		refs := make([]GroupName, 0, len(raw.Environments[name]))
		for _, group := range raw.Environments[name] {
			refs = append(refs, GroupName(group))
		}
		environments[EnvironmentName(name)] = refs
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &MultiEnvironment{
		Document:     doc,
		Groups:       groups,
		Environments: environments,
	}, nil
}

// normalizeDocument converts the shared document header.
func normalizeDocument(version int, about rawAbout, config rawConfig, sysReqs map[string]string) (Document, []error) {
	specs, errs := normalizeSystemRequirements(sysReqs)
	return Document{
		Version: version,
		About: About{
			Name:         about.Name,
			Revision:     about.Revision,
			Description:  types.DescriptionText(about.Description),
			Authors:      about.Authors,
			License:      about.License,
			LicenseFiles: about.LicenseFiles,
			URLs:         Urls(about.URLs),
		},
		Config:             normalizeConfig(config),
		SystemRequirements: specs,
	}, errs
}

// normalizeConfig converts a raw config section. Pure type mapping; field
// rules are applied later by Config.IsValid.
func normalizeConfig(raw rawConfig) Config {
	cfg := Config{Variables: raw.Variables}
	for _, channel := range raw.Channels {
		cfg.Channels = append(cfg.Channels, ChannelName(channel))
	}
	for _, platform := range raw.Platforms {
		cfg.Platforms = append(cfg.Platforms, PlatformName(platform))
	}
	if raw.Activation != nil {
		cfg.Activation = &Activation{
			Scripts:   raw.Activation.Scripts,
			EnvScript: raw.Activation.EnvScript,
		}
	}
	return cfg
}

// normalizeSystemRequirements converts the name -> version constraint
// table into sorted match specs.
func normalizeSystemRequirements(raw map[string]string) ([]MatchSpec, []error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var errs []error
	specs := make([]MatchSpec, 0, len(raw))
	for _, name := range sortedKeys(raw) {
		spec := MatchSpec{Name: PackageName(name), Version: raw[name]}
		if ok, specErrs := spec.IsValid(); !ok {
			errs = append(errs, specErrs...)
			continue
		}
		specs = append(specs, spec)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return specs, nil
}

// normalizePlatforms converts per-platform dependency tables.
func normalizePlatforms(raw map[string]rawPlatform, section string) (map[PlatformName]Platform, []error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var errs []error
	platforms := make(map[PlatformName]Platform, len(raw))
	for _, name := range sortedKeys(raw) {
		deps, depErrs := normalizeDependencyTable(raw[name].Dependencies, section+"."+name+".dependencies")
		errs = append(errs, depErrs...)
		platforms[PlatformName(name)] = Platform{Dependencies: deps}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return platforms, nil
}

// normalizeGroup converts one dependency group.
func normalizeGroup(raw rawGroup, section string) (Group, []error) {
	var errs []error

	deps, depErrs := normalizeDependencyTable(raw.Dependencies, section+".dependencies")
	errs = append(errs, depErrs...)

	pypi, pypiErrs := normalizeDependencyTable(raw.PypiDependencies, section+".pypi_dependencies")
	errs = append(errs, pypiErrs...)

	sysReqs, reqErrs := normalizeSystemRequirements(raw.SystemRequirements)
	errs = append(errs, reqErrs...)

	platforms, platformErrs := normalizePlatforms(raw.Platform, section+".platform")
	errs = append(errs, platformErrs...)

	return Group{
		Config:             normalizeConfig(raw.Config),
		Description:        types.DescriptionText(raw.Description),
		Dependencies:       deps,
		PypiDependencies:   pypi,
		SystemRequirements: sysReqs,
		Platforms:          platforms,
	}, errs
}
