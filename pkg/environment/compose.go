// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"fmt"
	"slices"

	"github.com/denvkit/denv/pkg/envfile"
)

// Options configures descriptor composition.
type Options struct {
	// Platform selects the per-platform dependency overlay to fold into
	// the package lists. The zero value skips platform overlays.
	Platform envfile.PlatformName
}

// FromSingle converts a single-environment document into a runtime
// environment descriptor.
func FromSingle(single *envfile.SingleEnvironment, opts Options) (*Environment, error) {
	if single == nil {
		return nil, ErrNilSpecification
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	c := newComposer(single.About.Name)
	c.applyConfig(single.Config)
	c.addSystemRequirements(single.SystemRequirements)
	c.addDependencies(single.Dependencies, "dependencies")
	if opts.Platform != "" {
		if overlay, ok := single.Platforms[opts.Platform]; ok {
			c.addDependencies(overlay.Dependencies, "platform."+string(opts.Platform))
		}
	}
	c.addPypiDependencies(single.PypiDependencies, "pypi_dependencies")

	return c.finish(), nil
}

// FromMulti composes the named environment of a multi-environment document
// from the groups it references, in reference order. Dependencies merge by
// package name with the later group winning; each override is reported as a
// warning diagnostic on the returned descriptor. Channels and platforms
// append with deduplication, document configuration first. Variables merge
// with the later group winning. A group's activation hooks replace the
// inherited ones only when the group declares its own.
func FromMulti(multi *envfile.MultiEnvironment, name envfile.EnvironmentName, opts Options) (*Environment, error) {
	if multi == nil {
		return nil, ErrNilSpecification
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	refs, ok := multi.Environments[name]
	if !ok {
		available := make([]envfile.EnvironmentName, 0, len(multi.Environments))
		for env := range multi.Environments {
			available = append(available, env)
		}
		slices.Sort(available)
		return nil, &UnknownEnvironmentError{Name: name, Available: available}
	}

	c := newComposer(string(name))
	c.applyConfig(multi.Config)
	c.addSystemRequirements(multi.SystemRequirements)

	seen := make(map[envfile.GroupName]bool, len(refs))
	var missing []envfile.GroupName
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		group, declared := multi.Groups[ref]
		if !declared {
			missing = append(missing, ref)
			continue
		}
		c.applyGroup(ref, group, opts)
	}
	if len(missing) > 0 {
		return nil, &envfile.UndefinedGroupsError{
			Missing: map[envfile.EnvironmentName][]envfile.GroupName{name: missing},
		}
	}

	return c.finish(), nil
}

// validate rejects an unknown platform selection before composition starts.
func (o Options) validate() error {
	if o.Platform == "" {
		return nil
	}
	if ok, errs := o.Platform.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

type (
	// depEntry tracks the winning declaration of one package name together
	// with the section it came from, so overrides can name both sides.
	depEntry struct {
		dep    envfile.Dependency
		origin string
	}

	// composer accumulates descriptor state while walking the document.
	composer struct {
		name          string
		channels      []envfile.ChannelName
		channelSeen   map[envfile.ChannelName]bool
		platforms     []envfile.PlatformName
		platformSeen  map[envfile.PlatformName]bool
		variables     map[string]string
		activation    *envfile.Activation
		deps          map[envfile.PackageName]depEntry
		pypi          map[envfile.PackageName]depEntry
		sysReqs       map[envfile.PackageName]envfile.MatchSpec
		diags         []envfile.Diagnostic
	}
)

func newComposer(name string) *composer {
	return &composer{
		name:         name,
		channelSeen:  make(map[envfile.ChannelName]bool),
		platformSeen: make(map[envfile.PlatformName]bool),
		variables:    make(map[string]string),
		deps:         make(map[envfile.PackageName]depEntry),
		pypi:         make(map[envfile.PackageName]depEntry),
		sysReqs:      make(map[envfile.PackageName]envfile.MatchSpec),
	}
}

// applyConfig folds one config section into the descriptor. Channels and
// platforms append in order, skipping names already present; variables
// merge with the incoming value winning; activation replaces the current
// hooks only when the section declares its own.
func (c *composer) applyConfig(cfg envfile.Config) {
	for _, ch := range cfg.Channels {
		if !c.channelSeen[ch] {
			c.channelSeen[ch] = true
			c.channels = append(c.channels, ch)
		}
	}
	for _, p := range cfg.Platforms {
		if !c.platformSeen[p] {
			c.platformSeen[p] = true
			c.platforms = append(c.platforms, p)
		}
	}
	for k, v := range cfg.Variables {
		c.variables[k] = v
	}
	if cfg.Activation != nil {
		c.activation = cfg.Activation
	}
}

// applyGroup folds one dependency group into the descriptor.
func (c *composer) applyGroup(name envfile.GroupName, group envfile.Group, opts Options) {
	section := "groups." + string(name)
	c.applyConfig(group.Config)
	c.addSystemRequirements(group.SystemRequirements)
	c.addDependencies(group.Dependencies, section)
	if opts.Platform != "" {
		if overlay, ok := group.Platforms[opts.Platform]; ok {
			c.addDependencies(overlay.Dependencies, section+".platform."+string(opts.Platform))
		}
	}
	c.addPypiDependencies(group.PypiDependencies, section)
}

func (c *composer) addDependencies(deps []envfile.Dependency, origin string) {
	for _, dep := range deps {
		c.put(c.deps, dep, origin)
	}
}

func (c *composer) addPypiDependencies(deps []envfile.Dependency, origin string) {
	for _, dep := range deps {
		c.put(c.pypi, dep, origin)
	}
}

// put records one dependency, replacing any earlier declaration of the
// same package name. Replacements across sections are reported as warning
// diagnostics so authors can see which declaration won.
func (c *composer) put(table map[envfile.PackageName]depEntry, dep envfile.Dependency, origin string) {
	if prev, ok := table[dep.Name]; ok && prev.origin != origin {
		c.diags = append(c.diags, envfile.Diagnostic{
			Severity: envfile.SeverityWarning,
			Code:     envfile.CodeDependencyOverride,
			Message: fmt.Sprintf("dependency %q from %s is overridden by %s",
				dep.Name, prev.origin, origin),
		})
	}
	table[dep.Name] = depEntry{dep: dep, origin: origin}
}

// addSystemRequirements merges system requirements by package name, with
// the later declaration winning.
func (c *composer) addSystemRequirements(specs []envfile.MatchSpec) {
	for _, spec := range specs {
		c.sysReqs[spec.Name] = spec
	}
}

// finish emits the accumulated state as a descriptor. Package lists are
// sorted by package name so output is deterministic.
func (c *composer) finish() *Environment {
	env := &Environment{
		Name:        c.name,
		Channels:    c.channels,
		Platforms:   c.platforms,
		Diagnostics: c.diags,
	}
	if len(c.variables) > 0 {
		env.Variables = c.variables
	}
	if c.activation != nil {
		env.Activation = &Activation{
			Scripts:   c.activation.Scripts,
			EnvScript: c.activation.EnvScript,
		}
	}

	for _, name := range sortedNames(c.deps) {
		entry := c.deps[name]
		if entry.dep.Kind == envfile.DependencyEditable {
			env.LocalPackages = append(env.LocalPackages, LocalPackage{
				Name:     entry.dep.Name,
				Path:     entry.dep.Local.Path,
				Editable: entry.dep.Local.Editable,
			})
			continue
		}
		env.Packages = append(env.Packages, specFromMatch(entry.dep.Spec))
	}
	for _, name := range sortedNames(c.pypi) {
		entry := c.pypi[name]
		if entry.dep.Kind == envfile.DependencyEditable {
			env.LocalPackages = append(env.LocalPackages, LocalPackage{
				Name:     entry.dep.Name,
				Path:     entry.dep.Local.Path,
				Editable: entry.dep.Local.Editable,
			})
			continue
		}
		env.PypiPackages = append(env.PypiPackages, specFromMatch(entry.dep.Spec))
	}
	for _, name := range sortedNames(c.sysReqs) {
		env.SystemRequirements = append(env.SystemRequirements, specFromMatch(c.sysReqs[name]))
	}

	slices.SortFunc(env.LocalPackages, func(a, b LocalPackage) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	return env
}

// sortedNames returns the map's package names in sorted order.
func sortedNames[V any](m map[envfile.PackageName]V) []envfile.PackageName {
	names := make([]envfile.PackageName, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
