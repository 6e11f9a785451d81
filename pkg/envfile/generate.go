// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"fmt"
	"regexp"
	"strings"
)

// bareKeyRegex matches keys that can be written unquoted in TOML.
var bareKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateTOML generates TOML text from a parsed environment file.
// This is useful for creating starter files programmatically.
func GenerateTOML(f *EnvFile) string {
	var sb strings.Builder

	sb.WriteString("# Environment specification for denv\n")
	sb.WriteString("# See https://github.com/denvkit/denv for documentation\n\n")

	doc := f.Document()
	fmt.Fprintf(&sb, "version = %d\n", doc.Version)

	generateAbout(&sb, &doc.About)
	generateConfig(&sb, &doc.Config, "config")

	if len(doc.SystemRequirements) > 0 {
		sb.WriteString("\n[system_requirements]\n")
		for _, spec := range doc.SystemRequirements {
			fmt.Fprintf(&sb, "%s = %q\n", tomlKey(string(spec.Name)), spec.Version)
		}
	}

	switch f.Shape {
	case ShapeSingle:
		generateSingleTables(&sb, f.Single)
	case ShapeMulti:
		generateMultiTables(&sb, f.Multi)
	}

	return sb.String()
}

// generateAbout writes the about section and its urls table.
func generateAbout(sb *strings.Builder, about *About) {
	sb.WriteString("\n[about]\n")
	fmt.Fprintf(sb, "name = %q\n", about.Name)
	fmt.Fprintf(sb, "revision = %q\n", about.Revision)
	fmt.Fprintf(sb, "description = %q\n", about.Description)
	if len(about.Authors) > 0 {
		sb.WriteString("authors = ")
		writeStringArray(sb, about.Authors)
		sb.WriteString("\n")
	}
	if about.License != "" {
		fmt.Fprintf(sb, "license = %q\n", about.License)
	}
	if len(about.LicenseFiles) > 0 {
		sb.WriteString("license_files = ")
		writeStringArray(sb, about.LicenseFiles)
		sb.WriteString("\n")
	}

	sb.WriteString("\n[about.urls]\n")
	for _, label := range sortedKeys(about.URLs) {
		fmt.Fprintf(sb, "%s = %q\n", tomlKey(label), about.URLs[label])
	}
}

// generateConfig writes a config section under the given table path.
func generateConfig(sb *strings.Builder, cfg *Config, table string) {
	fmt.Fprintf(sb, "\n[%s]\n", table)
	if len(cfg.Channels) > 0 {
		sb.WriteString("channels = ")
		writeNameArray(sb, cfg.Channels)
		sb.WriteString("\n")
	}
	if len(cfg.Platforms) > 0 {
		sb.WriteString("platforms = ")
		writeNameArray(sb, cfg.Platforms)
		sb.WriteString("\n")
	}
	if len(cfg.Variables) > 0 {
		fmt.Fprintf(sb, "\n[%s.variables]\n", table)
		for _, name := range sortedKeys(cfg.Variables) {
			fmt.Fprintf(sb, "%s = %q\n", tomlKey(name), cfg.Variables[name])
		}
	}
	if cfg.Activation != nil {
		fmt.Fprintf(sb, "\n[%s.activation]\n", table)
		if len(cfg.Activation.Scripts) > 0 {
			sb.WriteString("scripts = ")
			writeStringArray(sb, cfg.Activation.Scripts)
			sb.WriteString("\n")
		}
		if cfg.Activation.EnvScript != "" {
			fmt.Fprintf(sb, "env_script = %q\n", cfg.Activation.EnvScript)
		}
	}
}

// generateSingleTables writes the dependency tables of a single-environment
// document.
func generateSingleTables(sb *strings.Builder, single *SingleEnvironment) {
	generateDependencyTable(sb, "dependencies", single.Dependencies)
	generateDependencyTable(sb, "pypi_dependencies", single.PypiDependencies)
	for _, name := range sortedKeys(single.Platforms) {
		generateDependencyTable(sb, fmt.Sprintf("platform.%s.dependencies", name), single.Platforms[name].Dependencies)
	}
}

// generateMultiTables writes the groups and environments of a
// multi-environment document.
func generateMultiTables(sb *strings.Builder, multi *MultiEnvironment) {
	for _, name := range sortedKeys(multi.Groups) {
		group := multi.Groups[name]
		table := "groups." + tomlKey(string(name))

		fmt.Fprintf(sb, "\n[%s]\n", table)
		if group.Description != "" {
			fmt.Fprintf(sb, "description = %q\n", group.Description)
		}
		generateConfig(sb, &group.Config, table+".config")
		if len(group.SystemRequirements) > 0 {
			fmt.Fprintf(sb, "\n[%s.system_requirements]\n", table)
			for _, spec := range group.SystemRequirements {
				fmt.Fprintf(sb, "%s = %q\n", tomlKey(string(spec.Name)), spec.Version)
			}
		}
		generateDependencyTable(sb, table+".dependencies", group.Dependencies)
		generateDependencyTable(sb, table+".pypi_dependencies", group.PypiDependencies)
		for _, platform := range sortedKeys(group.Platforms) {
			generateDependencyTable(sb, fmt.Sprintf("%s.platform.%s.dependencies", table, platform), group.Platforms[platform].Dependencies)
		}
	}

	sb.WriteString("\n[environments]\n")
	for _, name := range sortedKeys(multi.Environments) {
		sb.WriteString(tomlKey(string(name)))
		sb.WriteString(" = ")
		writeNameArray(sb, multi.Environments[name])
		sb.WriteString("\n")
	}
}

// generateDependencyTable writes one dependency table. Entries keep their
// declaration form: plain constraint strings stay strings, structured
// entries become inline tables.
func generateDependencyTable(sb *strings.Builder, table string, deps []Dependency) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n[%s]\n", table)
	for _, dep := range deps {
		writeDependency(sb, dep)
	}
}

// writeDependency writes one dependency entry in its declaration form.
func writeDependency(sb *strings.Builder, dep Dependency) {
	key := tomlKey(string(dep.Name))
	switch dep.Kind {
	case DependencyEditable:
		fmt.Fprintf(sb, "%s = { path = %q", key, dep.Local.Path)
		if dep.Local.Editable {
			sb.WriteString(", editable = true")
		}
		sb.WriteString(" }\n")
	case DependencyMatchSpec:
		fmt.Fprintf(sb, "%s = { ", key)
		var parts []string
		if dep.Spec.Version != "" {
			parts = append(parts, fmt.Sprintf("version = %q", dep.Spec.Version))
		}
		if dep.Spec.Build != "" {
			parts = append(parts, fmt.Sprintf("build = %q", dep.Spec.Build))
		}
		if dep.Spec.Channel != "" {
			parts = append(parts, fmt.Sprintf("channel = %q", dep.Spec.Channel))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(" }\n")
	default:
		fmt.Fprintf(sb, "%s = %q\n", key, dep.Spec.Version)
	}
}

// writeStringArray writes a TOML array of strings.
func writeStringArray(sb *strings.Builder, values []string) {
	sb.WriteString("[")
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", v)
	}
	sb.WriteString("]")
}

// writeNameArray writes a TOML array of string-typed names.
func writeNameArray[T ~string](sb *strings.Builder, values []T) {
	sb.WriteString("[")
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", string(v))
	}
	sb.WriteString("]")
}

// tomlKey renders a table key, quoting it when it cannot be written bare.
func tomlKey(key string) string {
	if bareKeyRegex.MatchString(key) {
		return key
	}
	return fmt.Sprintf("%q", key)
}
