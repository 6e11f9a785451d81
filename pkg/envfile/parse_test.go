// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const singleEnvDoc = `
version = 1

[about]
name = "data-pipeline"
revision = "2.1.0"
description = "Batch data processing environment"
authors = ["Data Team <data@example.com>"]
license = "Apache-2.0"

[about.urls]
homepage = "https://example.com/pipeline"
repository = "https://github.com/example/pipeline"

[config]
channels = ["conda-forge", "bioconda"]
platforms = ["linux-64", "osx-arm64"]

[config.variables]
PIPELINE_MODE = "batch"

[config.activation]
scripts = ["scripts/setup.sh"]
env_script = "export PATH=\"$PIPELINE_HOME/bin:$PATH\""

[system_requirements]
libc = ">=2.28"

[dependencies]
python = "3.11.*"
numpy = { version = ">=1.21,<2", build = "py311*" }
mylib = { path = "../mylib", editable = true }

[pypi_dependencies]
requests = ">=2.28"

[platform.linux-64.dependencies]
mkl = ">=2023"
`

const multiEnvDoc = `
version = 1

[about]
name = "analytics"
revision = "1.0.0"
description = "Analytics team environments"

[about.urls]
homepage = "https://example.com/analytics"

[config]
channels = ["conda-forge"]
platforms = ["linux-64", "osx-arm64"]

[groups.base]
description = "Core interpreter and numerics"

[groups.base.config]
channels = ["conda-forge"]

[groups.base.dependencies]
python = "3.11.*"
numpy = { version = ">=1.21", build = "py311*" }

[groups.base.platform.linux-64.dependencies]
mkl = ">=2023"

[groups.dev.config]

[groups.dev.dependencies]
pytest = ">=7"

[groups.dev.pypi_dependencies]
ruff = ">=0.4"

[environments]
default = ["base"]
dev = ["base", "dev"]
`

func TestParseBytes_SingleEnvironment(t *testing.T) {
	f, err := ParseBytes([]byte(singleEnvDoc), "denv.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if f.Shape != ShapeSingle {
		t.Fatalf("Shape = %q, want %q", f.Shape, ShapeSingle)
	}
	if f.Single == nil || f.Multi != nil {
		t.Fatal("exactly Single should be populated for a single-environment document")
	}
	if f.Version() != 1 {
		t.Errorf("Version() = %d, want 1", f.Version())
	}
	if f.FilePath != "denv.toml" {
		t.Errorf("FilePath = %q, want %q", f.FilePath, "denv.toml")
	}
	if len(f.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", f.Diagnostics)
	}

	about := f.About()
	if about.Name != "data-pipeline" || about.Revision != "2.1.0" {
		t.Errorf("about = %+v, want name data-pipeline revision 2.1.0", about)
	}
	if about.License != "Apache-2.0" {
		t.Errorf("License = %q, want Apache-2.0", about.License)
	}
	if len(about.Authors) != 1 || about.Authors[0] != "Data Team <data@example.com>" {
		t.Errorf("Authors = %v", about.Authors)
	}
	if about.URLs["homepage"] != "https://example.com/pipeline" {
		t.Errorf("URLs = %v", about.URLs)
	}

	cfg := f.Config()
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "conda-forge" || cfg.Channels[1] != "bioconda" {
		t.Errorf("Channels = %v, want declaration order preserved", cfg.Channels)
	}
	if len(cfg.Platforms) != 2 {
		t.Errorf("Platforms = %v", cfg.Platforms)
	}
	if cfg.Variables["PIPELINE_MODE"] != "batch" {
		t.Errorf("Variables = %v", cfg.Variables)
	}
	if cfg.Activation == nil || len(cfg.Activation.Scripts) != 1 || cfg.Activation.EnvScript == "" {
		t.Errorf("Activation = %+v", cfg.Activation)
	}

	doc := f.Document()
	if len(doc.SystemRequirements) != 1 || doc.SystemRequirements[0].Name != "libc" || doc.SystemRequirements[0].Version != ">=2.28" {
		t.Errorf("SystemRequirements = %v", doc.SystemRequirements)
	}

	deps := f.Single.Dependencies
	if len(deps) != 3 {
		t.Fatalf("got %d dependencies, want 3", len(deps))
	}
	// Sorted by package name: mylib, numpy, python.
	if deps[0].Name != "mylib" || deps[0].Kind != DependencyEditable {
		t.Errorf("deps[0] = %+v, want editable mylib", deps[0])
	}
	if deps[0].Local == nil || string(deps[0].Local.Path) != "../mylib" || !deps[0].Local.Editable {
		t.Errorf("mylib Local = %+v", deps[0].Local)
	}
	if deps[1].Name != "numpy" || deps[1].Kind != DependencyMatchSpec {
		t.Errorf("deps[1] = %+v, want match spec numpy", deps[1])
	}
	if deps[1].Spec.Version != ">=1.21,<2" || deps[1].Spec.Build != "py311*" {
		t.Errorf("numpy Spec = %+v", deps[1].Spec)
	}
	if deps[2].Name != "python" || deps[2].Kind != DependencyVersion || deps[2].Spec.Version != "3.11.*" {
		t.Errorf("deps[2] = %+v, want version python 3.11.*", deps[2])
	}

	if len(f.Single.PypiDependencies) != 1 || f.Single.PypiDependencies[0].Name != "requests" {
		t.Errorf("PypiDependencies = %v", f.Single.PypiDependencies)
	}

	linux, ok := f.Single.Platforms["linux-64"]
	if !ok || len(linux.Dependencies) != 1 || linux.Dependencies[0].Name != "mkl" {
		t.Errorf("Platforms[linux-64] = %+v", linux)
	}

	merged := f.Single.DependenciesFor("linux-64")
	if len(merged) != 4 || merged[3].Name != "mkl" {
		t.Errorf("DependenciesFor(linux-64) = %v, want base plus mkl", merged)
	}
	if got := f.Single.DependenciesFor("osx-arm64"); len(got) != 3 {
		t.Errorf("DependenciesFor(osx-arm64) = %v, want base set only", got)
	}

	if names := f.EnvironmentNames(); len(names) != 1 || names[0] != "data-pipeline" {
		t.Errorf("EnvironmentNames() = %v, want [data-pipeline]", names)
	}
}

func TestParseBytes_MultiEnvironment(t *testing.T) {
	f, err := ParseBytes([]byte(multiEnvDoc), "denv.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if f.Shape != ShapeMulti {
		t.Fatalf("Shape = %q, want %q", f.Shape, ShapeMulti)
	}
	if f.Multi == nil || f.Single != nil {
		t.Fatal("exactly Multi should be populated for a multi-environment document")
	}
	if len(f.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", f.Diagnostics)
	}

	m := f.Multi
	if names := m.GroupNames(); len(names) != 2 || names[0] != "base" || names[1] != "dev" {
		t.Errorf("GroupNames() = %v, want [base dev]", names)
	}

	base := m.Groups["base"]
	if base.Description != "Core interpreter and numerics" {
		t.Errorf("base description = %q", base.Description)
	}
	if len(base.Config.Channels) != 1 || base.Config.Channels[0] != "conda-forge" {
		t.Errorf("base config = %+v", base.Config)
	}
	if len(base.Dependencies) != 2 {
		t.Fatalf("base has %d dependencies, want 2", len(base.Dependencies))
	}
	if base.Dependencies[0].Name != "numpy" || base.Dependencies[0].Kind != DependencyMatchSpec {
		t.Errorf("base deps[0] = %+v", base.Dependencies[0])
	}
	if base.Dependencies[1].Name != "python" || base.Dependencies[1].Kind != DependencyVersion {
		t.Errorf("base deps[1] = %+v", base.Dependencies[1])
	}
	if linux, ok := base.Platforms["linux-64"]; !ok || len(linux.Dependencies) != 1 {
		t.Errorf("base Platforms = %+v", base.Platforms)
	}

	dev := m.Groups["dev"]
	if len(dev.Dependencies) != 1 || dev.Dependencies[0].Name != "pytest" {
		t.Errorf("dev deps = %v", dev.Dependencies)
	}
	if len(dev.PypiDependencies) != 1 || dev.PypiDependencies[0].Name != "ruff" {
		t.Errorf("dev pypi deps = %v", dev.PypiDependencies)
	}

	if refs := m.Environments["dev"]; len(refs) != 2 || refs[0] != "base" || refs[1] != "dev" {
		t.Errorf("environments.dev = %v, want [base dev] in declaration order", refs)
	}
	if names := f.EnvironmentNames(); len(names) != 2 || names[0] != "default" || names[1] != "dev" {
		t.Errorf("EnvironmentNames() = %v, want [default dev]", names)
	}
}

func TestParseBytes_VersionDefaultsToOne(t *testing.T) {
	doc := `
[about]
name = "minimal"
revision = "0.1.0"
description = "Smallest valid specification"

[about.urls]
homepage = "https://example.com/minimal"

[config]

[dependencies]
python = "3.12.*"
`
	f, err := ParseBytes([]byte(doc), "denv.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if f.Version() != SupportedSchemaVersion {
		t.Errorf("Version() = %d, want the default %d", f.Version(), SupportedSchemaVersion)
	}
}

func TestParseBytes_UnsupportedVersion(t *testing.T) {
	doc := strings.Replace(singleEnvDoc, "version = 1", "version = 3", 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for unsupported schema version, got nil")
	}
	if !errors.Is(err, ErrUnsupportedSchemaVersion) {
		t.Errorf("error should wrap ErrUnsupportedSchemaVersion, got: %v", err)
	}

	var verErr *UnsupportedSchemaVersionError
	if !errors.As(err, &verErr) {
		t.Fatalf("error should be *UnsupportedSchemaVersionError, got %T", err)
	}
	if verErr.Version != 3 {
		t.Errorf("Version = %d, want 3", verErr.Version)
	}
	if !strings.Contains(err.Error(), "unsupported schema version 3") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParseBytes_VersionOutOfRange(t *testing.T) {
	// Every non-1 value takes the same typed-error path, including zero and
	// negatives; the schema does not pre-filter them.
	for _, version := range []int{0, -1} {
		doc := strings.Replace(singleEnvDoc, "version = 1", fmt.Sprintf("version = %d", version), 1)

		_, err := ParseBytes([]byte(doc), "denv.toml")
		if !errors.Is(err, ErrUnsupportedSchemaVersion) {
			t.Errorf("version %d: error should wrap ErrUnsupportedSchemaVersion, got: %v", version, err)
			continue
		}
		var verErr *UnsupportedSchemaVersionError
		if !errors.As(err, &verErr) {
			t.Fatalf("version %d: error should be *UnsupportedSchemaVersionError, got %T", version, err)
		}
		if verErr.Version != version {
			t.Errorf("Version = %d, want %d", verErr.Version, version)
		}
	}
}

func TestParseBytes_TOMLSyntaxError(t *testing.T) {
	_, err := ParseBytes([]byte("[about\nname = \"x\"\n"), "denv.toml")
	if err == nil {
		t.Fatal("expected TOML syntax error, got nil")
	}
	if !strings.Contains(err.Error(), "denv.toml:1:") {
		t.Errorf("error should carry file and position, got: %v", err)
	}
}

func TestParseBytes_AmbiguousShape(t *testing.T) {
	doc := `
[dependencies]
python = "3.11.*"

[groups.base.config]
`
	_, err := ParseBytes([]byte(doc), "denv.toml")
	if !errors.Is(err, ErrAmbiguousShape) {
		t.Errorf("expected ErrAmbiguousShape, got: %v", err)
	}
}

func TestParseBytes_MissingSections(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		section string
	}{
		{
			name:    "missing about",
			doc:     "[config]\n",
			section: "about",
		},
		{
			name: "missing config",
			doc: `
[about]
name = "x"
revision = "1"
description = "d"

[about.urls]
homepage = "https://example.com"
`,
			section: "config",
		},
		{
			name: "missing about.urls",
			doc: `
[about]
name = "x"
revision = "1"
description = "d"

[config]
`,
			section: "about.urls",
		},
		{
			name:    "empty document",
			doc:     "",
			section: "about",
		},
		{
			name: "group without config",
			doc: `
[about]
name = "x"
revision = "1"
description = "d"

[about.urls]
homepage = "https://example.com"

[config]

[groups.base.dependencies]
python = "3.11.*"

[environments]
default = ["base"]
`,
			section: "groups.base.config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc), "denv.toml")
			if err == nil {
				t.Fatalf("expected missing section error for [%s], got nil", tt.section)
			}
			if !errors.Is(err, ErrMissingSection) {
				t.Errorf("error should wrap ErrMissingSection, got: %v", err)
			}
			var secErr *MissingSectionError
			if !errors.As(err, &secErr) {
				t.Fatalf("error should be *MissingSectionError, got %T", err)
			}
			if secErr.Section != tt.section {
				t.Errorf("Section = %q, want %q", secErr.Section, tt.section)
			}
			if !strings.Contains(err.Error(), "["+tt.section+"]") {
				t.Errorf("message should name the section, got: %v", err)
			}
		})
	}
}

func TestParseBytes_UnknownTopLevelKey(t *testing.T) {
	doc := singleEnvDoc + "\n[extras]\nanswer = \"42\"\n"

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for unknown top-level table, got nil")
	}
	if !strings.Contains(err.Error(), "not allowed") {
		t.Errorf("error should mention the disallowed field, got: %v", err)
	}
}

func TestParseBytes_UnknownDependencyField(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`numpy = { version = ">=1.21,<2", build = "py311*" }`,
		`numpy = { versoin = ">=1.21" }`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for misspelled dependency field, got nil")
	}
	if !strings.Contains(err.Error(), "numpy") {
		t.Errorf("error should point at the offending entry, got: %v", err)
	}
}

func TestParseBytes_MissingDescription(t *testing.T) {
	doc := strings.Replace(singleEnvDoc, "description = \"Batch data processing environment\"\n", "", 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for missing about.description, got nil")
	}
	if !strings.Contains(err.Error(), "about.description") {
		t.Errorf("error should point at about.description, got: %v", err)
	}
}

func TestParseBytes_RejectsNonHTTPURL(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`repository = "https://github.com/example/pipeline"`,
		`repository = "git@github.com:example/pipeline.git"`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for non-http URL, got nil")
	}
	if !strings.Contains(err.Error(), "urls") {
		t.Errorf("error should point at the urls table, got: %v", err)
	}
}

func TestParseBytes_FieldErrorsCollected(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`platforms = ["linux-64", "osx-arm64"]`,
		`platforms = ["linux-128"]`, 1)
	doc = strings.Replace(doc,
		`PIPELINE_MODE = "batch"`,
		`"1BAD" = "x"`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	if !errors.Is(err, ErrInvalidEnvFile) {
		t.Errorf("error should wrap ErrInvalidEnvFile, got: %v", err)
	}

	var fileErr *InvalidEnvFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("error should be *InvalidEnvFileError, got %T", err)
	}
	if len(fileErr.FieldErrors) != 2 {
		t.Fatalf("got %d field errors, want 2: %v", len(fileErr.FieldErrors), fileErr.FieldErrors)
	}
	if fileErr.FilePath != "denv.toml" {
		t.Errorf("FilePath = %q, want denv.toml", fileErr.FilePath)
	}

	msg := err.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("message should count the errors, got: %s", msg)
	}
	if !strings.Contains(msg, "unknown platform") || !strings.Contains(msg, "1BAD") {
		t.Errorf("message should list both findings, got: %s", msg)
	}
}

func TestParseBytes_MixedDependencyForms(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`mylib = { path = "../mylib", editable = true }`,
		`mylib = { version = ">=1.0", path = "../mylib" }`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for mixed declaration forms, got nil")
	}
	if !errors.Is(err, ErrInvalidEnvFile) {
		t.Errorf("error should wrap ErrInvalidEnvFile, got: %v", err)
	}
	if !strings.Contains(err.Error(), "mixes match fields") {
		t.Errorf("error should explain the form conflict, got: %v", err)
	}
}

func TestParseBytes_ActivationScriptValidation(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`scripts = ["scripts/setup.sh"]`,
		`scripts = ["/etc/profile"]`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for absolute activation script path, got nil")
	}
	if !strings.Contains(err.Error(), "must be relative") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParseBytes_EnvScriptSyntaxError(t *testing.T) {
	doc := strings.Replace(singleEnvDoc,
		`env_script = "export PATH=\"$PIPELINE_HOME/bin:$PATH\""`,
		`env_script = "if true; then"`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for broken shell fragment, got nil")
	}
	if !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestParseBytes_MultiUndefinedGroups(t *testing.T) {
	doc := strings.Replace(multiEnvDoc,
		`dev = ["base", "dev"]`,
		`dev = ["base", "dev", "cuda"]`, 1)

	_, err := ParseBytes([]byte(doc), "denv.toml")
	if err == nil {
		t.Fatal("expected error for undefined group reference, got nil")
	}
	if !errors.Is(err, ErrUndefinedGroups) {
		t.Errorf("error should wrap ErrUndefinedGroups, got: %v", err)
	}
	if !strings.Contains(err.Error(), "dev: cuda") {
		t.Errorf("error should name the environment and missing group, got: %v", err)
	}
}

func TestParseBytes_MultiUnusedGroupWarning(t *testing.T) {
	doc := strings.Replace(multiEnvDoc,
		`dev = ["base", "dev"]`,
		`dev = ["base"]`, 1)

	f, err := ParseBytes([]byte(doc), "denv.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if len(f.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(f.Diagnostics), f.Diagnostics)
	}

	d := f.Diagnostics[0]
	if d.Severity != SeverityWarning || d.Code != CodeUnusedGroups {
		t.Errorf("diagnostic = %+v, want unused groups warning", d)
	}
	if !strings.Contains(d.Message, "dev") {
		t.Errorf("message should name the unused group, got: %s", d.Message)
	}
	if d.Path != "denv.toml" {
		t.Errorf("Path = %q, want denv.toml", d.Path)
	}
}

func TestParseBytes_MultiNoEnvironments(t *testing.T) {
	doc := `
[about]
name = "analytics"
revision = "1.0.0"
description = "d"

[about.urls]
homepage = "https://example.com"

[config]

[groups.base.config]

[groups.base.dependencies]
python = "3.11.*"
`
	_, err := ParseBytes([]byte(doc), "denv.toml")
	if !errors.Is(err, ErrNoEnvironments) {
		t.Errorf("expected ErrNoEnvironments, got: %v", err)
	}
}

func TestParseBytes_MultiNoGroups(t *testing.T) {
	doc := `
[about]
name = "analytics"
revision = "1.0.0"
description = "d"

[about.urls]
homepage = "https://example.com"

[config]

[environments]
default = ["base"]
`
	_, err := ParseBytes([]byte(doc), "denv.toml")
	if !errors.Is(err, ErrNoGroups) {
		t.Errorf("expected ErrNoGroups, got: %v", err)
	}
}

func TestParse_FromFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "denv-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	path := filepath.Join(tmpDir, "denv.toml")
	if writeErr := os.WriteFile(path, []byte(singleEnvDoc), 0o644); writeErr != nil {
		t.Fatalf("Failed to write environment file: %v", writeErr)
	}

	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.FilePath != path {
		t.Errorf("FilePath = %q, want %q", f.FilePath, path)
	}
	if f.Shape != ShapeSingle {
		t.Errorf("Shape = %q, want %q", f.Shape, ShapeSingle)
	}
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse("/nonexistent/denv.toml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read environment file") {
		t.Errorf("unexpected message: %v", err)
	}
}
