// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/types"

	"github.com/spf13/cobra"
)

var (
	initForce bool
	initShape string

	// initCmd creates a new environment file
	initCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new environment file in the current directory",
		Long: `Create a new environment file in the current directory.

This command generates a starter denv.toml describing either a single
environment (--shape single, the default) or multiple environments
composed from dependency groups (--shape multi).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing environment file")
	initCmd.Flags().StringVarP(&initShape, "shape", "s", "single", "document shape to generate (single, multi)")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := "denv.toml"
	if len(args) > 0 {
		filename = args[0]
	}

	// Check if file exists
	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	shape := envfile.Shape(initShape)
	if !shape.IsValid() {
		return fmt.Errorf("invalid shape %q: must be 'single' or 'multi'", initShape)
	}

	content := envfile.GenerateTOML(starterEnvFile(shape, filename))

	// Write file
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(stdout, "  1. Edit the file to declare your dependencies")
	fmt.Fprintln(stdout, "  2. Run 'denv validate' to check it")
	fmt.Fprintln(stdout, "  3. Run 'denv show' to see the resolved environment")

	return nil
}

// starterEnvFile builds the starter document for the requested shape. The
// directory name seeds the environment name.
func starterEnvFile(shape envfile.Shape, filename string) *envfile.EnvFile {
	name := projectName(filename)

	doc := envfile.Document{
		Version: envfile.SupportedSchemaVersion,
		About: envfile.About{
			Name:        name,
			Revision:    "0.1.0",
			Description: types.DescriptionText("Describe your environment here"),
			URLs:        envfile.Urls{"homepage": "https://example.com/" + name},
		},
		Config: envfile.Config{
			Channels: []envfile.ChannelName{"conda-forge"},
		},
	}

	if shape == envfile.ShapeSingle {
		return &envfile.EnvFile{
			Shape: envfile.ShapeSingle,
			Single: &envfile.SingleEnvironment{
				Document: doc,
				Dependencies: []envfile.Dependency{
					versionDependency("python", ">=3.11"),
				},
			},
		}
	}

	groupConfig := envfile.Config{
		Channels: []envfile.ChannelName{"conda-forge"},
	}

	return &envfile.EnvFile{
		Shape: envfile.ShapeMulti,
		Multi: &envfile.MultiEnvironment{
			Document: doc,
			Groups: map[envfile.GroupName]envfile.Group{
				"base": {
					Config:      groupConfig,
					Description: types.DescriptionText("Packages every environment needs"),
					Dependencies: []envfile.Dependency{
						versionDependency("python", ">=3.11"),
					},
				},
				"test": {
					Config:      groupConfig,
					Description: types.DescriptionText("Additional packages for running tests"),
					Dependencies: []envfile.Dependency{
						versionDependency("pytest", ">=8"),
					},
				},
			},
			Environments: map[envfile.EnvironmentName][]envfile.GroupName{
				"default": {"base"},
				"test":    {"base", "test"},
			},
		},
	}
}

// projectName derives the environment name from the target file's
// directory, falling back to a generic name at the filesystem root.
func projectName(filename string) string {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "my-environment"
	}
	name := filepath.Base(filepath.Dir(abs))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "my-environment"
	}
	return name
}

// versionDependency builds a plain version-constraint dependency entry.
func versionDependency(name envfile.PackageName, version string) envfile.Dependency {
	return envfile.Dependency{
		Name: name,
		Kind: envfile.DependencyVersion,
		Spec: envfile.MatchSpec{Name: name, Version: version},
	}
}
