// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/environment"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// newShowCommand creates the `denv show` command.
func newShowCommand(app *App) *cobra.Command {
	var (
		envName  string
		platform string
	)

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Show a resolved environment",
		Long: `Show a resolved environment.

The environment file is parsed and the selected environment is composed
into its flat, resolved form: for multi-environment files the referenced
dependency groups are merged in order, with later groups overriding
earlier ones per package.

Examples:
  denv show                        Show the (only) environment
  denv show --env dev              Show the 'dev' environment
  denv show --env dev --platform linux-64
                                   Fold in linux-64 platform dependencies`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			cfg, cfgDiags := app.loadConfig(ctx, cfgFile)
			app.Diagnostics.Render(ctx, cfgDiags, stderr)

			f, loc, err := app.loadEnvFile(ctx, cfg, explicitFilePath(args))
			if err != nil {
				return failCommand(cmd, err)
			}

			env, err := composeEnvironment(f, envName, envfile.PlatformName(platform))
			if err != nil {
				return failCommand(cmd, err)
			}

			app.Diagnostics.Render(ctx, env.Diagnostics, stderr)

			md := environmentMarkdown(env, loc.Path)
			rendered, renderErr := glamour.Render(md, "dark")
			if renderErr != nil {
				// Fall back to the raw markdown when the terminal renderer
				// cannot be constructed.
				rendered = md
			}
			fmt.Fprint(stdout, rendered)
			if env.Activation != nil {
				fmt.Fprintln(stdout, renderHintStyle.Render("activation hooks configured"))
			}
			return nil
		},
	}

	showCmd.Flags().StringVarP(&envName, "env", "e", "", "environment to show (required when the file declares several)")
	showCmd.Flags().StringVarP(&platform, "platform", "p", "", "platform whose dependency overlay to fold in (e.g. linux-64)")
	_ = showCmd.RegisterFlagCompletionFunc("env", environmentNameCompletion(app))

	return showCmd
}

// environmentNameCompletion completes --env against the environments the
// discovered file declares.
func environmentNameCompletion(app *App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		ctx := cmd.Context()
		cfg, _ := app.loadConfig(ctx, cfgFile)
		loc, err := app.Specs.Locate(ctx, cfg.Discovery, explicitFilePath(args))
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names, err := app.Specs.Environments(ctx, loc.Path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// composeEnvironment resolves the selected environment of a parsed file
// into its descriptor form. An empty name selects the only declared
// environment; when several are declared the name is required.
func composeEnvironment(f *envfile.EnvFile, envName string, platform envfile.PlatformName) (*environment.Environment, error) {
	opts := environment.Options{Platform: platform}

	if f.Shape == envfile.ShapeSingle {
		if envName != "" && envName != f.Single.About.Name {
			return nil, &environment.UnknownEnvironmentError{
				Name:      envfile.EnvironmentName(envName),
				Available: []envfile.EnvironmentName{envfile.EnvironmentName(f.Single.About.Name)},
			}
		}
		return environment.FromSingle(f.Single, opts)
	}

	if envName == "" {
		names := f.EnvironmentNames()
		if len(names) != 1 {
			return nil, fmt.Errorf("the file declares %d environments; select one with --env (available: %s)", len(names), strings.Join(names, ", "))
		}
		envName = names[0]
	}
	return environment.FromMulti(f.Multi, envfile.EnvironmentName(envName), opts)
}

// environmentMarkdown renders a resolved environment as a markdown card.
func environmentMarkdown(env *environment.Environment, path string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Environment: %s\n\n", env.Name)
	fmt.Fprintf(&sb, "`%s`\n", path)

	writeNameSection(&sb, "Channels", env.Channels)
	writeNameSection(&sb, "Platforms", env.Platforms)

	if len(env.Variables) > 0 {
		sb.WriteString("\n## Variables\n\n")
		names := make([]string, 0, len(env.Variables))
		for name := range env.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- `%s=%s`\n", name, env.Variables[name])
		}
	}

	writeSpecSection(&sb, "Packages", env.Packages)
	writeSpecSection(&sb, "PyPI packages", env.PypiPackages)

	if len(env.LocalPackages) > 0 {
		sb.WriteString("\n## Local packages\n\n")
		for _, p := range env.LocalPackages {
			fmt.Fprintf(&sb, "- %s\n", p.String())
		}
	}

	writeSpecSection(&sb, "System requirements", env.SystemRequirements)

	fmt.Fprintf(&sb, "\n**%d package(s) total**\n", env.PackageCount())
	return sb.String()
}

// writeNameSection writes one markdown bullet list of string-typed names,
// skipping empty lists.
func writeNameSection[T ~string](sb *strings.Builder, title string, values []T) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	for _, v := range values {
		fmt.Fprintf(sb, "- %s\n", string(v))
	}
}

// writeSpecSection writes one markdown bullet list of package specs,
// skipping empty lists.
func writeSpecSection(sb *strings.Builder, title string, specs []environment.PackageSpec) {
	if len(specs) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	for _, spec := range specs {
		fmt.Fprintf(sb, "- %s\n", spec.String())
	}
}
