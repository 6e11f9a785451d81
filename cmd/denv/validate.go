// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/denvkit/denv/pkg/envfile"

	"github.com/spf13/cobra"
)

// newValidateCommand creates the `denv validate` command.
// It locates the environment file, parses it, and reports every finding in
// a single pass rather than stopping at the first problem.
func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate an environment file",
		Long: `Validate an environment file.

The file is located through the configured search names (or taken from
--file), parsed, and checked: schema version, metadata, dependency
declarations, and for multi-environment files the referential integrity
between groups and environments.

Warnings (such as dependency groups no environment uses) do not fail
validation unless validation.warnings_as_errors is enabled in the
configuration.

Examples:
  denv validate               Validate the discovered file
  denv validate ./dev.toml    Validate a specific file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, app, explicitFilePath(args))
		},
	}
}

// runValidate performs the full validation pass and renders styled results.
func runValidate(cmd *cobra.Command, app *App, explicit string) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, cfgDiags := app.loadConfig(ctx, cfgFile)
	app.Diagnostics.Render(ctx, cfgDiags, stderr)
	if cfgFile != "" && hasErrorDiagnostics(cfgDiags) {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	f, loc, err := app.loadEnvFile(ctx, cfg, explicit)
	if err != nil {
		fmt.Fprintln(stderr, renderHeaderStyle.Render("Validation failed"))
		fmt.Fprintln(stderr, formatErrorForDisplay(err, verbose))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	if len(f.Diagnostics) > 0 {
		fmt.Fprintf(stderr, "%s %d finding(s):\n", WarningStyle.Render("!"), len(f.Diagnostics))
		app.Diagnostics.Render(ctx, f.Diagnostics, stderr)
		fmt.Fprintln(stderr)
	}

	if cfg.Validation.WarningsAsErrors && len(envfile.Warnings(f.Diagnostics)) > 0 {
		fmt.Fprintf(stderr, "%s Validation failed: warnings are treated as errors\n", ErrorStyle.Render("✗"))
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return &ExitError{Code: 1}
	}

	fmt.Fprintf(stdout, "%s %s is valid\n", SuccessStyle.Render("✓"), CmdStyle.Render(loc.Path))
	fmt.Fprintf(stdout, "  %s %s\n", renderLabelStyle.Render("shape:"), renderValueStyle.Render(f.Shape.String()))
	fmt.Fprintf(stdout, "  %s %s\n", renderLabelStyle.Render("source:"), renderValueStyle.Render(loc.Source.String()))

	envs := f.EnvironmentNames()
	fmt.Fprintf(stdout, "  %s %d\n", renderLabelStyle.Render("environments:"), len(envs))
	if verbose {
		for _, name := range envs {
			fmt.Fprintf(stdout, "    - %s\n", VerboseStyle.Render(name))
		}
	}

	return nil
}
