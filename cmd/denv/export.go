// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/environment"

	"github.com/spf13/cobra"
)

// newExportCommand creates the `denv export` command.
func newExportCommand(app *App) *cobra.Command {
	var (
		envName  string
		platform string
		format   string
		output   string
	)

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a resolved environment for a host package manager",
		Long: `Export a resolved environment for a host package manager.

The selected environment is composed into its flat, resolved form and
serialized. The output is written to stdout unless --output names a file.

Examples:
  denv export                         Export as TOML to stdout
  denv export --format json           Export as JSON
  denv export --env dev -o dev.json --format json
                                      Export 'dev' to a file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stderr := cmd.ErrOrStderr()

			exportFormat := environment.ExportFormat(format)
			if !exportFormat.IsValid() {
				return &environment.InvalidExportFormatError{Value: exportFormat}
			}

			cfg, cfgDiags := app.loadConfig(ctx, cfgFile)
			app.Diagnostics.Render(ctx, cfgDiags, stderr)

			f, _, err := app.loadEnvFile(ctx, cfg, explicitFilePath(args))
			if err != nil {
				return failCommand(cmd, err)
			}

			env, err := composeEnvironment(f, envName, envfile.PlatformName(platform))
			if err != nil {
				return failCommand(cmd, err)
			}
			app.Diagnostics.Render(ctx, env.Diagnostics, stderr)

			data, err := environment.Export(env, exportFormat)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %s to %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(env.Name), output)
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&envName, "env", "e", "", "environment to export (required when the file declares several)")
	exportCmd.Flags().StringVarP(&platform, "platform", "p", "", "platform whose dependency overlay to fold in (e.g. linux-64)")
	exportCmd.Flags().StringVar(&format, "format", "toml", "output format (toml, json)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	_ = exportCmd.RegisterFlagCompletionFunc("env", environmentNameCompletion(app))
	_ = exportCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"toml", "json"}, cobra.ShellCompDirectiveNoFileComp))

	return exportCmd
}
