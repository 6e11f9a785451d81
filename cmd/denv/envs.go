// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/denvkit/denv/pkg/envfile"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// newEnvsCommand creates the `denv envs` command.
func newEnvsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "envs [file]",
		Short: "List the environments an environment file declares",
		Long: `List the environments an environment file declares.

A single-environment file declares exactly one environment, named after
its about section. A multi-environment file declares one environment per
entry in its environments table; each is listed with the dependency
groups composing it.`,
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

			fmt.Fprintln(stdout, TitleStyle.Render("Environments"))
			fmt.Fprintf(stdout, "%s: %s\n", SubtitleStyle.Render("file"), loc.Path)

			fmt.Fprintln(stdout, environmentsTable(f))
			return nil
		},
	}
}

// environmentsTable renders the declared environments as a two-column
// table. Single-environment files get one row with an empty groups column.
func environmentsTable(f *envfile.EnvFile) *table.Table {
	rows := make([][]string, 0, len(f.EnvironmentNames()))
	for _, name := range f.EnvironmentNames() {
		groupList := "-"
		if f.Shape == envfile.ShapeMulti {
			groups := f.Multi.Environments[envfile.EnvironmentName(name)]
			parts := make([]string, len(groups))
			for i, g := range groups {
				parts[i] = string(g)
			}
			groupList = strings.Join(parts, ", ")
		}
		rows = append(rows, []string{name, groupList})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return SubtitleStyle.Padding(0, 1)
			}
			return CmdStyle.Padding(0, 1)
		}).
		Headers("ENVIRONMENT", "GROUPS").
		Rows(rows...)
}

// explicitFilePath resolves the environment file for a command invocation:
// a positional argument wins over the --file flag; both may be empty, in
// which case discovery runs.
func explicitFilePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return envFilePath
}
