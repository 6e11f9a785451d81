// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/denvkit/denv/internal/config"
	"github.com/denvkit/denv/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `denv config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage denv configuration",
		Long: `Manage denv configuration.

Configuration is stored in:
  - Linux: ~/.config/denv/config.cue
  - macOS: ~/Library/Application Support/denv/config.cue
  - Windows: %APPDATA%\denv\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	// Derive config file path from the standard config directory since the
	// provider does not cache resolved paths.
	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := cfgDir + "/config.cue"
		if fileExistsCheck(cfgPath) {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color: %s\n", valueStyle.Render(cfg.UI.Color.String()))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("validation"))
	fmt.Printf("  warnings_as_errors: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Validation.WarningsAsErrors)))
	fmt.Printf("  max_file_size: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Validation.MaxFileSize)))

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("discovery"))
	fmt.Printf("  search_parents: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Discovery.SearchParents)))
	fmt.Printf("  search_names:\n")
	for _, name := range cfg.Discovery.SearchNames {
		fmt.Printf("    - %s\n", valueStyle.Render(string(name)))
	}

	return nil
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err = config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Printf("%s Created default configuration at %s/config.cue\n", SuccessStyle.Render("✓"), cfgDir)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s/config.cue\n", cfgDir)

	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "ui.color":
		mode := config.ColorMode(value)
		if valid, _ := mode.IsValid(); !valid {
			return fmt.Errorf("invalid ui.color: must be 'auto', 'always', or 'never'")
		}
		cfg.UI.Color = mode

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	case "validation.warnings_as_errors":
		cfg.Validation.WarningsAsErrors = value == "true" || value == "1"

	case "validation.max_file_size":
		size, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil || size <= 0 {
			return fmt.Errorf("invalid validation.max_file_size: must be a positive byte count")
		}
		cfg.Validation.MaxFileSize = size

	case "discovery.search_parents":
		cfg.Discovery.SearchParents = value == "true" || value == "1"

	case "discovery.search_names":
		var names []config.SearchName
		for _, name := range strings.Split(value, ",") {
			names = append(names, config.SearchName(strings.TrimSpace(name)))
		}
		probe := config.DiscoveryConfig{SearchNames: names, SearchParents: cfg.Discovery.SearchParents}
		if valid, errs := probe.IsValid(); !valid {
			return fmt.Errorf("invalid discovery.search_names: %v", errs[0])
		}
		cfg.Discovery.SearchNames = names

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: ui.color, ui.verbose, validation.warnings_as_errors, validation.max_file_size, discovery.search_parents, discovery.search_names", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
