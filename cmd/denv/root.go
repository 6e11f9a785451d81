// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for denv.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/denvkit/denv/internal/discovery"
	"github.com/denvkit/denv/internal/issue"
	"github.com/denvkit/denv/pkg/cueutil"
	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/environment"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// envFilePath allows specifying an explicit environment file
	envFilePath string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "denv",
		Short: "Declarative environment specifications in TOML",
		Long: TitleStyle.Render("denv") + SubtitleStyle.Render(" - Declarative environment specifications in TOML") + `

denv reads environment specification files that describe package
dependencies, channels, and activation behavior. A file either describes
a single environment or composes multiple named environments from
reusable dependency groups.

Files are discovered automatically in the working directory (and its
parents, when enabled), or passed explicitly with --file.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a denv.toml in your project directory
  2. Declare your dependencies in TOML
  3. Validate with: denv validate

` + SubtitleStyle.Render("Examples:") + `
  denv validate             Validate the environment file
  denv envs                 List the environments a file declares
  denv show                 Show a resolved environment
  denv export --format json Export a resolved environment
  denv init                 Create a starter denv.toml
  denv config show          Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/denv/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&envFilePath, "file", "f", "", "environment file (default is discovered from the working directory)")

	app := mustNewApp()

	// Add subcommands
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newEnvsCommand(app))
	rootCmd.AddCommand(newShowCommand(app))
	rootCmd.AddCommand(newExportCommand(app))
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand())
}

// initLogging routes slog output through charmbracelet/log so debug
// messages share the CLI's styling. The --verbose flag enables debug level.
func initLogging() {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	slog.SetDefault(slog.New(logger))
}

// mustNewApp builds the production App. Default dependencies cannot fail.
func mustNewApp() *App {
	app, err := NewApp(Dependencies{})
	if err != nil {
		panic(err)
	}
	return app
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// Errors with a matching issue card get the rendered card followed by the
// concrete error text; ActionableErrors use their Format method; anything
// else falls back to the plain message. In verbose mode, shows the full
// error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	if id, ok := catalogIssue(err); ok {
		if card, renderErr := issue.Get(id).Render("dark"); renderErr == nil {
			return card + "\n" + err.Error()
		}
	}

	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// catalogIssue maps an error chain to its issue card, when one exists.
func catalogIssue(err error) (issue.Id, bool) {
	var cueErr *cueutil.ValidationError

	switch {
	case errors.Is(err, discovery.ErrEnvFileNotFound):
		return issue.EnvFileNotFoundId, true
	case errors.Is(err, errEnvFileTooLarge):
		return issue.FileTooLargeId, true
	case errors.Is(err, envfile.ErrUnsupportedSchemaVersion):
		return issue.UnsupportedSchemaVersionId, true
	case errors.Is(err, envfile.ErrAmbiguousShape):
		return issue.AmbiguousShapeId, true
	case errors.Is(err, envfile.ErrUndefinedGroups):
		return issue.UndefinedGroupsId, true
	case errors.Is(err, environment.ErrUnknownEnvironment):
		return issue.UnknownEnvironmentId, true
	case errors.Is(err, envfile.ErrInvalidEnvFile),
		errors.Is(err, envfile.ErrMissingSection),
		errors.As(err, &cueErr):
		return issue.EnvFileParseErrorId, true
	}
	return 0, false
}

// failCommand renders an error through the issue catalog and signals exit
// code 1 without letting Cobra repeat the message.
func failCommand(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: 1}
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
