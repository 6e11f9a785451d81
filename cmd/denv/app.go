// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/denvkit/denv/internal/config"
	"github.com/denvkit/denv/internal/discovery"
	"github.com/denvkit/denv/internal/issue"
	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/envspec"
	"github.com/denvkit/denv/pkg/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// CodeConfigLoadFailed marks a configuration that could not be loaded;
// the CLI falls back to defaults and reports the failure as a diagnostic.
const CodeConfigLoadFailed = "config_load_failed"

// errEnvFileTooLarge is the sentinel wrapped by size-limit failures so the
// error display can select the matching issue card.
var errEnvFileTooLarge = errors.New("environment file too large")

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer — all Cobra command handlers receive an App
	// reference and delegate business logic through its service interfaces.
	App struct {
		Config      ConfigProvider
		Specs       SpecService
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests can
	// supply mock implementations to isolate specific service behavior.
	Dependencies struct {
		Config      ConfigProvider
		Specs       SpecService
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock
	// implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// SpecService locates and loads environment specification files.
	// Implementations must not write directly to stdout/stderr; diagnostics
	// are returned as structured data for the CLI layer to render.
	SpecService interface {
		Locate(ctx context.Context, cfg config.DiscoveryConfig, explicit string) (discovery.Location, error)
		Load(ctx context.Context, path string) (*envfile.EnvFile, error)
		Environments(ctx context.Context, path string) ([]string, error)
	}

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []envfile.Diagnostic, stderr io.Writer)
	}

	// defaultSpecService implements SpecService on top of the handler
	// registry: file location via discovery, format detection and parsing
	// via the registered handlers.
	defaultSpecService struct {
		registry *envspec.Registry
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Specs == nil {
		deps.Specs = &defaultSpecService{registry: envspec.DefaultRegistry()}
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Config:      deps.Config,
		Specs:       deps.Specs,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// Locate finds an environment file using the configured search names.
func (s *defaultSpecService) Locate(ctx context.Context, cfg config.DiscoveryConfig, explicit string) (discovery.Location, error) {
	return discovery.New(cfg).Locate(ctx, explicit)
}

// Load parses the environment file at path through the first handler that
// recognizes it.
func (s *defaultSpecService) Load(ctx context.Context, path string) (*envfile.EnvFile, error) {
	handler, err := s.registry.Detect(path)
	if err != nil {
		return nil, err
	}
	return handler.Load(ctx, path)
}

// Environments lists the environment names the file at path can produce.
func (s *defaultSpecService) Environments(ctx context.Context, path string) ([]string, error) {
	handler, err := s.registry.Detect(path)
	if err != nil {
		return nil, err
	}
	return handler.Environments(ctx, path)
}

// loadConfig loads configuration for a command invocation, falling back to
// defaults on failure. The returned diagnostics are rendered by the caller.
// UI settings from the config are applied here: verbose only escalates
// (the flag wins when set), and the color mode adjusts the lipgloss profile.
func (a *App) loadConfig(ctx context.Context, configPath string) (*config.Config, []envfile.Diagnostic) {
	cfg, diags := loadConfigWithFallback(ctx, a.Config, configPath)

	if cfg.UI.Verbose && !verbose {
		verbose = true
	}
	switch cfg.UI.Color {
	case config.ColorModeAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
	case config.ColorModeNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return cfg, diags
}

// loadEnvFile resolves and parses the environment file for a command
// invocation: locate (explicit path or discovery), enforce the configured
// size limit, then parse. The returned EnvFile carries the validation
// diagnostics for the caller to render.
func (a *App) loadEnvFile(ctx context.Context, cfg *config.Config, explicit string) (*envfile.EnvFile, discovery.Location, error) {
	loc, err := a.Specs.Locate(ctx, cfg.Discovery, explicit)
	if err != nil {
		return nil, discovery.Location{}, err
	}

	if err := checkEnvFileSize(loc.Path, cfg.Validation.MaxFileSize); err != nil {
		return nil, loc, err
	}

	f, err := a.Specs.Load(ctx, loc.Path)
	if err != nil {
		return nil, loc, err
	}
	return f, loc, nil
}

// checkEnvFileSize rejects environment files larger than the configured
// limit before any parse work happens.
func checkEnvFileSize(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxSize {
		return issue.NewErrorContext().
			WithOperation("load environment file").
			WithResource(path).
			WithSuggestion(fmt.Sprintf("The file is %d bytes; the configured limit is %d bytes", info.Size(), maxSize)).
			WithSuggestion("Raise validation.max_file_size in your config if the file is legitimate").
			Wrap(fmt.Errorf("%w: file size %d bytes exceeds maximum %d bytes", errEnvFileTooLarge, info.Size(), maxSize)).
			BuildError()
	}
	return nil
}

// loadConfigWithFallback loads configuration via the provider. On failure it
// returns defaults with a diagnostic so callers stay operational.
//
// Diagnostic severity depends on the failure mode:
//   - Explicit --config path: always SeverityError (user-specified file must work).
//   - Default path with existing but malformed file: SeverityError (syntax errors
//     in a file the user created should not be silently downgraded to a warning).
//   - Default path with missing config dir or similar infrastructure error:
//     SeverityWarning (common on fresh installs, defaults are appropriate).
func loadConfigWithFallback(ctx context.Context, provider ConfigProvider, configPath string) (*config.Config, []envfile.Diagnostic) {
	cfg, err := provider.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(configPath)})
	if err == nil {
		return cfg, nil
	}

	// When the user explicitly specified a config path, do not silently fall
	// back to defaults — surface the error as an error diagnostic so callers
	// can decide whether to abort.
	if configPath != "" {
		return config.DefaultConfig(), []envfile.Diagnostic{{
			Severity: envfile.SeverityError,
			Code:     CodeConfigLoadFailed,
			Message:  fmt.Sprintf("failed to load config from %s: %v", configPath, err),
			Path:     configPath,
			Cause:    err,
		}}
	}

	// Default config path: the loader only returns errors for existing files;
	// missing files silently return defaults. So if we got an error here, a
	// config file likely exists but is malformed — use SeverityError to
	// surface it clearly.
	severity := envfile.SeverityError
	if errors.Is(err, os.ErrNotExist) {
		severity = envfile.SeverityWarning
	}

	return config.DefaultConfig(), []envfile.Diagnostic{{
		Severity: severity,
		Code:     CodeConfigLoadFailed,
		Message:  fmt.Sprintf("failed to load config, using defaults: %v", err),
		Cause:    err,
	}}
}

// hasErrorDiagnostics reports whether any diagnostic is error severity.
func hasErrorDiagnostics(diags []envfile.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == envfile.SeverityError {
			return true
		}
	}
	return false
}

// Render writes structured diagnostics to stderr with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []envfile.Diagnostic, stderr io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == envfile.SeverityError {
			prefix = ErrorStyle.Render("error")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}
