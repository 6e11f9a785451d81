// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/denvkit/denv/internal/config"
)

const (
	// SourceFlag indicates the file path was given explicitly (e.g., --file).
	SourceFlag Source = iota
	// SourceWorkingDir indicates the file was found in the working directory.
	SourceWorkingDir
	// SourceParent indicates the file was found in a parent directory.
	SourceParent
)

// ErrEnvFileNotFound is the sentinel error wrapped by NotFoundError.
var ErrEnvFileNotFound = errors.New("environment file not found")

type (
	// Source represents where an environment file was found.
	Source int

	// Location is a discovered environment file with its provenance.
	Location struct {
		// Path is the absolute path to the environment file.
		Path string
		// Source indicates where the file was found.
		Source Source
	}

	// NotFoundError is returned when no environment file could be located.
	// It wraps ErrEnvFileNotFound for errors.Is() compatibility.
	NotFoundError struct {
		// SearchNames lists the file names that were probed.
		SearchNames []config.SearchName
		// Dir is the directory the search started from.
		Dir string
	}

	// Locator finds environment files using configured search names.
	Locator struct {
		searchNames   []config.SearchName
		searchParents bool
		// baseDir overrides os.Getwd for tests.
		baseDir string
	}
)

// String returns a human-readable source name
func (s Source) String() string {
	switch s {
	case SourceFlag:
		return "explicit path"
	case SourceWorkingDir:
		return "working directory"
	case SourceParent:
		return "parent directory"
	default:
		return "unknown"
	}
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	names := make([]string, len(e.SearchNames))
	for i, n := range e.SearchNames {
		names[i] = string(n)
	}
	return fmt.Sprintf("no environment file found in %s (looked for %s)", e.Dir, strings.Join(names, ", "))
}

// Unwrap returns ErrEnvFileNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrEnvFileNotFound }

// New creates a Locator from the discovery configuration.
func New(cfg config.DiscoveryConfig) *Locator {
	return &Locator{
		searchNames:   cfg.SearchNames,
		searchParents: cfg.SearchParents,
	}
}

// Locate finds an environment file. An explicit non-empty path wins
// unconditionally; it must name an existing regular file. Otherwise the
// configured search names are probed in the working directory and, when
// parent search is enabled, in each parent directory up to the filesystem
// root. The first hit wins: search names are probed in order within each
// directory before moving up.
func (l *Locator) Locate(ctx context.Context, explicit string) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, fmt.Errorf("locate environment file canceled: %w", err)
	}

	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return Location{}, fmt.Errorf("failed to resolve path %q: %w", explicit, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			return Location{}, &NotFoundError{Dir: filepath.Dir(abs), SearchNames: []config.SearchName{config.SearchName(filepath.Base(abs))}}
		}
		return Location{Path: abs, Source: SourceFlag}, nil
	}

	startDir, err := l.startDir()
	if err != nil {
		return Location{}, fmt.Errorf("failed to determine working directory: %w", err)
	}

	if path := l.probeDir(startDir); path != "" {
		return Location{Path: path, Source: SourceWorkingDir}, nil
	}

	if l.searchParents {
		dir := startDir
		for {
			parent := filepath.Dir(dir)
			if parent == dir {
				break // filesystem root
			}
			dir = parent

			if err := ctx.Err(); err != nil {
				return Location{}, fmt.Errorf("locate environment file canceled: %w", err)
			}
			if path := l.probeDir(dir); path != "" {
				return Location{Path: path, Source: SourceParent}, nil
			}
		}
	}

	return Location{}, &NotFoundError{SearchNames: l.searchNames, Dir: startDir}
}

// startDir resolves the directory the search starts from.
func (l *Locator) startDir() (string, error) {
	if l.baseDir != "" {
		return filepath.Abs(l.baseDir)
	}
	return os.Getwd()
}

// probeDir checks the configured search names in dir and returns the first
// existing regular file, or "" when none match.
func (l *Locator) probeDir(dir string) string {
	for _, name := range l.searchNames {
		path := filepath.Join(dir, string(name))
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			slog.Debug("skipping non-regular file during discovery", "path", path)
			continue
		}
		return path
	}
	return ""
}
