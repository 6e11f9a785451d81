// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/denvkit/denv/internal/config"
	"github.com/denvkit/denv/internal/discovery"
	"github.com/denvkit/denv/internal/issue"
	"github.com/denvkit/denv/pkg/cueutil"
	"github.com/denvkit/denv/pkg/envfile"
	"github.com/denvkit/denv/pkg/environment"
)

func TestCatalogIssue(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		wantId issue.Id
		wantOk bool
	}{
		{
			name:   "file not found",
			err:    &discovery.NotFoundError{Dir: "/work", SearchNames: []config.SearchName{"denv.toml"}},
			wantId: issue.EnvFileNotFoundId,
			wantOk: true,
		},
		{
			name:   "file too large",
			err:    fmt.Errorf("load: %w", errEnvFileTooLarge),
			wantId: issue.FileTooLargeId,
			wantOk: true,
		},
		{
			name:   "unsupported schema version",
			err:    &envfile.UnsupportedSchemaVersionError{Version: 9},
			wantId: issue.UnsupportedSchemaVersionId,
			wantOk: true,
		},
		{
			name:   "ambiguous shape",
			err:    &envfile.AmbiguousShapeError{SingleKeys: []string{"dependencies"}, MultiKeys: []string{"groups"}},
			wantId: issue.AmbiguousShapeId,
			wantOk: true,
		},
		{
			name:   "undefined groups",
			err:    &envfile.UndefinedGroupsError{Missing: map[envfile.EnvironmentName][]envfile.GroupName{"dev": {"extras"}}},
			wantId: issue.UndefinedGroupsId,
			wantOk: true,
		},
		{
			name:   "unknown environment",
			err:    &environment.UnknownEnvironmentError{Name: "nope"},
			wantId: issue.UnknownEnvironmentId,
			wantOk: true,
		},
		{
			name:   "invalid env file",
			err:    &envfile.InvalidEnvFileError{FilePath: "denv.toml"},
			wantId: issue.EnvFileParseErrorId,
			wantOk: true,
		},
		{
			name:   "missing section",
			err:    &envfile.MissingSectionError{Section: "about"},
			wantId: issue.EnvFileParseErrorId,
			wantOk: true,
		},
		{
			name:   "schema validation",
			err:    &cueutil.ValidationError{FilePath: "denv.toml", CUEPath: "about.name", Message: "conflicting values"},
			wantId: issue.EnvFileParseErrorId,
			wantOk: true,
		},
		{
			name:   "unmapped error",
			err:    errors.New("boom"),
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := catalogIssue(tt.err)
			if ok != tt.wantOk {
				t.Fatalf("catalogIssue() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && id != tt.wantId {
				t.Errorf("catalogIssue() id = %d, want %d", id, tt.wantId)
			}
		})
	}
}

func TestFormatErrorForDisplayRendersIssueCard(t *testing.T) {
	err := &envfile.UnsupportedSchemaVersionError{Version: 9}

	out := formatErrorForDisplay(err, false)
	if !strings.Contains(out, err.Error()) {
		t.Errorf("output should carry the concrete error text, got: %q", out)
	}
	// The rendered card precedes the error line, so the output must be
	// strictly larger than the bare message.
	if len(out) <= len(err.Error()) {
		t.Errorf("output should include the rendered issue card, got: %q", out)
	}
}

func TestValidateCommandUnsupportedVersionShowsCard(t *testing.T) {
	path := writeEnvFixture(t, "denv.toml", "version = 9\n"+validSingleDoc)
	app, stdout, stderr := newTestApp(t, config.DefaultConfig())

	err := runCommand(t, newValidateCommand(app), stdout, stderr, path)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got: %v", err)
	}
	if !strings.Contains(stderr.String(), "unsupported schema version 9") {
		t.Errorf("stderr missing the version error, got: %q", stderr.String())
	}
	// The suggestion from the issue card, not just the bare message.
	if !strings.Contains(stderr.String(), "latest release") {
		t.Errorf("stderr missing the card's suggested fix, got: %q", stderr.String())
	}
}

func TestShowCommandUnknownEnvironment(t *testing.T) {
	path := writeEnvFixture(t, "denv.toml", unusedGroupDoc)
	app, stdout, stderr := newTestApp(t, config.DefaultConfig())

	err := runCommand(t, newShowCommand(app), stdout, stderr, path, "--env", "nope")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got: %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(stderr.String(), "nope") {
		t.Errorf("stderr missing the unknown environment name, got: %q", stderr.String())
	}
}

func TestEnvsCommandMissingFileShowsCard(t *testing.T) {
	app, stdout, stderr := newTestApp(t, config.DefaultConfig())

	err := runCommand(t, newEnvsCommand(app), stdout, stderr, filepath.Join(t.TempDir(), "absent.toml"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got: %v", err)
	}
	if !strings.Contains(stderr.String(), "no environment file found") {
		t.Errorf("stderr missing the not-found message, got: %q", stderr.String())
	}
}
