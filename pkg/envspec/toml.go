// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/denvkit/denv/pkg/envfile"
)

// TomlExtension is the file extension the TOML handler recognizes.
const TomlExtension = ".toml"

// TomlHandler loads TOML environment specification files.
type TomlHandler struct{}

// NewTomlHandler creates the TOML environment file handler.
func NewTomlHandler() *TomlHandler {
	return &TomlHandler{}
}

// Name returns the registry name of the handler.
func (h *TomlHandler) Name() string { return "toml" }

// CanHandle reports whether path names an existing regular file with the
// .toml extension. Content is never inspected here; a recognized file can
// still fail to parse.
func (h *TomlHandler) CanHandle(path string) bool {
	if path == "" {
		return false
	}
	if !strings.EqualFold(filepath.Ext(path), TomlExtension) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load parses and validates the environment file at path.
func (h *TomlHandler) Load(ctx context.Context, path string) (*envfile.EnvFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load environment file canceled: %w", err)
	}
	return envfile.Parse(path)
}

// Environments returns the names of the environments the file at path can
// produce: the about name for single-environment documents, the sorted
// environment names for multi-environment ones.
func (h *TomlHandler) Environments(ctx context.Context, path string) ([]string, error) {
	f, err := h.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return f.EnvironmentNames(), nil
}
