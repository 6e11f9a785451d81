// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/denvkit/denv/pkg/cueutil"
)

//go:embed envfile_schema.cue
var envfileSchema string

// Parse reads and parses an environment file from the given path.
func Parse(path string) (*EnvFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file at %s: %w", path, err)
	}

	return ParseBytes(data, path)
}

// ParseBytes parses environment file content from bytes.
//
// The pipeline is: TOML decode, shape detection, required section checks,
// CUE schema validation, normalization into typed values, and semantic
// validation (field rules plus group references for multi documents).
// Warnings produced along the way are attached to the returned EnvFile,
// never printed.
func ParseBytes(data []byte, path string) (*EnvFile, error) {
	filename := path
	if filename == "" {
		filename = "<input>"
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s", filename, row, col, decodeErr.Error())
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	shape, err := DetectShape(raw)
	if err != nil {
		return nil, err
	}

	// Required sections are checked on the raw tree so their absence gets
	// a section-level error instead of a schema path error.
	if err := checkRequiredSections(raw); err != nil {
		return nil, err
	}

	if shape == ShapeMulti {
		return parseMulti(raw, path, filename)
	}
	return parseSingle(raw, path, filename)
}

// parseSingle validates and normalizes a single-environment document.
func parseSingle(raw map[string]any, path, filename string) (*EnvFile, error) {
	result, err := cueutil.EncodeAndDecode[rawSingleDocument](
		[]byte(envfileSchema),
		raw,
		"#SingleEnvironment",
		cueutil.WithFilename(filename),
	)
	if err != nil {
		return nil, err
	}

	doc := result.Value
	if doc.Version != SupportedSchemaVersion {
		return nil, &UnsupportedSchemaVersionError{Version: doc.Version}
	}

	single, errs := normalizeSingle(doc)
	if len(errs) == 0 {
		if ok, validErrs := single.IsValid(); !ok {
			errs = validErrs
		}
	}
	if len(errs) > 0 {
		return nil, &InvalidEnvFileError{FilePath: path, FieldErrors: errs}
	}

	return &EnvFile{
		Shape:    ShapeSingle,
		Single:   single,
		FilePath: path,
	}, nil
}

// parseMulti validates and normalizes a multi-environment document,
// including the group reference checks that only apply to this shape.
func parseMulti(raw map[string]any, path, filename string) (*EnvFile, error) {
	if err := checkGroupConfigs(raw); err != nil {
		return nil, err
	}

	result, err := cueutil.EncodeAndDecode[rawMultiDocument](
		[]byte(envfileSchema),
		raw,
		"#MultiEnvironment",
		cueutil.WithFilename(filename),
	)
	if err != nil {
		return nil, err
	}

	doc := result.Value
	if doc.Version != SupportedSchemaVersion {
		return nil, &UnsupportedSchemaVersionError{Version: doc.Version}
	}

	multi, errs := normalizeMulti(doc)
	if len(errs) == 0 {
		if ok, validErrs := multi.IsValid(); !ok {
			errs = validErrs
		}
	}
	if len(errs) > 0 {
		return nil, &InvalidEnvFileError{FilePath: path, FieldErrors: errs}
	}

	diags, err := multi.ValidateReferences()
	if err != nil {
		return nil, err
	}
	for i := range diags {
		diags[i].Path = path
	}

	return &EnvFile{
		Shape:       ShapeMulti,
		Multi:       multi,
		FilePath:    path,
		Diagnostics: diags,
	}, nil
}

// checkRequiredSections reports the first missing required section of the
// raw document tree: about, config, and about.urls must all be present in
// both shapes.
func checkRequiredSections(raw map[string]any) error {
	about, ok := raw["about"]
	if !ok {
		return &MissingSectionError{Section: "about"}
	}
	if _, ok := raw["config"]; !ok {
		return &MissingSectionError{Section: "config"}
	}
	// A non-table about value falls through to schema validation, which
	// reports the type conflict.
	if aboutTable, ok := about.(map[string]any); ok {
		if _, ok := aboutTable["urls"]; !ok {
			return &MissingSectionError{Section: "about.urls"}
		}
	}
	return nil
}

// checkGroupConfigs reports the first group missing its required config
// table. Schema validation cannot catch this: every config field is
// optional, so an absent table unifies cleanly with the definition.
func checkGroupConfigs(raw map[string]any) error {
	groups, ok := raw["groups"].(map[string]any)
	if !ok {
		return nil
	}
	for _, name := range sortedKeys(groups) {
		group, ok := groups[name].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := group["config"]; !ok {
			return &MissingSectionError{Section: "groups." + name + ".config"}
		}
	}
	return nil
}
