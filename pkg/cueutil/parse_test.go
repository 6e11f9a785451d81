// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

// Simple test schema for parsing tests
const testSchema = `
#TestConfig: {
	name:        string
	count:       int
	enabled:     bool
	description?: string
}
`

// TestConfig is a simple struct for testing generic parsing
type TestConfig struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Run("valid config parses successfully", func(t *testing.T) {
		data := []byte(`
name: "test"
count: 42
enabled: true
description: "A test config"
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Name != "test" {
			t.Errorf("expected name='test', got %q", result.Value.Name)
		}
		if result.Value.Count != 42 {
			t.Errorf("expected count=42, got %d", result.Value.Count)
		}
		if !result.Value.Enabled {
			t.Error("expected enabled=true")
		}
		if result.Value.Description != "A test config" {
			t.Errorf("expected description='A test config', got %q", result.Value.Description)
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		data := []byte(`
name: "minimal"
count: 1
enabled: false
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.Name != "minimal" {
			t.Errorf("expected name='minimal', got %q", result.Value.Name)
		}
		if result.Value.Description != "" {
			t.Errorf("expected empty description, got %q", result.Value.Description)
		}
	})

	t.Run("invalid type returns error", func(t *testing.T) {
		data := []byte(`
name: "test"
count: "not a number"  // Should be int
enabled: true
`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err == nil {
			t.Error("expected error for invalid type")
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		data := []byte(`
name: "test"
// count is missing
enabled: true
`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("empty schema path returns error", func(t *testing.T) {
		data := []byte(`name: "test"`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "  ")
		if err == nil {
			t.Error("expected error for empty schema path")
		}
	})

	t.Run("WithFilename sets filename in errors", func(t *testing.T) {
		data := []byte(`
name: "test"
count: "invalid"
enabled: true
`)
		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			data,
			"#TestConfig",
			WithFilename("my-config.cue"),
		)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "my-config.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})
}

// Tests for validating trees decoded from another surface syntax (the
// envfile package decodes TOML into map[string]any before validation).
func TestEncodeAndDecode(t *testing.T) {
	t.Run("valid tree validates successfully", func(t *testing.T) {
		tree := map[string]any{
			"name":    "test",
			"count":   42,
			"enabled": true,
		}
		result, err := EncodeAndDecode[TestConfig]([]byte(testSchema), tree, "#TestConfig")
		if err != nil {
			t.Fatalf("EncodeAndDecode failed: %v", err)
		}

		if result.Value.Name != "test" {
			t.Errorf("expected name='test', got %q", result.Value.Name)
		}
		if result.Value.Count != 42 {
			t.Errorf("expected count=42, got %d", result.Value.Count)
		}
	})

	t.Run("wrong value type returns error", func(t *testing.T) {
		tree := map[string]any{
			"name":    "test",
			"count":   "not a number",
			"enabled": true,
		}
		_, err := EncodeAndDecode[TestConfig]([]byte(testSchema), tree, "#TestConfig")
		if err == nil {
			t.Error("expected error for wrong value type")
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		tree := map[string]any{
			"name":    "test",
			"enabled": true,
		}
		_, err := EncodeAndDecode[TestConfig]([]byte(testSchema), tree, "#TestConfig")
		if err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("unknown field returns error", func(t *testing.T) {
		tree := map[string]any{
			"name":     "test",
			"count":    1,
			"enabled":  true,
			"surprise": "value",
		}
		_, err := EncodeAndDecode[TestConfig]([]byte(testSchema), tree, "#TestConfig")
		if err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("WithFilename sets filename in errors", func(t *testing.T) {
		tree := map[string]any{
			"name":    "test",
			"count":   "invalid",
			"enabled": true,
		}
		_, err := EncodeAndDecode[TestConfig](
			[]byte(testSchema),
			tree,
			"#TestConfig",
			WithFilename("denv.toml"),
		)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "denv.toml") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})
}

// Tests for config-style schemas where every field is optional
func TestParseConfigType(t *testing.T) {
	configSchema := `
#Config: {
	color_mode?: "auto" | "always" | "never"
	search_names?: [...string]
	warnings_as_errors?: bool
}
`

	type Config struct {
		ColorMode        string   `json:"color_mode,omitempty"`
		SearchNames      []string `json:"search_names,omitempty"`
		WarningsAsErrors bool     `json:"warnings_as_errors,omitempty"`
	}

	t.Run("full config parses successfully", func(t *testing.T) {
		data := []byte(`
color_mode: "always"
search_names: ["denv.toml", "environment.toml"]
warnings_as_errors: true
`)
		result, err := ParseAndDecode[Config]([]byte(configSchema), data, "#Config")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.ColorMode != "always" {
			t.Errorf("expected color_mode='always', got %q", result.Value.ColorMode)
		}
		if len(result.Value.SearchNames) != 2 {
			t.Errorf("expected 2 search_names, got %d", len(result.Value.SearchNames))
		}
	})

	t.Run("empty config parses with WithConcrete(false)", func(t *testing.T) {
		data := []byte(`{}`)
		result, err := ParseAndDecode[Config](
			[]byte(configSchema),
			data,
			"#Config",
			WithConcrete(false),
		)
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}

		if result.Value.ColorMode != "" {
			t.Errorf("expected empty color_mode, got %q", result.Value.ColorMode)
		}
	})

	t.Run("invalid enum value returns error", func(t *testing.T) {
		data := []byte(`
color_mode: "rainbow"  // Invalid: not auto, always, or never
`)
		_, err := ParseAndDecode[Config]([]byte(configSchema), data, "#Config")
		if err == nil {
			t.Error("expected error for invalid enum value")
		}
	})
}

// File size limit enforcement tests
func TestFileSizeLimit(t *testing.T) {
	t.Run("file within limit parses successfully", func(t *testing.T) {
		data := []byte(`
name: "test"
count: 1
enabled: true
`)
		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			data,
			"#TestConfig",
			WithMaxFileSize(1024), // 1KB limit
		)
		if err != nil {
			t.Errorf("expected success, got error: %v", err)
		}
	})

	t.Run("file exceeding limit returns error", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = 'a'
		}

		_, err := ParseAndDecode[TestConfig](
			[]byte(testSchema),
			data,
			"#TestConfig",
			WithMaxFileSize(100), // 100 byte limit
		)
		if err == nil {
			t.Error("expected error for oversized file")
		}
		if !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error should mention size limit, got: %v", err)
		}
	})

	t.Run("default limit is applied", func(t *testing.T) {
		data := []byte(`name: "test"
count: 1
enabled: true
`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Errorf("expected success with default limit, got error: %v", err)
		}
	})
}

// Test ParseAndDecodeString convenience function
func TestParseAndDecodeString(t *testing.T) {
	data := []byte(`
name: "test"
count: 42
enabled: true
`)
	result, err := ParseAndDecodeString[TestConfig](testSchema, data, "#TestConfig")
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}

	if result.Value.Name != "test" {
		t.Errorf("expected name='test', got %q", result.Value.Name)
	}
}

// Test that Unified value is accessible
func TestUnifiedValueAccess(t *testing.T) {
	data := []byte(`
name: "test"
count: 42
enabled: true
`)
	result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
	if err != nil {
		t.Fatalf("ParseAndDecode failed: %v", err)
	}

	if result.Unified.Err() != nil {
		t.Errorf("unified value has error: %v", result.Unified.Err())
	}
}
