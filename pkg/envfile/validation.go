// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Validation limits to prevent resource exhaustion
const (
	// MaxNameLength is the maximum allowed length for package/group/environment names
	MaxNameLength = 256
	// MaxChannelLength is the maximum allowed length for channel names and channel URLs
	MaxChannelLength = 2048
	// MaxURLLength is the maximum allowed length for project URLs
	MaxURLLength = 2048
	// MaxVersionLength is the maximum allowed length for version constraints
	MaxVersionLength = 256
	// MaxBuildLength is the maximum allowed length for build string constraints
	MaxBuildLength = 256
	// MaxPathLength is the maximum allowed length for file paths
	MaxPathLength = 4096
	// MaxEnvVarValueLength is the maximum allowed length for environment variable values
	MaxEnvVarValueLength = 32768 // 32 KB
	// MaxInlineScriptLength is the maximum allowed length for inline shell fragments
	MaxInlineScriptLength = 64 * 1024
)

// envVarNameRegex validates environment variable names (POSIX portable set).
var envVarNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// versionConstraintRegex validates version constraint strings. It accepts
// the operator and separator characters used by version match expressions
// (">=1.21,<2", "1.2.*", "~=1.0", "1.2.3|1.2.4") without interpreting them.
var versionConstraintRegex = regexp.MustCompile(`^[a-zA-Z0-9.*+!<>=~^|, _-]+$`)

// buildConstraintRegex validates build string constraints ("py311*",
// "*_cpython", "!=debug").
var buildConstraintRegex = regexp.MustCompile(`^[a-zA-Z0-9.*+!=_-]+$`)

// ValidateNonEmpty checks that a required string field is present and not
// whitespace-only.
func ValidateNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateHTTPURL checks that a string is an absolute http or https URL.
func ValidateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("URL too long (%d chars, max %d)", len(raw), MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL '%s' has no host", raw)
	}
	return nil
}

// ValidateEnvVarName checks that an environment variable name uses the
// POSIX portable character set.
func ValidateEnvVarName(name string) error {
	if name == "" {
		return fmt.Errorf("environment variable name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("environment variable name too long (%d chars, max %d)", len(name), MaxNameLength)
	}
	if !envVarNameRegex.MatchString(name) {
		return fmt.Errorf("environment variable name '%s' is invalid (must start with letter or underscore, can include alphanumerics and underscores)", name)
	}
	return nil
}

// ValidateEnvVarValue checks an environment variable value against the
// length limit and rejects null bytes.
func ValidateEnvVarValue(value string) error {
	if len(value) > MaxEnvVarValueLength {
		return fmt.Errorf("value too long (%d chars, max %d)", len(value), MaxEnvVarValueLength)
	}
	if strings.ContainsRune(value, '\x00') {
		return fmt.Errorf("value contains null byte")
	}
	return nil
}

// ValidateRelativePath checks a path that must stay inside the directory of
// the environment file: relative, no traversal, no null bytes.
func ValidateRelativePath(path, what string) error {
	if path == "" {
		return fmt.Errorf("%s path cannot be empty", what)
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("%s path too long (%d chars, max %d)", what, len(path), MaxPathLength)
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("%s path contains null byte", what)
	}
	if isAbsolutePath(path) {
		return fmt.Errorf("%s path must be relative: %s", what, path)
	}
	normalized := filepath.Clean(filepath.FromSlash(path))
	if normalized == ".." || strings.HasPrefix(normalized, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s path cannot contain '..': %s", what, path)
	}
	return nil
}

// ValidatePackagePath checks a local package reference. Unlike activation
// scripts these may point outside the environment file's directory, so both
// absolute paths and '..' segments are allowed.
func ValidatePackagePath(path string) error {
	if path == "" {
		return fmt.Errorf("package path cannot be empty")
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("package path too long (%d chars, max %d)", len(path), MaxPathLength)
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("package path contains null byte")
	}
	return nil
}

// ValidateShellFragment checks that an inline shell fragment parses as
// POSIX shell. The fragment is parsed only, never executed.
func ValidateShellFragment(src, what string) error {
	if len(src) > MaxInlineScriptLength {
		return fmt.Errorf("%s too long (%d chars, max %d)", what, len(src), MaxInlineScriptLength)
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(src), what); err != nil {
		return fmt.Errorf("%s syntax error: %w", what, err)
	}
	return nil
}

// ValidateVersionConstraint checks a version constraint string against the
// allowed character set. Constraint semantics are left to the solver; this
// only rejects strings that cannot be a version expression.
func ValidateVersionConstraint(version string) error {
	if version == "" {
		return nil
	}
	if len(version) > MaxVersionLength {
		return fmt.Errorf("version constraint too long (%d chars, max %d)", len(version), MaxVersionLength)
	}
	if !versionConstraintRegex.MatchString(version) {
		return fmt.Errorf("version constraint '%s' contains invalid characters", version)
	}
	return nil
}

// ValidateBuildConstraint checks a build string constraint against the
// allowed character set.
func ValidateBuildConstraint(build string) error {
	if build == "" {
		return nil
	}
	if len(build) > MaxBuildLength {
		return fmt.Errorf("build constraint too long (%d chars, max %d)", len(build), MaxBuildLength)
	}
	if !buildConstraintRegex.MatchString(build) {
		return fmt.Errorf("build constraint '%s' contains invalid characters", build)
	}
	return nil
}

// isAbsolutePath checks if a path is absolute in either Unix or Windows
// format. Unlike filepath.IsAbs(), this works regardless of the host
// operating system, which matters for files that may be authored on one
// platform and validated on another.
func isAbsolutePath(path string) bool {
	if path == "" {
		return false
	}

	if path[0] == '/' {
		return true
	}

	// Windows-style absolute path: drive letter + colon + path separator
	if len(path) >= 3 && isWindowsDriveLetter(path[0]) && path[1] == ':' {
		sep := path[2]
		return sep == '\\' || sep == '/'
	}

	return false
}

// isWindowsDriveLetter returns true if c is a valid Windows drive letter.
func isWindowsDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
