// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
	ErrInvalidPackageName = errors.New("invalid package name")

	// ErrInvalidGroupName is the sentinel error wrapped by InvalidGroupNameError.
	ErrInvalidGroupName = errors.New("invalid group name")

	// ErrInvalidEnvironmentName is the sentinel error wrapped by InvalidEnvironmentNameError.
	ErrInvalidEnvironmentName = errors.New("invalid environment name")

	// ErrInvalidChannelName is the sentinel error wrapped by InvalidChannelNameError.
	ErrInvalidChannelName = errors.New("invalid channel name")

	// ErrUnknownPlatform is the sentinel error wrapped by UnknownPlatformError.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// packageNameRegex validates package names: lowercase alphanumeric start,
// then alphanumerics plus . _ - (the conda package naming convention).
var packageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// channelNameRegex validates bare channel names (URLs are accepted
// separately): alphanumeric start, then alphanumerics plus . _ / -
var channelNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

type (
	// PackageName identifies a package inside a dependency table. Names are
	// lowercase, start with an alphanumeric, and may contain . _ -
	PackageName string

	// GroupName identifies a dependency group in a multi-environment
	// document. Non-empty, not whitespace-only, length-limited.
	GroupName string

	// EnvironmentName identifies an environment in a multi-environment
	// document. Same rules as GroupName.
	EnvironmentName string

	// ChannelName identifies a package channel: either a bare name
	// ("conda-forge") or a channel URL.
	ChannelName string

	// PlatformName identifies a target platform as an os-arch pair
	// ("linux-64", "osx-arm64"). Only members of KnownPlatforms are valid.
	PlatformName string

	// InvalidPackageNameError is returned when a package name does not
	// match the naming convention.
	InvalidPackageNameError struct {
		Value PackageName
	}

	// InvalidGroupNameError is returned when a group name is empty,
	// whitespace-only, or too long.
	InvalidGroupNameError struct {
		Value GroupName
	}

	// InvalidEnvironmentNameError is returned when an environment name is
	// empty, whitespace-only, or too long.
	InvalidEnvironmentNameError struct {
		Value EnvironmentName
	}

	// InvalidChannelNameError is returned when a channel name is neither a
	// valid bare name nor an http(s) URL.
	InvalidChannelNameError struct {
		Value ChannelName
	}

	// UnknownPlatformError is returned when a platform name is not in
	// KnownPlatforms.
	UnknownPlatformError struct {
		Value PlatformName
	}
)

// KnownPlatforms lists the platform identifiers accepted in config.platforms
// and platform override tables.
var KnownPlatforms = []PlatformName{
	"linux-64",
	"linux-aarch64",
	"linux-ppc64le",
	"osx-64",
	"osx-arm64",
	"win-64",
	"win-arm64",
	"noarch",
}

// String returns the string representation of the PackageName.
func (n PackageName) String() string { return string(n) }

// IsValid returns whether the PackageName matches the package naming
// convention and the length limit.
func (n PackageName) IsValid() (bool, []error) {
	if len(n) == 0 || len(n) > MaxNameLength || !packageNameRegex.MatchString(string(n)) {
		return false, []error{&InvalidPackageNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the GroupName.
func (n GroupName) String() string { return string(n) }

// IsValid returns whether the GroupName is non-empty, not whitespace-only,
// and within the length limit.
func (n GroupName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || len(n) > MaxNameLength {
		return false, []error{&InvalidGroupNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the EnvironmentName.
func (n EnvironmentName) String() string { return string(n) }

// IsValid returns whether the EnvironmentName is non-empty, not
// whitespace-only, and within the length limit.
func (n EnvironmentName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || len(n) > MaxNameLength {
		return false, []error{&InvalidEnvironmentNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the ChannelName.
func (n ChannelName) String() string { return string(n) }

// IsURL returns true if the channel is addressed by URL rather than by a
// bare name.
func (n ChannelName) IsURL() bool {
	return strings.HasPrefix(string(n), "http://") || strings.HasPrefix(string(n), "https://")
}

// IsValid returns whether the ChannelName is a valid bare name or an
// absolute http(s) URL.
func (n ChannelName) IsValid() (bool, []error) {
	if len(n) == 0 || len(n) > MaxChannelLength {
		return false, []error{&InvalidChannelNameError{Value: n}}
	}
	if n.IsURL() {
		if err := ValidateHTTPURL(string(n)); err != nil {
			return false, []error{&InvalidChannelNameError{Value: n}}
		}
		return true, nil
	}
	if !channelNameRegex.MatchString(string(n)) {
		return false, []error{&InvalidChannelNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the PlatformName.
func (n PlatformName) String() string { return string(n) }

// IsValid returns whether the PlatformName is one of KnownPlatforms.
func (n PlatformName) IsValid() (bool, []error) {
	for _, known := range KnownPlatforms {
		if n == known {
			return true, nil
		}
	}
	return false, []error{&UnknownPlatformError{Value: n}}
}

// Error implements the error interface for InvalidPackageNameError.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q (must be lowercase, start with a letter or digit, and contain only alphanumerics plus . _ -)", e.Value)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }

// Error implements the error interface for InvalidGroupNameError.
func (e *InvalidGroupNameError) Error() string {
	return fmt.Sprintf("invalid group name %q (must be non-empty and at most %d characters)", e.Value, MaxNameLength)
}

// Unwrap returns ErrInvalidGroupName for errors.Is() compatibility.
func (e *InvalidGroupNameError) Unwrap() error { return ErrInvalidGroupName }

// Error implements the error interface for InvalidEnvironmentNameError.
func (e *InvalidEnvironmentNameError) Error() string {
	return fmt.Sprintf("invalid environment name %q (must be non-empty and at most %d characters)", e.Value, MaxNameLength)
}

// Unwrap returns ErrInvalidEnvironmentName for errors.Is() compatibility.
func (e *InvalidEnvironmentNameError) Unwrap() error { return ErrInvalidEnvironmentName }

// Error implements the error interface for InvalidChannelNameError.
func (e *InvalidChannelNameError) Error() string {
	return fmt.Sprintf("invalid channel name %q (must be a bare channel name or an http(s) URL)", e.Value)
}

// Unwrap returns ErrInvalidChannelName for errors.Is() compatibility.
func (e *InvalidChannelNameError) Unwrap() error { return ErrInvalidChannelName }

// Error implements the error interface for UnknownPlatformError.
func (e *UnknownPlatformError) Error() string {
	known := make([]string, len(KnownPlatforms))
	for i, p := range KnownPlatforms {
		known[i] = string(p)
	}
	return fmt.Sprintf("unknown platform %q (known platforms: %s)", e.Value, strings.Join(known, ", "))
}

// Unwrap returns ErrUnknownPlatform for errors.Is() compatibility.
func (e *UnknownPlatformError) Unwrap() error { return ErrUnknownPlatform }
