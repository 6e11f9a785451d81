// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"strings"
	"testing"
)

func TestPackageNameIsValid(t *testing.T) {
	tests := []struct {
		name string
		pkg  PackageName
		want bool
	}{
		// Valid names
		{"simple", "numpy", true},
		{"with dash", "scikit-learn", true},
		{"with underscore", "ruamel_yaml", true},
		{"with dot", "ruamel.yaml", true},
		{"leading digit", "2to3", true},
		{"single character", "r", true},

		// Invalid names
		{"empty", "", false},
		{"uppercase", "NumPy", false},
		{"leading dash", "-numpy", false},
		{"leading dot", ".numpy", false},
		{"with space", "my package", false},
		{"with slash", "conda/numpy", false},
		{"too long", PackageName(strings.Repeat("a", MaxNameLength+1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.pkg.IsValid()
			if isValid != tt.want {
				t.Errorf("PackageName(%q).IsValid() = %v, want %v", tt.pkg, isValid, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 {
					t.Fatalf("PackageName(%q).IsValid() returned no errors, want error", tt.pkg)
				}
				if !errors.Is(errs[0], ErrInvalidPackageName) {
					t.Errorf("error should wrap ErrInvalidPackageName, got: %v", errs[0])
				}
			}
		})
	}
}

func TestGroupNameIsValid(t *testing.T) {
	tests := []struct {
		name  string
		group GroupName
		want  bool
	}{
		{"simple", "base", true},
		{"with dash", "gpu-extras", true},
		{"mixed case", "DevTools", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"too long", GroupName(strings.Repeat("g", MaxNameLength+1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.group.IsValid()
			if isValid != tt.want {
				t.Errorf("GroupName(%q).IsValid() = %v, want %v", tt.group, isValid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidGroupName) {
				t.Errorf("error should wrap ErrInvalidGroupName, got: %v", errs[0])
			}
		})
	}
}

func TestEnvironmentNameIsValid(t *testing.T) {
	tests := []struct {
		name string
		env  EnvironmentName
		want bool
	}{
		{"simple", "default", true},
		{"with dash", "gpu-dev", true},
		{"empty", "", false},
		{"whitespace only", "\t ", false},
		{"too long", EnvironmentName(strings.Repeat("e", MaxNameLength+1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.env.IsValid()
			if isValid != tt.want {
				t.Errorf("EnvironmentName(%q).IsValid() = %v, want %v", tt.env, isValid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidEnvironmentName) {
				t.Errorf("error should wrap ErrInvalidEnvironmentName, got: %v", errs[0])
			}
		})
	}
}

func TestChannelNameIsValid(t *testing.T) {
	tests := []struct {
		name    string
		channel ChannelName
		want    bool
	}{
		// Valid bare names
		{"conda-forge", "conda-forge", true},
		{"bioconda", "bioconda", true},
		{"nested label", "conda-forge/label/main", true},
		{"with dot", "r.channel", true},

		// Valid URLs
		{"https url", "https://repo.example.com/channel", true},
		{"http url", "http://mirror.internal/conda", true},

		// Invalid
		{"empty", "", false},
		{"leading slash", "/conda-forge", false},
		{"with space", "conda forge", false},
		{"url without host", "https://", false},
		{"ftp url", "ftp://repo.example.com", false},
		{"too long", ChannelName("https://repo.example.com/" + strings.Repeat("c", MaxChannelLength)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.channel.IsValid()
			if isValid != tt.want {
				t.Errorf("ChannelName(%q).IsValid() = %v, want %v", tt.channel, isValid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidChannelName) {
				t.Errorf("error should wrap ErrInvalidChannelName, got: %v", errs[0])
			}
		})
	}
}

func TestChannelNameIsURL(t *testing.T) {
	tests := []struct {
		channel ChannelName
		want    bool
	}{
		{"conda-forge", false},
		{"https://repo.example.com/channel", true},
		{"http://mirror.internal/conda", true},
		{"httpsnot-a-url", false},
	}

	for _, tt := range tests {
		if got := tt.channel.IsURL(); got != tt.want {
			t.Errorf("ChannelName(%q).IsURL() = %v, want %v", tt.channel, got, tt.want)
		}
	}
}

func TestPlatformNameIsValid(t *testing.T) {
	tests := []struct {
		name     string
		platform PlatformName
		want     bool
	}{
		{"linux-64", "linux-64", true},
		{"linux-aarch64", "linux-aarch64", true},
		{"osx-arm64", "osx-arm64", true},
		{"win-64", "win-64", true},
		{"noarch", "noarch", true},
		{"empty", "", false},
		{"unknown arch", "linux-128", false},
		{"bare os", "linux", false},
		{"uppercase", "Linux-64", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.platform.IsValid()
			if isValid != tt.want {
				t.Errorf("PlatformName(%q).IsValid() = %v, want %v", tt.platform, isValid, tt.want)
			}
			if !tt.want {
				if !errors.Is(errs[0], ErrUnknownPlatform) {
					t.Errorf("error should wrap ErrUnknownPlatform, got: %v", errs[0])
				}
				if !strings.Contains(errs[0].Error(), "known platforms:") {
					t.Errorf("error should list known platforms, got: %v", errs[0])
				}
			}
		})
	}
}
