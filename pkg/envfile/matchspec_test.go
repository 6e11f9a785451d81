// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"strings"
	"testing"
)

func TestMatchSpecString(t *testing.T) {
	tests := []struct {
		name string
		spec MatchSpec
		want string
	}{
		{"name only", MatchSpec{Name: "numpy"}, "numpy"},
		{"name and version", MatchSpec{Name: "numpy", Version: ">=1.21"}, "numpy >=1.21"},
		{"name version build", MatchSpec{Name: "numpy", Version: ">=1.21", Build: "py311*"}, "numpy >=1.21 py311*"},
		{"with channel", MatchSpec{Name: "pytorch", Channel: "pytorch"}, "pytorch::pytorch"},
		{"full spec", MatchSpec{Name: "cudatoolkit", Version: "11.8.*", Build: "*_0", Channel: "nvidia"}, "nvidia::cudatoolkit 11.8.* *_0"},
		{"build without version", MatchSpec{Name: "numpy", Build: "py311*"}, "numpy py311*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.String(); got != tt.want {
				t.Errorf("MatchSpec.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchSpecIsValid(t *testing.T) {
	tests := []struct {
		name     string
		spec     MatchSpec
		want     bool
		errorMsg string
	}{
		// Valid specs
		{name: "name only", spec: MatchSpec{Name: "numpy"}, want: true},
		{name: "full spec", spec: MatchSpec{Name: "numpy", Version: ">=1.21,<2", Build: "py311*", Channel: "conda-forge"}, want: true},
		{name: "channel url", spec: MatchSpec{Name: "numpy", Channel: "https://repo.example.com/channel"}, want: true},

		// Invalid specs
		{name: "empty name", spec: MatchSpec{}, want: false, errorMsg: "invalid package name"},
		{name: "uppercase name", spec: MatchSpec{Name: "NumPy"}, want: false, errorMsg: "invalid package name"},
		{name: "bad version characters", spec: MatchSpec{Name: "numpy", Version: ">=1.0; true"}, want: false, errorMsg: "invalid characters"},
		{name: "bad build characters", spec: MatchSpec{Name: "numpy", Build: "py 311"}, want: false, errorMsg: "invalid characters"},
		{name: "bad channel", spec: MatchSpec{Name: "numpy", Channel: "conda forge"}, want: false, errorMsg: "invalid channel name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isValid, errs := tt.spec.IsValid()
			if isValid != tt.want {
				t.Errorf("MatchSpec.IsValid() = %v, want %v (errors: %v)", isValid, tt.want, errs)
			}
			if !tt.want {
				if len(errs) == 0 {
					t.Fatal("MatchSpec.IsValid() returned no errors, want at least one")
				}
				if !strings.Contains(errs[0].Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, errs[0].Error())
				}
			}
		})
	}
}

func TestInvalidMatchSpecError(t *testing.T) {
	err := &InvalidMatchSpecError{
		Name:        "numpy",
		FieldErrors: []error{errors.New("build constraint 'py 311' contains invalid characters")},
	}
	if !errors.Is(err, ErrInvalidMatchSpec) {
		t.Error("InvalidMatchSpecError should wrap ErrInvalidMatchSpec")
	}
	if !strings.Contains(err.Error(), `invalid match specification for "numpy"`) {
		t.Errorf("unexpected error message: %v", err)
	}
}
