// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/denvkit/denv/pkg/envfile"
)

var (
	// ErrDuplicateHandler is the sentinel error wrapped by
	// DuplicateHandlerError.
	ErrDuplicateHandler = errors.New("duplicate handler")

	// ErrInvalidHandlerName is returned when a handler registers with an
	// empty name.
	ErrInvalidHandlerName = errors.New("handler name must not be empty")

	// ErrNoHandler is the sentinel error wrapped by NoHandlerError.
	ErrNoHandler = errors.New("no handler for file")
)

type (
	// Handler recognizes and loads one environment specification format.
	// Implementations must be safe for concurrent use; the host may probe
	// files from multiple goroutines.
	Handler interface {
		// Name identifies the handler inside a Registry.
		Name() string

		// CanHandle reports whether the handler recognizes the file at
		// path. It must be cheap: existence and extension sniffing, never
		// a full parse.
		CanHandle(path string) bool

		// Load parses and validates the environment file at path.
		Load(ctx context.Context, path string) (*envfile.EnvFile, error)

		// Environments returns the names of the environments the file at
		// path can produce.
		Environments(ctx context.Context, path string) ([]string, error)
	}

	// Registry holds named handlers in registration order. Detection walks
	// that order and returns the first handler that recognizes a file.
	Registry struct {
		names    []string
		handlers map[string]Handler
	}

	// DuplicateHandlerError is returned when a handler registers under a
	// name the registry already holds.
	DuplicateHandlerError struct {
		Name string
	}

	// NoHandlerError is returned when no registered handler recognizes a
	// file.
	NoHandlerError struct {
		Path string
	}
)

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// DefaultRegistry returns a registry with the built-in handlers registered:
// currently just the TOML environment file handler.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Registration cannot fail on a fresh registry with distinct names.
	_ = r.Register(NewTomlHandler())
	return r
}

// Register adds a handler to the registry. Handler names must be non-empty
// and unique within one registry.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if name == "" {
		return ErrInvalidHandlerName
	}
	if _, exists := r.handlers[name]; exists {
		return &DuplicateHandlerError{Name: name}
	}
	r.names = append(r.names, name)
	r.handlers[name] = h
	return nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Detect returns the first registered handler that recognizes the file at
// path.
func (r *Registry) Detect(path string) (Handler, error) {
	for _, name := range r.names {
		if h := r.handlers[name]; h.CanHandle(path) {
			return h, nil
		}
	}
	return nil, &NoHandlerError{Path: path}
}

// Error implements the error interface for DuplicateHandlerError.
func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("handler %q is already registered", e.Name)
}

// Unwrap returns ErrDuplicateHandler for errors.Is() compatibility.
func (e *DuplicateHandlerError) Unwrap() error { return ErrDuplicateHandler }

// Error implements the error interface for NoHandlerError.
func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no registered handler recognizes %q", e.Path)
}

// Unwrap returns ErrNoHandler for errors.Is() compatibility.
func (e *NoHandlerError) Unwrap() error { return ErrNoHandler }
