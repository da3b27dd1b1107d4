// pkg/registry/registry.go
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrMultipleApps signals a second app declaration in one registry.
	// The first declaration stays in force.
	ErrMultipleApps = errors.New("only one app may be declared per process")
	// ErrNoAppDeclared signals a lookup before any app was declared.
	ErrNoAppDeclared = errors.New("no app declared")
)

// Registry records the declared app and its endpoints. It is an explicit
// context object so tests can hold several side by side; Default carries
// the process-wide semantics authors get out of the box.
type Registry struct {
	mu        sync.Mutex
	app       *AppDeclaration
	endpoints []EndpointDeclaration
	// pending buffers endpoints declared before the app declaration
	// resolves ownership.
	pending []EndpointDeclaration
}

// Default is the process-wide registry used by the top-level jlserve API.
var Default = New()

func New() *Registry { return &Registry{} }

// DeclareApp registers d as the registry's app. A second declaration fails
// with ErrMultipleApps; empty or blank requirement strings fail
// immediately, before the declaration is recorded.
func (r *Registry) DeclareApp(d AppDeclaration) (*AppDeclaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.app != nil {
		return nil, fmt.Errorf("found existing app %q, refusing to register %q: %w",
			r.app.Name, d.Name, ErrMultipleApps)
	}
	for i, req := range d.Requirements {
		if strings.TrimSpace(req) == "" {
			return nil, fmt.Errorf("requirements[%d] must be a non-empty string", i)
		}
	}

	decl := d
	r.app = &decl
	// Resolve ownership of endpoints declared ahead of the app.
	r.endpoints = append(r.endpoints, r.pending...)
	r.pending = nil
	return r.app, nil
}

// DeclareEndpoint records e in declaration order. Endpoints may be declared
// before the app; they are buffered until DeclareApp resolves ownership.
func (r *Registry) DeclareEndpoint(e EndpointDeclaration) *EndpointDeclaration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Path == "" {
		e.Path = "/" + e.Method
	}
	if r.app == nil {
		r.pending = append(r.pending, e)
		return &r.pending[len(r.pending)-1]
	}
	r.endpoints = append(r.endpoints, e)
	return &r.endpoints[len(r.endpoints)-1]
}

// App returns the single declared app or ErrNoAppDeclared.
func (r *Registry) App() (*AppDeclaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.app == nil {
		return nil, ErrNoAppDeclared
	}
	return r.app, nil
}

// Endpoints returns the app's endpoints in declaration order. Endpoints
// still buffered (no app declared yet) are included so pre-flight tooling
// sees the full picture.
func (r *Registry) Endpoints() []EndpointDeclaration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EndpointDeclaration, 0, len(r.endpoints)+len(r.pending))
	out = append(out, r.endpoints...)
	out = append(out, r.pending...)
	return out
}

// Reset clears the registry. For tests only.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.app = nil
	r.endpoints = nil
	r.pending = nil
}
