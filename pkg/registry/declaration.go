// pkg/registry/declaration.go
package registry

import (
	"context"
	"reflect"

	"github.com/svishnu88/jlserve/pkg/schema"
)

// SetupHook is the optional startup hook, run exactly once after
// construction and before any request is dispatched.
type SetupHook interface {
	Setup() error
}

// WeightsHook materializes heavy resources (model weights) into the cache.
// It is required on every app and runs during build, never during serving.
type WeightsHook interface {
	DownloadWeights() error
}

// TeardownHook is the optional shutdown hook, run best-effort on stop.
type TeardownHook interface {
	Teardown() error
}

// AppDeclaration identifies the one deployable unit for a process.
type AppDeclaration struct {
	// Name defaults to the app type's name.
	Name string
	// Requirements are ordered dependency specifiers, opaque to the core;
	// the build workflow hands them to an installer.
	Requirements []string
	// Type is the pointer type of the app (e.g. *Greeter). The validator
	// reflects on it without constructing anything.
	Type reflect.Type
	// New constructs the single shared instance. Zero-argument by contract.
	New func() (any, error)
}

// EndpointDeclaration identifies one request-handling method on the app.
type EndpointDeclaration struct {
	// Method is the handler method's name; it doubles as the default route.
	Method string
	// Path is the route path, "/"+Method unless overridden.
	Path string
	// Owner is the pointer type of the app the handler method is declared
	// on. Validation refuses endpoints whose Owner is not the declared app.
	Owner reflect.Type
	// Input and Output are the declared schema models.
	Input  schema.Type
	Output schema.Type
	// Call invokes the method against the shared instance. in is a pointer
	// to the decoded input model.
	Call func(ctx context.Context, inst any, in any) (any, error)
}

// AppOption customizes an app declaration.
type AppOption func(*AppDeclaration)

// WithName overrides the app name.
func WithName(name string) AppOption {
	return func(d *AppDeclaration) { d.Name = name }
}

// WithRequirements sets the ordered dependency specifiers.
func WithRequirements(reqs ...string) AppOption {
	return func(d *AppDeclaration) { d.Requirements = append([]string(nil), reqs...) }
}

// WithConstructor replaces the default zero-argument constructor.
func WithConstructor[A any](fn func() (*A, error)) AppOption {
	return func(d *AppDeclaration) {
		d.New = func() (any, error) { return fn() }
	}
}

// EndpointOption customizes an endpoint declaration.
type EndpointOption func(*EndpointDeclaration)

// WithPath overrides the default "/"+method route path.
func WithPath(path string) EndpointOption {
	return func(d *EndpointDeclaration) { d.Path = path }
}
