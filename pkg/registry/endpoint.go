// pkg/registry/endpoint.go
package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/svishnu88/jlserve/pkg/schema"
)

// NewApp builds an app declaration for type A. The name defaults to A's
// type name and the constructor to new(A); options override both.
func NewApp[A any](opts ...AppOption) AppDeclaration {
	rt := reflect.TypeOf((*A)(nil))
	d := AppDeclaration{
		Name: rt.Elem().Name(),
		Type: rt,
		New:  func() (any, error) { return new(A), nil },
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// Method builds an endpoint declaration for a handler method on app type A.
// Pass the method expression directly:
//
//	registry.Method("greet", (*Greeter).Greet)
//
// The route path defaults to "/"+name; input and output schemas are derived
// from the method's parameter and return types. The original function is
// wrapped without altering its signature.
func Method[A, I, O any](name string, fn func(app *A, ctx context.Context, in I) (O, error), opts ...EndpointOption) EndpointDeclaration {
	d := EndpointDeclaration{
		Method: name,
		Path:   "/" + name,
		Owner:  reflect.TypeOf((*A)(nil)),
		Input:  schema.Of[I](),
		Output: schema.Of[O](),
		Call: func(ctx context.Context, inst any, in any) (any, error) {
			app, ok := inst.(*A)
			if !ok {
				return nil, fmt.Errorf("endpoint %s: instance is %T, want %T", name, inst, (*A)(nil))
			}
			input, ok := in.(*I)
			if !ok {
				return nil, fmt.Errorf("endpoint %s: input is %T, want %T", name, in, (*I)(nil))
			}
			return fn(app, ctx, *input)
		},
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
