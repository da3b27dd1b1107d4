package jlserve

import (
	"context"

	"github.com/svishnu88/jlserve/pkg/buildcache"
	"github.com/svishnu88/jlserve/pkg/middleware/logger"
	"github.com/svishnu88/jlserve/pkg/registry"
	"github.com/svishnu88/jlserve/pkg/serverfx"
	"github.com/svishnu88/jlserve/pkg/validate"
	"go.uber.org/fx"
)

// Declaration options, re-exported so authors only import jlserve.
var (
	WithName         = registry.WithName
	WithRequirements = registry.WithRequirements
	WithPath         = registry.WithPath
)

// App declares type A as this process's app on the default registry.
// Declaring a second app fails; the first declaration stays in force.
func App[A any](opts ...registry.AppOption) (*registry.AppDeclaration, error) {
	return registry.Default.DeclareApp(registry.NewApp[A](opts...))
}

// MustApp is App, panicking on a declaration error. Declaration errors are
// author mistakes, surfaced the moment the program runs.
func MustApp[A any](opts ...registry.AppOption) *registry.AppDeclaration {
	d, err := App[A](opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Endpoint declares a handler method as an endpoint on the default
// registry. The route path defaults to "/"+name.
func Endpoint[A, I, O any](name string, fn func(app *A, ctx context.Context, in I) (O, error), opts ...registry.EndpointOption) *registry.EndpointDeclaration {
	return registry.Default.DeclareEndpoint(registry.Method(name, fn, opts...))
}

// MustEndpoint mirrors MustApp for symmetry at declaration sites.
func MustEndpoint[A, I, O any](name string, fn func(app *A, ctx context.Context, in I) (O, error), opts ...registry.EndpointOption) *registry.EndpointDeclaration {
	return Endpoint(name, fn, opts...)
}

// Validate runs structural validation against the default registry. It is
// the same pre-flight check serving performs, exposed for tooling.
func Validate() (validate.Verdict, error) {
	return validate.ValidateApp(registry.Default)
}

// Serve assembles and runs the serving process: validate, construct, run
// the startup hook, then listen until a shutdown signal. It blocks.
func Serve(opts ...serverfx.Option) {
	fx.New(serverfx.Module(registry.Default, opts...)).Run()
}

// Build runs the deployment build workflow against the default registry:
// validate, install declared requirements, download weights into the
// cache, and record the completion marker.
func Build(ctx context.Context, installer buildcache.Installer) error {
	return buildcache.Build(ctx, registry.Default, installer, logger.NewLog("system.log"))
}

// Reset clears the default registry. For tests only.
func Reset() { registry.Default.Reset() }
