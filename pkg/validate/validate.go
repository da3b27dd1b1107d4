// pkg/validate/validate.go
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/svishnu88/jlserve/pkg/registry"
)

// Kind names one structural rule an app can violate.
type Kind string

const (
	MissingLifecycleMethod    Kind = "missing_lifecycle_method"
	InvalidLifecycleSignature Kind = "invalid_lifecycle_signature"
	NoEndpointsDefined        Kind = "no_endpoints_defined"
	MissingInputSchema        Kind = "missing_input_schema"
	MissingOutputSchema       Kind = "missing_output_schema"
	DuplicateRoutePath        Kind = "duplicate_route_path"
	EndpointOwnerMismatch     Kind = "endpoint_owner_mismatch"
)

// Violation names the offending declaration and the unmet rule.
type Violation struct {
	Kind Kind
	// Decl is the app name or endpoint method the violation is about.
	Decl string
	Rule string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Kind, v.Decl, v.Rule)
}

// Verdict is the outcome of structural validation. Any single violation
// blocks serving; there is no partially valid verdict.
type Verdict struct {
	Violations []Violation
}

func (v Verdict) Valid() bool { return len(v.Violations) == 0 }

// Err folds the verdict into one error listing every violation, or nil.
func (v Verdict) Err() error {
	if v.Valid() {
		return nil
	}
	msgs := make([]string, len(v.Violations))
	for i, viol := range v.Violations {
		msgs[i] = viol.String()
	}
	return fmt.Errorf("app validation failed: %s", strings.Join(msgs, "; "))
}

var (
	setupIface    = reflect.TypeOf((*registry.SetupHook)(nil)).Elem()
	weightsIface  = reflect.TypeOf((*registry.WeightsHook)(nil)).Elem()
	teardownIface = reflect.TypeOf((*registry.TeardownHook)(nil)).Elem()
)

// ValidateApp checks the declared app against every structural rule and
// batches all violations into one verdict. It is pure: no I/O, no
// construction, only registry metadata and reflection on the app type.
// The only hard failure is a registry with no app declared.
func ValidateApp(r *registry.Registry) (Verdict, error) {
	app, err := r.App()
	if err != nil {
		return Verdict{}, err
	}

	var v Verdict
	v.Violations = append(v.Violations, checkLifecycle(app)...)
	v.Violations = append(v.Violations, checkEndpoints(app, r.Endpoints())...)
	return v, nil
}

func checkLifecycle(app *registry.AppDeclaration) []Violation {
	var out []Violation
	if app.Type == nil || app.Type.Kind() != reflect.Ptr {
		out = append(out, Violation{
			Kind: InvalidLifecycleSignature,
			Decl: app.Name,
			Rule: "app declaration carries no inspectable type",
		})
		return out
	}

	// DownloadWeights is required on every app, not only build workflows.
	if !app.Type.Implements(weightsIface) {
		if _, found := app.Type.MethodByName("DownloadWeights"); found {
			out = append(out, Violation{
				Kind: InvalidLifecycleSignature,
				Decl: app.Name,
				Rule: "DownloadWeights must take no arguments and return error",
			})
		} else {
			out = append(out, Violation{
				Kind: MissingLifecycleMethod,
				Decl: app.Name,
				Rule: "app must define DownloadWeights() error",
			})
		}
	}

	// Setup and Teardown are optional, but a method of the right name with
	// the wrong shape is a mistake worth refusing to serve over.
	out = append(out, checkOptionalHook(app, "Setup", setupIface)...)
	out = append(out, checkOptionalHook(app, "Teardown", teardownIface)...)
	return out
}

func checkOptionalHook(app *registry.AppDeclaration, name string, iface reflect.Type) []Violation {
	if app.Type.Implements(iface) {
		return nil
	}
	if _, found := app.Type.MethodByName(name); found {
		return []Violation{{
			Kind: InvalidLifecycleSignature,
			Decl: app.Name,
			Rule: name + " must take no arguments and return error",
		}}
	}
	return nil
}

func checkEndpoints(app *registry.AppDeclaration, eps []registry.EndpointDeclaration) []Violation {
	var out []Violation
	if len(eps) == 0 {
		out = append(out, Violation{
			Kind: NoEndpointsDefined,
			Decl: app.Name,
			Rule: "app must declare at least one endpoint",
		})
		return out
	}

	seen := map[string]string{} // path -> first method
	for _, ep := range eps {
		// An endpoint bound to a method on a different type could never be
		// dispatched against the shared instance.
		if ep.Owner != nil && app.Type != nil && ep.Owner != app.Type {
			out = append(out, Violation{
				Kind: EndpointOwnerMismatch,
				Decl: ep.Method,
				Rule: fmt.Sprintf("method is declared on %s, app is %s", ep.Owner, app.Type),
			})
		}
		if !ep.Input.IsModel() {
			out = append(out, Violation{
				Kind: MissingInputSchema,
				Decl: ep.Method,
				Rule: "input must be a struct-backed schema model",
			})
		}
		if !ep.Output.IsModel() {
			out = append(out, Violation{
				Kind: MissingOutputSchema,
				Decl: ep.Method,
				Rule: "output must be a struct-backed schema model",
			})
		}
		if first, dup := seen[ep.Path]; dup {
			out = append(out, Violation{
				Kind: DuplicateRoutePath,
				Decl: ep.Method,
				Rule: fmt.Sprintf("path %q already bound by %s", ep.Path, first),
			})
		} else {
			seen[ep.Path] = ep.Method
		}
	}
	return out
}
