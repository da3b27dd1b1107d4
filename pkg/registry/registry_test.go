package registry

import (
	"context"
	"errors"
	"testing"
)

type greetIn struct {
	Name string `json:"name"`
}

type greetOut struct {
	Message string `json:"message"`
}

type testApp struct{}

func (a *testApp) DownloadWeights() error { return nil }

func (a *testApp) Greet(ctx context.Context, in greetIn) (greetOut, error) {
	return greetOut{Message: "Hello, " + in.Name + "!"}, nil
}

type otherApp struct{}

func (a *otherApp) DownloadWeights() error { return nil }

func TestDeclareAppDefaults(t *testing.T) {
	r := New()
	d, err := r.DeclareApp(NewApp[testApp]())
	if err != nil {
		t.Fatalf("declare app failed: %v", err)
	}
	if d.Name != "testApp" {
		t.Fatalf("expected name derived from type, got %q", d.Name)
	}
	inst, err := d.New()
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if _, ok := inst.(*testApp); !ok {
		t.Fatalf("constructor returned %T", inst)
	}
}

func TestSecondAppDeclarationFailsAndFirstStands(t *testing.T) {
	r := New()
	if _, err := r.DeclareApp(NewApp[testApp](WithName("first"))); err != nil {
		t.Fatalf("first declaration failed: %v", err)
	}
	_, err := r.DeclareApp(NewApp[otherApp]())
	if !errors.Is(err, ErrMultipleApps) {
		t.Fatalf("expected ErrMultipleApps, got %v", err)
	}

	app, err := r.App()
	if err != nil {
		t.Fatalf("app lookup failed: %v", err)
	}
	if app.Name != "first" {
		t.Fatalf("first declaration was disturbed: %q", app.Name)
	}
}

func TestNoAppDeclared(t *testing.T) {
	r := New()
	if _, err := r.App(); !errors.Is(err, ErrNoAppDeclared) {
		t.Fatalf("expected ErrNoAppDeclared, got %v", err)
	}
}

func TestRequirementsMustBeNonEmpty(t *testing.T) {
	r := New()
	_, err := r.DeclareApp(NewApp[testApp](WithRequirements("torch", "  ")))
	if err == nil {
		t.Fatal("blank requirement accepted")
	}
	// The failed declaration must not occupy the app slot.
	if _, err := r.App(); !errors.Is(err, ErrNoAppDeclared) {
		t.Fatalf("failed declaration was recorded: %v", err)
	}
}

func TestEndpointPathDefaultsAndOverride(t *testing.T) {
	r := New()
	r.DeclareApp(NewApp[testApp]())

	ep := r.DeclareEndpoint(Method("greet", (*testApp).Greet))
	if ep.Path != "/greet" {
		t.Fatalf("expected default path /greet, got %q", ep.Path)
	}

	ep = r.DeclareEndpoint(Method("greet", (*testApp).Greet, WithPath("/v2/greet")))
	if ep.Path != "/v2/greet" {
		t.Fatalf("expected overridden path, got %q", ep.Path)
	}
}

func TestEndpointsDeclaredBeforeAppAreBuffered(t *testing.T) {
	r := New()
	r.DeclareEndpoint(Method("greet", (*testApp).Greet))
	r.DeclareEndpoint(Method("hello", (*testApp).Greet))

	if _, err := r.DeclareApp(NewApp[testApp]()); err != nil {
		t.Fatalf("declare app failed: %v", err)
	}

	eps := r.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}
	if eps[0].Method != "greet" || eps[1].Method != "hello" {
		t.Fatalf("declaration order not preserved: %s, %s", eps[0].Method, eps[1].Method)
	}
}

func TestMethodCallBindsInstance(t *testing.T) {
	ep := Method("greet", (*testApp).Greet)
	out, err := ep.Call(context.Background(), &testApp{}, &greetIn{Name: "World"})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	got, ok := out.(greetOut)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if got.Message != "Hello, World!" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

func TestMethodCallRejectsForeignInstance(t *testing.T) {
	ep := Method("greet", (*testApp).Greet)
	if _, err := ep.Call(context.Background(), &otherApp{}, &greetIn{}); err == nil {
		t.Fatal("call against wrong instance type must fail")
	}
}
