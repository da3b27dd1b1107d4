package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/svishnu88/jlserve/pkg/registry"
	"go.uber.org/zap"
)

type in struct {
	Name string `json:"name"`
}

type out struct {
	Message string `json:"message"`
}

type countingApp struct {
	setupCalls    atomic.Int32
	teardownCalls atomic.Int32
	failSetup     bool
	failTeardown  bool
}

func (a *countingApp) DownloadWeights() error { return nil }

func (a *countingApp) Setup() error {
	a.setupCalls.Add(1)
	if a.failSetup {
		return errors.New("weights missing on disk")
	}
	return nil
}

func (a *countingApp) Teardown() error {
	a.teardownCalls.Add(1)
	if a.failTeardown {
		return errors.New("flush failed")
	}
	return nil
}

func (a *countingApp) Echo(ctx context.Context, i in) (out, error) {
	return out{Message: i.Name}, nil
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	if _, err := r.DeclareApp(registry.NewApp[countingApp]()); err != nil {
		t.Fatalf("declare app: %v", err)
	}
	r.DeclareEndpoint(registry.Method("echo", (*countingApp).Echo))
	return r
}

func TestFullLifecycle(t *testing.T) {
	m := NewManager(newRegistry(t), zap.NewNop())

	steps := []struct {
		name string
		fn   func() error
		want State
	}{
		{"validate", m.Validate, Validated},
		{"construct", m.Construct, Constructed},
		{"start", m.Start, Started},
		{"serve", m.Serve, Serving},
		{"stop", m.Stop, Stopped},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Fatalf("%s failed: %v", s.name, err)
		}
		if m.State() != s.want {
			t.Fatalf("after %s expected state %s, got %s", s.name, s.want, m.State())
		}
	}

	app := mInstance(t, m)
	if got := app.setupCalls.Load(); got != 1 {
		t.Fatalf("setup must run exactly once, ran %d times", got)
	}
	if got := app.teardownCalls.Load(); got != 1 {
		t.Fatalf("teardown must run exactly once, ran %d times", got)
	}
}

func mInstance(t *testing.T, m *Manager) *countingApp {
	t.Helper()
	app, ok := m.Instance().(*countingApp)
	if !ok {
		t.Fatalf("unexpected instance %T", m.Instance())
	}
	return app
}

func TestTransitionsCannotBeSkipped(t *testing.T) {
	m := NewManager(newRegistry(t), zap.NewNop())
	if err := m.Construct(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("construct before validate must be refused, got %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("start before construct must be refused, got %v", err)
	}
	if err := m.Serve(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("serve before start must be refused, got %v", err)
	}
}

func TestTransitionsCannotBeRepeated(t *testing.T) {
	m := NewManager(newRegistry(t), zap.NewNop())
	mustStep(t, m.Validate, m.Construct, m.Start)
	if err := m.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second start must be refused, got %v", err)
	}
	app := mInstance(t, m)
	if got := app.setupCalls.Load(); got != 1 {
		t.Fatalf("refused restart still ran setup: %d calls", got)
	}
}

func mustStep(t *testing.T, steps ...func() error) {
	t.Helper()
	for _, s := range steps {
		if err := s(); err != nil {
			t.Fatalf("lifecycle step failed: %v", err)
		}
	}
}

func TestValidationFailureRefusesTransition(t *testing.T) {
	r := registry.New()
	r.DeclareApp(registry.NewApp[countingApp]())
	// no endpoints

	m := NewManager(r, zap.NewNop())
	err := m.Validate()
	if err == nil {
		t.Fatal("validation of endpoint-less app must fail")
	}
	if !strings.Contains(err.Error(), "no_endpoints_defined") {
		t.Fatalf("error must carry the violation report: %v", err)
	}
	if m.State() != Unvalidated {
		t.Fatalf("state advanced despite refusal: %s", m.State())
	}
}

func TestSetupFailureAbortsStartup(t *testing.T) {
	r := registry.New()
	r.DeclareApp(registry.NewApp[countingApp](
		registry.WithConstructor(func() (*countingApp, error) {
			return &countingApp{failSetup: true}, nil
		}),
	))
	r.DeclareEndpoint(registry.Method("echo", (*countingApp).Echo))

	m := NewManager(r, zap.NewNop())
	mustStep(t, m.Validate, m.Construct)

	err := m.Start()
	if err == nil {
		t.Fatal("setup failure must abort startup")
	}
	if !strings.Contains(err.Error(), "weights missing on disk") {
		t.Fatalf("original setup error must be surfaced: %v", err)
	}
	if m.State() != Constructed {
		t.Fatalf("manager entered %s after failed setup", m.State())
	}
	if err := m.Serve(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("serving after failed setup must be refused, got %v", err)
	}
}

func TestConstructionFailureIsFatal(t *testing.T) {
	r := registry.New()
	r.DeclareApp(registry.NewApp[countingApp](
		registry.WithConstructor(func() (*countingApp, error) {
			return nil, errors.New("gpu not found")
		}),
	))
	r.DeclareEndpoint(registry.Method("echo", (*countingApp).Echo))

	m := NewManager(r, zap.NewNop())
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	err := m.Construct()
	if err == nil || !strings.Contains(err.Error(), "gpu not found") {
		t.Fatalf("construction failure must surface the original error, got %v", err)
	}
	if m.State() != Validated {
		t.Fatalf("state advanced past failed construction: %s", m.State())
	}
}

func TestTeardownFailureIsNotFatal(t *testing.T) {
	r := registry.New()
	r.DeclareApp(registry.NewApp[countingApp](
		registry.WithConstructor(func() (*countingApp, error) {
			return &countingApp{failTeardown: true}, nil
		}),
	))
	r.DeclareEndpoint(registry.Method("echo", (*countingApp).Echo))

	m := NewManager(r, zap.NewNop())
	mustStep(t, m.Validate, m.Construct, m.Start, m.Serve)

	if err := m.Stop(); err != nil {
		t.Fatalf("teardown failure must be logged, not returned: %v", err)
	}
	if m.State() != Stopped {
		t.Fatalf("expected Stopped, got %s", m.State())
	}
}
