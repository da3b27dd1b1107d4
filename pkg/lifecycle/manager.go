// pkg/lifecycle/manager.go
package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/svishnu88/jlserve/pkg/registry"
	"github.com/svishnu88/jlserve/pkg/validate"
	"go.uber.org/zap"
)

// State is one step of the instance lifecycle.
type State int

const (
	Unvalidated State = iota
	Validated
	Constructed
	Started
	Serving
	Stopped
)

func (s State) String() string {
	switch s {
	case Unvalidated:
		return "unvalidated"
	case Validated:
		return "validated"
	case Constructed:
		return "constructed"
	case Started:
		return "started"
	case Serving:
		return "serving"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrInvalidTransition signals a skipped or repeated lifecycle transition.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Manager owns the single app instance: construction, startup, teardown,
// and shared-state exposure to every dispatch. Transitions are strictly
// ordered; none may be skipped or repeated.
type Manager struct {
	mu    sync.Mutex
	state State
	reg   *registry.Registry
	log   *zap.Logger
	inst  any
}

func NewManager(reg *registry.Registry, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{reg: reg, log: log}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Instance returns the shared app instance, nil before construction.
func (m *Manager) Instance() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inst
}

func (m *Manager) advanceLocked(from, to State) error {
	if m.state != from {
		return fmt.Errorf("%w: %s -> %s (currently %s)", ErrInvalidTransition, from, to, m.state)
	}
	m.state = to
	return nil
}

// Validate runs structural validation. The transition is refused on any
// violation; the returned error carries the full batched report.
func (m *Manager) Validate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Unvalidated {
		return fmt.Errorf("%w: unvalidated -> validated (currently %s)", ErrInvalidTransition, m.state)
	}
	verdict, err := validate.ValidateApp(m.reg)
	if err != nil {
		return err
	}
	if err := verdict.Err(); err != nil {
		return err
	}
	m.state = Validated
	return nil
}

// Construct instantiates the app with no arguments. Failure is fatal and
// leaves the manager short of Constructed.
func (m *Manager) Construct() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Validated {
		return fmt.Errorf("%w: validated -> constructed (currently %s)", ErrInvalidTransition, m.state)
	}
	app, err := m.reg.App()
	if err != nil {
		return err
	}
	inst, err := app.New()
	if err != nil {
		return fmt.Errorf("app construction failed: %w", err)
	}
	if inst == nil {
		return fmt.Errorf("app construction failed: constructor returned nil")
	}
	m.inst = inst
	m.state = Constructed
	m.log.Info("app constructed", zap.String("app", app.Name))
	return nil
}

// Start runs the startup hook exactly once. A hook failure refuses the
// transition; no request may ever be dispatched against a
// partially-initialized instance.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Constructed {
		return fmt.Errorf("%w: constructed -> started (currently %s)", ErrInvalidTransition, m.state)
	}
	if hook, ok := m.inst.(registry.SetupHook); ok {
		if err := hook.Setup(); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
		m.log.Info("setup complete")
	}
	m.state = Started
	return nil
}

// Serve activates the route table. Dispatches may run concurrently from
// here on; the instance is shared without locking.
func (m *Manager) Serve() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceLocked(Started, Serving)
}

// Stop runs the teardown hook once, best-effort. Teardown errors are
// logged, never returned: the process is exiting regardless.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advanceLocked(Serving, Stopped); err != nil {
		return err
	}
	if hook, ok := m.inst.(registry.TeardownHook); ok {
		if err := hook.Teardown(); err != nil {
			m.log.Warn("teardown failed", zap.Error(err))
		}
	}
	m.log.Info("app stopped")
	return nil
}
