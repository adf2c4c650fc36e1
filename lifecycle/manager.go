// Package lifecycle runs the host-driven plugin state machine.
//
//	Unloaded --start--> Started --enable--> Enabled --disable--> Disabled
//	Disabled --enable--> Enabled
//	Started, Disabled --stop--> Stopped
//
// The Manager owns handle scopes: everything acquired from start until stop
// is released on stop, everything acquired while enabled is released on the
// following disable. A failed start releases everything acquired during the
// attempt and leaves the plugin inert.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Hooks are the plugin's lifecycle callbacks. Nil hooks are skipped.
// All of them run synchronously in the sim thread context.
type Hooks struct {
	Start          func(ctx context.Context) error
	Enable         func(ctx context.Context) error
	Disable        func(ctx context.Context)
	Stop           func(ctx context.Context)
	ReceiveMessage func(ctx context.Context, msg entities.Message)
}

// TransitionFunc observes a completed state change.
type TransitionFunc func(from, to entities.LifecycleState)

// Manager implements ports.Entrypoints on top of Hooks.
type Manager struct {
	base      context.Context
	logger    *slog.Logger
	registry  *handle.Registry
	calls     *callctx.Tracker
	hooks     Hooks
	info      entities.PluginInfo
	observers []TransitionFunc
	state     entities.LifecycleState
	failed    bool
}

var _ ports.Entrypoints = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for hook faults and refused transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithBaseContext sets the parent context passed to hooks.
func WithBaseContext(ctx context.Context) Option {
	return func(m *Manager) {
		m.base = ctx
	}
}

// NewManager creates a Manager in state Unloaded.
func NewManager(info entities.PluginInfo, hooks Hooks, registry *handle.Registry, calls *callctx.Tracker, opts ...Option) *Manager {
	m := &Manager{
		base:     context.Background(),
		logger:   slog.Default(),
		registry: registry,
		calls:    calls,
		hooks:    hooks,
		info:     info,
		state:    entities.StateUnloaded,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Manager) State() entities.LifecycleState { return m.state }

// Failed reports whether start failed. A failed plugin never runs another hook.
func (m *Manager) Failed() bool { return m.failed }

// Info returns the plugin info reported on start.
func (m *Manager) Info() entities.PluginInfo { return m.info }

// OnTransition registers fn to observe every completed transition.
func (m *Manager) OnTransition(fn TransitionFunc) {
	m.observers = append(m.observers, fn)
}

// Start implements ports.Entrypoints.
func (m *Manager) Start() (entities.PluginInfo, bool) {
	if err := m.check("start", entities.StateUnloaded); err != nil {
		return m.info, false
	}

	m.registry.BeginScope(entities.ScopePlugin)
	err := m.invoke("start", func(ctx context.Context) error {
		if m.hooks.Start == nil {
			return nil
		}
		return m.hooks.Start(ctx)
	})
	if err != nil {
		released := m.registry.ReleaseScope(entities.ScopeEnabled) + m.registry.ReleaseScope(entities.ScopePlugin)
		m.registry.BeginScope(entities.ScopeNone)
		m.failed = true
		m.logger.Error("lifecycle: start failed, plugin disabled for this session",
			"error", err, "released", released)
		return m.info, false
	}

	m.transition(entities.StateStarted)
	return m.info, true
}

// Enable implements ports.Entrypoints.
func (m *Manager) Enable() bool {
	if err := m.check("enable", entities.StateStarted, entities.StateDisabled); err != nil {
		return false
	}

	m.registry.BeginScope(entities.ScopeEnabled)
	err := m.invoke("enable", func(ctx context.Context) error {
		if m.hooks.Enable == nil {
			return nil
		}
		return m.hooks.Enable(ctx)
	})
	if err != nil {
		released := m.registry.ReleaseScope(entities.ScopeEnabled)
		m.registry.BeginScope(entities.ScopePlugin)
		m.logger.Error("lifecycle: enable failed", "error", err, "released", released)
		m.transition(entities.StateDisabled)
		return false
	}

	m.transition(entities.StateEnabled)
	return true
}

// Disable implements ports.Entrypoints.
func (m *Manager) Disable() {
	if err := m.check("disable", entities.StateEnabled); err != nil {
		return
	}

	// Handles acquired by the disable hook itself outlive the enable scope.
	m.registry.BeginScope(entities.ScopePlugin)
	_ = m.invoke("disable", func(ctx context.Context) error {
		if m.hooks.Disable != nil {
			m.hooks.Disable(ctx)
		}
		return nil
	})
	m.registry.ReleaseScope(entities.ScopeEnabled)
	m.transition(entities.StateDisabled)
}

// Stop implements ports.Entrypoints.
func (m *Manager) Stop() {
	if err := m.check("stop", entities.StateStarted, entities.StateDisabled); err != nil {
		return
	}

	_ = m.invoke("stop", func(ctx context.Context) error {
		if m.hooks.Stop != nil {
			m.hooks.Stop(ctx)
		}
		return nil
	})
	m.registry.ReleaseScope(entities.ScopeEnabled)
	m.registry.ReleaseScope(entities.ScopePlugin)
	m.registry.BeginScope(entities.ScopeNone)
	m.transition(entities.StateStopped)
}

// ReceiveMessage implements ports.Entrypoints. Messages are delivered in
// Started, Enabled, Disabled and Stopped and dropped otherwise.
func (m *Manager) ReceiveMessage(from int, msg entities.MessageID, param uintptr) {
	if m.failed {
		return
	}
	switch m.state {
	case entities.StateStarted, entities.StateEnabled, entities.StateDisabled, entities.StateStopped:
	default:
		m.logger.Debug("lifecycle: message dropped", "state", m.state.String(), "message", msg.String())
		return
	}
	if m.hooks.ReceiveMessage == nil {
		return
	}

	message := entities.Message{Sender: from, ID: msg, Payload: param}
	_ = m.invoke("receive_message", func(ctx context.Context) error {
		m.hooks.ReceiveMessage(ctx, message)
		return nil
	})
}

// check refuses transitions that are not allowed from the current state.
func (m *Manager) check(op string, from ...entities.LifecycleState) error {
	if m.failed {
		err := &errors.LifecycleError{Operation: op, State: m.state}
		m.logger.Warn("lifecycle: plugin failed to start, ignoring host call", "op", op)
		return err
	}
	for _, s := range from {
		if m.state == s {
			return nil
		}
	}
	err := &errors.LifecycleError{Operation: op, State: m.state}
	m.logger.Error("lifecycle: transition refused", "error", err)
	return err
}

func (m *Manager) transition(to entities.LifecycleState) {
	from := m.state
	m.state = to
	m.logger.Debug("lifecycle: transition", "from", from.String(), "to", to.String())
	for _, fn := range m.observers {
		fn(from, to)
	}
}

// invoke runs a hook in the sim thread context and converts a panic into
// an error. The host never sees the panic.
func (m *Manager) invoke(op string, fn func(ctx context.Context) error) (err error) {
	exit := m.calls.Enter(entities.ThreadSim)
	defer exit()
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{Value: r, Callback: op, Stack: debug.Stack()}
			m.logger.Error("lifecycle: hook panicked", "hook", op, "panic", fmt.Sprint(r))
		}
	}()

	ctx := callctx.WithThread(m.base, entities.ThreadSim)
	return fn(ctx)
}
