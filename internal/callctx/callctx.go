// Package callctx tracks which host thread context the current call runs in.
//
// The host invokes the plugin from two contexts: the sim thread (lifecycle
// hooks, flight loops, menu and command handlers) and the render thread
// (draw callbacks, camera override). Every entry point from the host pushes
// its context with Enter and pops it when the callback returns; operations
// check their allowed contexts with Require. A call made while no host call
// is in progress (for example from a plugin goroutine) sees ThreadNone.
package callctx

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

// Common allowed sets.
var (
	Sim         = []entities.Thread{entities.ThreadSim}
	Render      = []entities.Thread{entities.ThreadRender}
	SimOrRender = []entities.Thread{entities.ThreadSim, entities.ThreadRender}
)

// Tracker holds the stack of host thread contexts currently entered.
// Host callbacks nest (a command triggered from a flight loop runs its
// handler before CommandOnce returns), so a stack is needed.
type Tracker struct {
	logger *slog.Logger
	stack  []entities.Thread
	mu     sync.Mutex
	strict bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithStrict controls whether affinity violations are errors (true, the
// default) or logged warnings.
func WithStrict(strict bool) Option {
	return func(t *Tracker) {
		t.strict = strict
	}
}

// WithLogger sets the logger used for non-strict violations.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates a Tracker with no context entered.
func New(opts ...Option) *Tracker {
	t := &Tracker{strict: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enter marks the start of a host call in thread context th.
// The returned func must be called (usually via defer) when the call returns.
func (t *Tracker) Enter(th entities.Thread) (exit func()) {
	t.mu.Lock()
	t.stack = append(t.stack, th)
	depth := len(t.stack)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if len(t.stack) >= depth {
			t.stack = t.stack[:depth-1]
		}
	}
}

// Current returns the innermost entered context, or ThreadNone.
func (t *Tracker) Current() entities.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) == 0 {
		return entities.ThreadNone
	}
	return t.stack[len(t.stack)-1]
}

// Depth returns how many host calls are nested right now.
func (t *Tracker) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}

// Require checks that the current context is one of allowed.
func (t *Tracker) Require(op string, allowed ...entities.Thread) error {
	current := t.Current()
	if slices.Contains(allowed, current) {
		return nil
	}
	err := &errors.ThreadAffinityError{Operation: op, Current: current, Allowed: allowed}
	if t.strict {
		return err
	}
	t.logger.Warn("callctx: thread affinity violation", "op", op, "current", current.String(), "error", err)
	return nil
}

type contextKey string

// ThreadKey is the context key carrying the host thread context.
const ThreadKey contextKey = "host_thread"

// WithThread returns a context recording th. Hooks and callbacks receive
// such a context so plugin code can inspect where it runs.
func WithThread(parent context.Context, th entities.Thread) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, ThreadKey, th)
}

// ThreadFrom returns the host thread context stored in ctx, or ThreadNone.
func ThreadFrom(ctx context.Context) entities.Thread {
	if ctx == nil {
		return entities.ThreadNone
	}
	if th, ok := ctx.Value(ThreadKey).(entities.Thread); ok {
		return th
	}
	return entities.ThreadNone
}
