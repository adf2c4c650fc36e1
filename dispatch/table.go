package dispatch

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Table maps refcons to callbacks.
//
// Refcons are never reused, so a late host callback for a removed entry
// cannot reach a newer one.
type Table struct {
	base       context.Context
	logger     *slog.Logger
	entries    map[ports.Refcon]*entry
	middleware []Middleware
	next       ports.Refcon
	mu         sync.Mutex
}

var _ ports.CallbackSink = (*Table)(nil)

// Option configures a Table.
type Option func(*Table)

// WithMiddleware adds middleware to the table.
// Middleware executes in FIFO order (first added wraps outermost).
func WithMiddleware(mw ...Middleware) Option {
	return func(t *Table) {
		t.middleware = append(t.middleware, mw...)
	}
}

// WithBaseContext sets the parent context of every invocation.
func WithBaseContext(ctx context.Context) Option {
	return func(t *Table) {
		t.base = ctx
	}
}

// WithLogger sets the logger for dispatch misses and last-resort recovery.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// NewTable creates an empty table.
//
// Example usage:
//
//	table := dispatch.NewTable(
//	    dispatch.WithMiddleware(
//	        dispatch.LoggingMiddleware(logger),
//	        dispatch.PanicRecoveryMiddleware(),
//	        dispatch.ThreadMiddleware(tracker),
//	    ),
//	)
func NewTable(opts ...Option) *Table {
	t := &Table{
		base:    context.Background(),
		logger:  slog.Default(),
		entries: make(map[ports.Refcon]*entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) add(e *entry) ports.Refcon {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.entries[t.next] = e
	return t.next
}

// AddFlightLoop registers a flight-loop callback.
func (t *Table) AddFlightLoop(label string, fn FlightLoopFunc) ports.Refcon {
	return t.add(&entry{kind: KindFlightLoop, label: label, flightLoop: fn})
}

// AddCommand registers a command handler.
func (t *Table) AddCommand(label string, fn CommandFunc) ports.Refcon {
	return t.add(&entry{kind: KindCommand, label: label, command: fn})
}

// AddMenu registers a menu handler.
func (t *Table) AddMenu(label string, fn MenuFunc) ports.Refcon {
	return t.add(&entry{kind: KindMenu, label: label, menu: fn})
}

// AddDraw registers a draw callback.
func (t *Table) AddDraw(label string, fn DrawFunc) ports.Refcon {
	return t.add(&entry{kind: KindDraw, label: label, draw: fn})
}

// AddCamera registers a camera override callback.
func (t *Table) AddCamera(label string, fn CameraFunc) ports.Refcon {
	return t.add(&entry{kind: KindCamera, label: label, camera: fn})
}

// AddAccessor registers a plugin-owned dataref's read and write functions.
func (t *Table) AddAccessor(label string, fns AccessorFuncs) ports.Refcon {
	return t.add(&entry{kind: KindAccessor, label: label, accessor: fns})
}

// Remove deletes the entry for refcon. It reports whether one existed.
func (t *Table) Remove(refcon ports.Refcon) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[refcon]
	delete(t.entries, refcon)
	return ok
}

// Has reports whether refcon has an entry.
func (t *Table) Has(refcon ports.Refcon) bool {
	_, ok := t.lookup(refcon)
	return ok
}

// KindOf returns the kind registered for refcon.
func (t *Table) KindOf(refcon ports.Refcon) (Kind, bool) {
	e, ok := t.lookup(refcon)
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) lookup(refcon ports.Refcon) (*entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[refcon]
	return e, ok
}

// resolve finds the entry for refcon and checks its kind.
func (t *Table) resolve(refcon ports.Refcon, kind Kind) (*entry, bool) {
	e, ok := t.lookup(refcon)
	if !ok {
		t.logger.Debug("dispatch: no entry for refcon", "refcon", refcon, "kind", kind.String())
		return nil, false
	}
	if e.kind != kind {
		t.logger.Warn("dispatch: refcon kind mismatch", "refcon", refcon, "want", kind.String(), "have", e.kind.String())
		return nil, false
	}
	return e, true
}

// run invokes fn through the middleware chain. The mutex is not held while
// plugin code runs, so callbacks may add and remove entries.
func (t *Table) run(refcon ports.Refcon, e *entry, fn Invoke) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{Value: r, Callback: e.kind.String(), Stack: debug.Stack()}
			t.logger.Error("dispatch: unrecovered panic at callback edge", "callback", e.label, "error", err)
		}
	}()

	wrapped := fn
	for i := len(t.middleware) - 1; i >= 0; i-- {
		wrapped = t.middleware[i](wrapped)
	}
	return wrapped(NewCallContext(t.base, e.kind, refcon, e.label))
}

// FlightLoop implements ports.CallbackSink. A fault returns 0, which
// unschedules the loop.
func (t *Table) FlightLoop(refcon ports.Refcon, sinceLastCall, sinceLastLoop float32, counter int) entities.Interval {
	e, ok := t.resolve(refcon, KindFlightLoop)
	if !ok {
		return entities.Stop
	}
	tick := entities.Tick{SinceLastCall: sinceLastCall, SinceLastLoop: sinceLastLoop, Counter: counter}
	next := entities.Stop
	if err := t.run(refcon, e, func(ctx CallContext) error {
		next = e.flightLoop(ctx, tick)
		return nil
	}); err != nil {
		return entities.Stop
	}
	return next
}

// Command implements ports.CallbackSink. A fault passes the command through.
func (t *Table) Command(refcon ports.Refcon, _ ports.RawHandle, phase entities.CommandPhase) int {
	e, ok := t.resolve(refcon, KindCommand)
	if !ok {
		return entities.PassThrough.Raw()
	}
	verdict := entities.PassThrough
	if err := t.run(refcon, e, func(ctx CallContext) error {
		verdict = e.command(ctx, phase)
		return nil
	}); err != nil {
		return entities.PassThrough.Raw()
	}
	return verdict.Raw()
}

// MenuSelected implements ports.CallbackSink.
func (t *Table) MenuSelected(menuRefcon, itemRefcon ports.Refcon) {
	e, ok := t.resolve(menuRefcon, KindMenu)
	if !ok {
		return
	}
	_ = t.run(menuRefcon, e, func(ctx CallContext) error {
		e.menu(ctx, itemRefcon)
		return nil
	})
}

// Draw implements ports.CallbackSink. A fault lets the host draw normally.
func (t *Table) Draw(refcon ports.Refcon, phase entities.DrawPhase, before bool) int {
	e, ok := t.resolve(refcon, KindDraw)
	if !ok {
		return 1
	}
	proceed := true
	if err := t.run(refcon, e, func(ctx CallContext) error {
		proceed = e.draw(ctx, phase, before)
		return nil
	}); err != nil {
		return 1
	}
	if !proceed && before {
		return 0
	}
	return 1
}

// Camera implements ports.CallbackSink. A fault gives up the camera.
func (t *Table) Camera(refcon ports.Refcon, pos *entities.CameraPosition, losingControl bool) int {
	e, ok := t.resolve(refcon, KindCamera)
	if !ok {
		return 0
	}
	keep := false
	if err := t.run(refcon, e, func(ctx CallContext) error {
		keep = e.camera(ctx, pos, losingControl)
		return nil
	}); err != nil || !keep {
		return 0
	}
	return 1
}

// ReadData implements ports.CallbackSink. A fault reads as the zero value of
// the requested kind.
func (t *Table) ReadData(refcon ports.Refcon, kind entities.ValueKind) entities.Value {
	zero := entities.Value{Kind: kind}
	e, ok := t.resolve(refcon, KindAccessor)
	if !ok || e.accessor.Read == nil {
		return zero
	}
	v := zero
	if err := t.run(refcon, e, func(ctx CallContext) error {
		v = e.accessor.Read(ctx, kind)
		return nil
	}); err != nil {
		return zero
	}
	return v
}

// WriteData implements ports.CallbackSink.
func (t *Table) WriteData(refcon ports.Refcon, v entities.Value) {
	e, ok := t.resolve(refcon, KindAccessor)
	if !ok || e.accessor.Write == nil {
		return
	}
	_ = t.run(refcon, e, func(ctx CallContext) error {
		e.accessor.Write(ctx, v)
		return nil
	})
}
