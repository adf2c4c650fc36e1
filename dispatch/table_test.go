package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	sdkerrors "github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestTable(tr *callctx.Tracker) *Table {
	return NewTable(
		WithLogger(quietLogger()),
		WithMiddleware(PanicRecoveryMiddleware(), ThreadMiddleware(tr)),
	)
}

func TestTable_RefconsAreUnique(t *testing.T) {
	table := NewTable()
	a := table.AddMenu("a", func(context.Context, ports.Refcon) {})
	b := table.AddMenu("b", func(context.Context, ports.Refcon) {})
	assert.NotEqual(t, a, b)

	require.True(t, table.Remove(a))
	c := table.AddMenu("c", func(context.Context, ports.Refcon) {})
	assert.NotEqual(t, a, c, "refcons must never be reused")
	assert.Equal(t, 2, table.Len())
	assert.False(t, table.Remove(a))
}

func TestTable_FlightLoop(t *testing.T) {
	tr := callctx.New()
	table := newTestTable(tr)

	var got entities.Tick
	var seen entities.Thread
	refcon := table.AddFlightLoop("tick", func(ctx context.Context, tick entities.Tick) entities.Interval {
		got = tick
		seen = tr.Current()
		assert.Equal(t, entities.ThreadSim, callctx.ThreadFrom(ctx))
		return entities.Frames(1)
	})

	next := table.FlightLoop(refcon, 0.5, 0.25, 42)
	assert.Equal(t, entities.Frames(1), next)
	assert.Equal(t, entities.Tick{SinceLastCall: 0.5, SinceLastLoop: 0.25, Counter: 42}, got)
	assert.Equal(t, entities.ThreadSim, seen)
	assert.Equal(t, entities.ThreadNone, tr.Current(), "context must be popped after the call")
}

func TestTable_InertValues(t *testing.T) {
	tr := callctx.New()
	table := newTestTable(tr)

	boom := func() { panic("boom") }
	loop := table.AddFlightLoop("loop", func(context.Context, entities.Tick) entities.Interval { boom(); return 1 })
	cmd := table.AddCommand("cmd", func(context.Context, entities.CommandPhase) entities.Disposition {
		boom()
		return entities.Handled
	})
	draw := table.AddDraw("draw", func(context.Context, entities.DrawPhase, bool) bool { boom(); return false })
	cam := table.AddCamera("cam", func(context.Context, *entities.CameraPosition, bool) bool { boom(); return true })
	acc := table.AddAccessor("acc", AccessorFuncs{
		Read: func(context.Context, entities.ValueKind) entities.Value { boom(); return entities.FloatValue(1) },
	})

	assert.Equal(t, entities.Stop, table.FlightLoop(loop, 0, 0, 0))
	assert.Equal(t, 1, table.Command(cmd, 0, entities.CommandBegin), "panicking handler passes through")
	assert.Equal(t, 1, table.Draw(draw, entities.DrawObjects, true), "panicking draw lets the host draw")
	assert.Equal(t, 0, table.Camera(cam, &entities.CameraPosition{}, false), "panicking camera gives up control")
	assert.Equal(t, entities.Value{Kind: entities.KindFloat}, table.ReadData(acc, entities.KindFloat))
	assert.Equal(t, entities.ThreadNone, tr.Current(), "context must be popped after a panic")
}

func TestTable_UnknownOrMismatchedRefcon(t *testing.T) {
	table := NewTable(WithLogger(quietLogger()))
	called := false
	menu := table.AddMenu("menu", func(context.Context, ports.Refcon) { called = true })

	assert.Equal(t, entities.Stop, table.FlightLoop(menu, 0, 0, 0))
	assert.Equal(t, entities.Stop, table.FlightLoop(999, 0, 0, 0))
	assert.Equal(t, 1, table.Command(999, 0, entities.CommandBegin))
	assert.Equal(t, 1, table.Draw(999, entities.DrawObjects, true))
	assert.Equal(t, 0, table.Camera(999, nil, false))
	table.WriteData(999, entities.IntValue(1))
	assert.False(t, called)

	table.MenuSelected(menu, 7)
	assert.True(t, called)
}

func TestTable_LastResortRecover(t *testing.T) {
	// No middleware: the table's own recover must still catch the panic.
	table := NewTable(WithLogger(quietLogger()))
	refcon := table.AddCommand("cmd", func(context.Context, entities.CommandPhase) entities.Disposition {
		panic(errors.New("nil map"))
	})
	assert.NotPanics(t, func() {
		assert.Equal(t, 1, table.Command(refcon, 0, entities.CommandEnd))
	})
}

func TestTable_CommandDisposition(t *testing.T) {
	table := NewTable()
	var phases []entities.CommandPhase
	refcon := table.AddCommand("cmd", func(_ context.Context, phase entities.CommandPhase) entities.Disposition {
		phases = append(phases, phase)
		return entities.Handled
	})

	assert.Equal(t, 0, table.Command(refcon, 0, entities.CommandBegin))
	assert.Equal(t, 0, table.Command(refcon, 0, entities.CommandEnd))
	assert.Equal(t, []entities.CommandPhase{entities.CommandBegin, entities.CommandEnd}, phases)
}

func TestTable_DrawSuppressOnlyBefore(t *testing.T) {
	table := NewTable()
	refcon := table.AddDraw("draw", func(context.Context, entities.DrawPhase, bool) bool { return false })

	assert.Equal(t, 0, table.Draw(refcon, entities.DrawObjects, true))
	assert.Equal(t, 1, table.Draw(refcon, entities.DrawObjects, false))
}

func TestTable_CallbackMayRemoveItself(t *testing.T) {
	table := NewTable()
	var refcon ports.Refcon
	refcon = table.AddFlightLoop("once", func(context.Context, entities.Tick) entities.Interval {
		table.Remove(refcon)
		return 1
	})

	assert.Equal(t, entities.Interval(1), table.FlightLoop(refcon, 0, 0, 0))
	assert.False(t, table.Has(refcon))
	assert.Equal(t, entities.Stop, table.FlightLoop(refcon, 0, 0, 0))
}

func TestTable_AccessorInheritsThread(t *testing.T) {
	tr := callctx.New()
	table := newTestTable(tr)

	var seen entities.Thread
	acc := table.AddAccessor("acc", AccessorFuncs{
		Read: func(ctx context.Context, kind entities.ValueKind) entities.Value {
			seen = callctx.ThreadFrom(ctx)
			return entities.IntValue(3)
		},
	})

	exit := tr.Enter(entities.ThreadRender)
	v := table.ReadData(acc, entities.KindInt)
	exit()

	assert.Equal(t, entities.IntValue(3), v)
	assert.Equal(t, entities.ThreadRender, seen)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	table := NewTable(WithMiddleware(LoggingMiddleware(logger), PanicRecoveryMiddleware()))

	refcon := table.AddDraw("hud", func(context.Context, entities.DrawPhase, bool) bool { panic("bad draw") })
	table.Draw(refcon, entities.DrawWindow, false)

	out := buf.String()
	assert.Contains(t, out, "invoking callback")
	assert.Contains(t, out, "callback failed")
	assert.Contains(t, out, "label=hud")
	assert.Contains(t, out, "type=panic")
}

func TestMiddlewareOrder_FIFO(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Invoke) Invoke {
			return func(ctx CallContext) error {
				order = append(order, name+"-before")
				err := next(ctx)
				order = append(order, name+"-after")
				return err
			}
		}
	}

	table := NewTable(WithMiddleware(mw("mw1"), mw("mw2")))
	refcon := table.AddMenu("m", func(context.Context, ports.Refcon) { order = append(order, "handler") })
	table.MenuSelected(refcon, 0)

	assert.Equal(t, []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}, order)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	cause := errors.New("index out of range")
	invoke := PanicRecoveryMiddleware()(func(CallContext) error { panic(cause) })

	err := invoke(NewCallContext(context.Background(), KindCommand, 1, "cmd"))
	var pe *sdkerrors.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "command", pe.Callback)
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, pe.Stack)
}

func TestCallContext(t *testing.T) {
	type key string
	parent := context.WithValue(context.Background(), key("parent"), "p")
	cc := NewCallContext(parent, KindDraw, 9, "hud")

	assert.Equal(t, KindDraw, cc.Kind())
	assert.Equal(t, ports.Refcon(9), cc.Refcon())
	assert.Equal(t, "hud", cc.Label())

	_, ok := cc.GetValue("missing")
	assert.False(t, ok)

	cc.SetValue(key("local"), 1)
	v, ok := cc.GetValue(key("local"))
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, cc.Value(key("local")))
	assert.Equal(t, "p", cc.Value(key("parent")))
}

func TestKindThread(t *testing.T) {
	assert.Equal(t, entities.ThreadSim, KindFlightLoop.Thread())
	assert.Equal(t, entities.ThreadSim, KindMenu.Thread())
	assert.Equal(t, entities.ThreadRender, KindDraw.Thread())
	assert.Equal(t, entities.ThreadRender, KindCamera.Thread())
	assert.Equal(t, entities.ThreadNone, KindAccessor.Thread())
}
