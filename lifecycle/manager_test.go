package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInfo = entities.PluginInfo{Name: "Test", Signature: "dev.test.plugin", Description: "lifecycle test"}

type recorder struct {
	calls    []string
	released []ports.RawHandle
}

func (r *recorder) release(raw ports.RawHandle) { r.released = append(r.released, raw) }

func newManager(t *testing.T, hooks Hooks) (*Manager, *handle.Registry, *callctx.Tracker) {
	t.Helper()
	reg := handle.NewRegistry()
	tr := callctx.New()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewManager(testInfo, hooks, reg, tr, WithLogger(logger)), reg, tr
}

func TestManager_FullCycle(t *testing.T) {
	rec := &recorder{}
	var reg *handle.Registry
	var tr *callctx.Tracker

	hooks := Hooks{
		Start: func(ctx context.Context) error {
			rec.calls = append(rec.calls, "start")
			assert.Equal(t, entities.ThreadSim, tr.Current())
			assert.Equal(t, entities.ThreadSim, callctx.ThreadFrom(ctx))
			_, err := handle.Acquire[handle.CommandHandlerTag](reg, 1, rec.release)
			return err
		},
		Enable: func(context.Context) error {
			rec.calls = append(rec.calls, "enable")
			_, err := handle.Acquire[handle.FlightLoopTag](reg, 2, rec.release)
			return err
		},
		Disable: func(context.Context) { rec.calls = append(rec.calls, "disable") },
		Stop:    func(context.Context) { rec.calls = append(rec.calls, "stop") },
	}
	m, r, tracker := newManager(t, hooks)
	reg, tr = r, tracker

	var transitions []string
	m.OnTransition(func(from, to entities.LifecycleState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	info, ok := m.Start()
	require.True(t, ok)
	assert.Equal(t, testInfo, info)
	assert.Equal(t, entities.StateStarted, m.State())

	require.True(t, m.Enable())
	assert.Equal(t, 2, reg.Live())

	m.Disable()
	assert.Equal(t, entities.StateDisabled, m.State())
	assert.Equal(t, []ports.RawHandle{2}, rec.released, "enable scope is released on disable")
	assert.Equal(t, 1, reg.Live())

	require.True(t, m.Enable())
	m.Disable()
	m.Stop()
	assert.Equal(t, entities.StateStopped, m.State())
	assert.Equal(t, 0, reg.Live())
	assert.Equal(t, []ports.RawHandle{2, 2, 1}, rec.released)

	assert.Equal(t, []string{"start", "enable", "disable", "enable", "disable", "stop"}, rec.calls)
	assert.Equal(t, []string{
		"unloaded->started", "started->enabled", "enabled->disabled",
		"disabled->enabled", "enabled->disabled", "disabled->stopped",
	}, transitions)
}

func TestManager_StopWithoutEnable(t *testing.T) {
	m, _, _ := newManager(t, Hooks{})
	_, ok := m.Start()
	require.True(t, ok)
	m.Stop()
	assert.Equal(t, entities.StateStopped, m.State())
}

func TestManager_StartFailureRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		start func(reg *handle.Registry, rec *recorder) error
	}{
		{
			name: "hook error",
			start: func(reg *handle.Registry, rec *recorder) error {
				_, _ = handle.Acquire[handle.MenuTag](reg, 1, rec.release)
				_, _ = handle.Acquire[handle.MenuTag](reg, 2, rec.release)
				return errors.New("dataref sim/missing not found")
			},
		},
		{
			name: "hook panic",
			start: func(reg *handle.Registry, rec *recorder) error {
				_, _ = handle.Acquire[handle.MenuTag](reg, 1, rec.release)
				_, _ = handle.Acquire[handle.MenuTag](reg, 2, rec.release)
				panic("boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			var reg *handle.Registry
			enabled := false
			m, r, _ := newManager(t, Hooks{
				Start:  func(context.Context) error { return tt.start(reg, rec) },
				Enable: func(context.Context) error { enabled = true; return nil },
			})
			reg = r

			_, ok := m.Start()
			assert.False(t, ok)
			assert.Equal(t, entities.StateUnloaded, m.State())
			assert.True(t, m.Failed())
			assert.Equal(t, 0, reg.Live())
			assert.Equal(t, []ports.RawHandle{2, 1}, rec.released)

			assert.False(t, m.Enable(), "no hook runs after a failed start")
			assert.False(t, enabled)
			_, ok = m.Start()
			assert.False(t, ok)
		})
	}
}

func TestManager_EnableFailure(t *testing.T) {
	rec := &recorder{}
	var reg *handle.Registry
	m, r, _ := newManager(t, Hooks{
		Enable: func(context.Context) error {
			_, _ = handle.Acquire[handle.DrawCallbackTag](reg, 9, rec.release)
			return errors.New("no instancing")
		},
	})
	reg = r

	_, ok := m.Start()
	require.True(t, ok)
	assert.False(t, m.Enable())
	assert.Equal(t, entities.StateDisabled, m.State())
	assert.Equal(t, []ports.RawHandle{9}, rec.released)
	assert.Equal(t, entities.ScopePlugin, reg.Scope())
}

func TestManager_InvalidTransitions(t *testing.T) {
	calls := 0
	m, _, _ := newManager(t, Hooks{
		Enable:  func(context.Context) error { calls++; return nil },
		Disable: func(context.Context) { calls++ },
		Stop:    func(context.Context) { calls++ },
	})

	assert.False(t, m.Enable(), "enable before start")
	m.Disable()
	m.Stop()
	assert.Equal(t, 0, calls)
	assert.Equal(t, entities.StateUnloaded, m.State())

	_, ok := m.Start()
	require.True(t, ok)
	require.True(t, m.Enable())
	m.Stop()
	assert.Equal(t, entities.StateEnabled, m.State(), "stop while enabled is refused")
	_, ok = m.Start()
	assert.False(t, ok)
}

func TestManager_ReceiveMessage(t *testing.T) {
	var got []entities.Message
	m, _, _ := newManager(t, Hooks{
		ReceiveMessage: func(_ context.Context, msg entities.Message) { got = append(got, msg) },
	})

	m.ReceiveMessage(0, entities.MsgPlaneLoaded, 0)
	assert.Empty(t, got, "dropped while unloaded")

	_, ok := m.Start()
	require.True(t, ok)
	m.ReceiveMessage(0, entities.MsgPlaneLoaded, 0)
	require.True(t, m.Enable())
	m.ReceiveMessage(42, entities.MessageID(0x8000001), 0xdead)
	m.Disable()
	m.Stop()
	m.ReceiveMessage(0, entities.MsgWillWritePrefs, 0)

	require.Len(t, got, 3)
	assert.Equal(t, entities.MsgPlaneLoaded, got[0].ID)
	assert.Equal(t, 42, got[1].Sender)
	assert.False(t, got[1].ID.Known())
	assert.Equal(t, uintptr(0xdead), got[1].Payload)
	assert.Equal(t, entities.MsgWillWritePrefs, got[2].ID)
}

func TestManager_PanickingHooksAreInert(t *testing.T) {
	m, _, tr := newManager(t, Hooks{
		Disable:        func(context.Context) { panic("disable") },
		Stop:           func(context.Context) { panic("stop") },
		ReceiveMessage: func(context.Context, entities.Message) { panic("message") },
	})

	_, ok := m.Start()
	require.True(t, ok)
	require.True(t, m.Enable())
	assert.NotPanics(t, func() {
		m.ReceiveMessage(0, entities.MsgAirportLoaded, 0)
		m.Disable()
		m.Stop()
	})
	assert.Equal(t, entities.StateStopped, m.State())
	assert.Equal(t, 0, tr.Depth())
}
