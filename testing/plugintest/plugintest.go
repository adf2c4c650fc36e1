// Package plugintest runs plugins against the in-memory simulator.
//
//	h := plugintest.New(t, myPlugin)
//	h.Load()
//	h.Run(10, 50*time.Millisecond)
//	h.Trigger("example/beacon/toggle")
//	h.Unload()
package plugintest

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/application/plugin"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/host"
	sdklog "github.com/skyframe-dev/xplm-sdk/log"
)

// Harness drives one plugin through its lifecycle on a Simulator.
type Harness struct {
	t       testing.TB
	Sim     *host.Simulator
	Session *sdk.Session
}

type options struct {
	host    []host.Option
	session []sdk.Option
	cfg     config.Config
}

// Option configures a Harness.
type Option func(*options)

// WithHostOptions configures the simulator.
func WithHostOptions(opts ...host.Option) Option {
	return func(o *options) {
		o.host = append(o.host, opts...)
	}
}

// WithSessionOptions adds session options. They apply after the harness
// defaults, so a WithLogger here replaces the test log.
func WithSessionOptions(opts ...sdk.Option) Option {
	return func(o *options) {
		o.session = append(o.session, opts...)
	}
}

// WithSettings sets the plugin's settings section.
func WithSettings(settings config.Settings) Option {
	return func(o *options) {
		o.cfg.Settings = settings
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// testSink writes host log lines to the test log.
type testSink struct{ t testing.TB }

func (s testSink) DebugString(msg string) {
	s.t.Helper()
	s.t.Log(strings.TrimSuffix(msg, "\n"))
}

// New creates a harness for p. Log records go to t.Log at the configured
// level.
func New(t testing.TB, p plugin.Plugin, opts ...Option) *Harness {
	t.Helper()
	o := options{cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	sim := host.New(o.host...)
	logger := slog.New(sdklog.NewHandler(testSink{t: t},
		sdklog.WithPrefix(p.Info().Name),
		sdklog.WithLevel(o.cfg.Level()),
	))
	sessionOpts := append([]sdk.Option{sdk.WithConfig(o.cfg), sdk.WithLogger(logger)}, o.session...)

	s := plugin.NewSession(sim, p, sessionOpts...)
	sim.Bind(s)
	return &Harness{t: t, Sim: sim, Session: s}
}

// Load starts and enables the plugin and fails the test if either is
// refused.
func (h *Harness) Load() *Harness {
	h.t.Helper()
	_, ok := h.Session.Start()
	require.True(h.t, ok, "plugin refused to start")
	require.True(h.t, h.Session.Enable(), "plugin refused to enable")
	return h
}

// Run advances the simulator by frames frames of dt each.
func (h *Harness) Run(frames int, dt time.Duration) {
	h.Sim.Run(frames, dt)
}

// Trigger fires a command once and fails the test if it does not exist.
func (h *Harness) Trigger(name string) {
	h.t.Helper()
	require.True(h.t, h.Sim.TriggerCommand(name), "unknown command %s", name)
}

// Click picks a menu item by path below the Plugins menu.
func (h *Harness) Click(path ...string) {
	h.t.Helper()
	require.NoError(h.t, h.Sim.ClickMenuItem(path...))
}

// Render runs one render frame and returns the phases the plugin
// suppressed.
func (h *Harness) Render() []entities.DrawPhase {
	return h.Sim.Render()
}

// Unload disables and stops the plugin and asserts nothing it acquired is
// still alive.
func (h *Harness) Unload() {
	h.t.Helper()
	if h.Session.State() == entities.StateEnabled {
		h.Session.Disable()
	}
	h.Session.Stop()
	AssertClean(h.t, h)
}

// AssertClean asserts the plugin holds no handles and left nothing
// registered with the host.
func AssertClean(t testing.TB, h *Harness) {
	t.Helper()
	assert.Zero(t, h.Session.Registry().Live(), "live handles")
	assert.Zero(t, h.Sim.Loops(), "flight loops")
	assert.Zero(t, h.Sim.Menus(), "menus")
	assert.Zero(t, h.Sim.DrawCallbacks(), "draw callbacks")
	assert.Zero(t, h.Sim.Objects(), "objects")
	assert.Zero(t, h.Sim.Probes(), "probes")
	assert.False(t, h.Sim.CameraControlled(), "camera control")
}

// AssertValue asserts a host dataref holds a scalar numerically equal to
// expected.
func AssertValue(t testing.TB, h *Harness, name string, expected float64) {
	t.Helper()
	v, ok := h.Sim.Value(name)
	if !assert.True(t, ok, "dataref %s not defined", name) {
		return
	}
	actual, ok := toFloat64(v)
	if !assert.True(t, ok, "dataref %s is %s, not a scalar", name, v.Kind) {
		return
	}
	assert.InDelta(t, expected, actual, 1e-6, "dataref %s", name)
}

func toFloat64(v entities.Value) (float64, bool) {
	switch v.Kind {
	case entities.KindInt:
		return float64(v.Int), true
	case entities.KindFloat:
		return float64(v.Float), true
	case entities.KindDouble:
		return v.Double, true
	default:
		return 0, false
	}
}

// TestCase defines a table-driven plugin scenario. Frames run at 50ms
// each after the plugin is loaded.
type TestCase struct {
	Name     string
	Settings config.Settings
	Frames   int
	Validate func(t *testing.T, h *Harness)
}

// RunPluginTests runs each case against a fresh plugin from newPlugin and
// unloads it afterwards.
func RunPluginTests(t *testing.T, newPlugin func() plugin.Plugin, tests []TestCase) {
	t.Helper()

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			h := New(t, newPlugin(), WithSettings(tc.Settings)).Load()
			h.Run(tc.Frames, 50*time.Millisecond)
			if tc.Validate != nil {
				tc.Validate(t, h)
			}
			h.Unload()
		})
	}
}
