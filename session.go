// Package sdk binds a plugin to the host's native plugin API.
//
// A Session is the plugin's process-wide state: one handle registry, one
// callback table and one instance of every component, all talking to the
// same host. The host drives it through the lifecycle entry points and
// calls back into it through the callback sink.
//
//	s := sdk.New(host, info, hooks, sdk.WithConfig(cfg))
//	host.Bind(s)
//	info, ok := s.Start()
package sdk

import (
	"io"
	"log/slog"

	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/dataref"
	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/flightloop"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/instance"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/skyframe-dev/xplm-sdk/internal/hostversion"
	"github.com/skyframe-dev/xplm-sdk/lifecycle"
	sdklog "github.com/skyframe-dev/xplm-sdk/log"
	"github.com/skyframe-dev/xplm-sdk/menu"
	"github.com/skyframe-dev/xplm-sdk/scenery"
)

// Session wires every component to one host.
type Session struct {
	// Data reads, writes and publishes datarefs.
	Data *dataref.Access
	// Loops schedules flight-loop callbacks.
	Loops *flightloop.Scheduler
	// Menus builds menus and dispatches commands.
	Menus *menu.Dispatcher
	// Instances manages objects, instances, draw callbacks and the camera.
	Instances *instance.Manager
	// Scenery probes terrain and queries the navigation database.
	Scenery *scenery.Service

	host      ports.Host
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	registry  *handle.Registry
	calls     *callctx.Tracker
	table     *dispatch.Table
	gate      *hostversion.Gate
	lifecycle *lifecycle.Manager
	extra     []dispatch.Middleware
}

var (
	_ ports.Entrypoints  = (*Session)(nil)
	_ ports.CallbackSink = (*Session)(nil)
)

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the configuration. Without it config.Default applies.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger. Without it records go to the host debug log
// through the log package, at the configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMiddleware adds callback middleware inside the built-in logging,
// panic recovery and thread marking.
func WithMiddleware(mw ...dispatch.Middleware) Option {
	return func(s *Session) {
		s.extra = append(s.extra, mw...)
	}
}

// New creates a Session for host. The plugin reports info from Start and
// runs hooks on each transition. New does not bind the host; call
// host.Bind(session) before the host can call back.
func New(host ports.Host, info entities.PluginInfo, hooks lifecycle.Hooks, opts ...Option) *Session {
	s := &Session{
		host: host,
		cfg:  config.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		h := sdklog.NewHandler(host,
			sdklog.WithPrefix(info.Name),
			sdklog.WithLevel(s.cfg.Level()),
			sdklog.WithFile(s.cfg.LogFile, s.cfg.LogMaxSizeMB, s.cfg.LogMaxBackups),
		)
		s.logger = slog.New(h)
		s.logCloser = h
	}

	_, sdkVersion, _ := host.GetVersions()
	s.gate = hostversion.New(sdkVersion)
	s.registry = handle.NewRegistry()
	s.calls = callctx.New(callctx.WithStrict(s.cfg.StrictThreads), callctx.WithLogger(s.logger))

	mw := []dispatch.Middleware{
		dispatch.LoggingMiddleware(s.logger),
		dispatch.PanicRecoveryMiddleware(),
		dispatch.ThreadMiddleware(s.calls),
	}
	s.table = dispatch.NewTable(
		dispatch.WithMiddleware(append(mw, s.extra...)...),
		dispatch.WithLogger(s.logger),
	)

	s.Data = dataref.New(host, s.registry, s.calls, s.table, dataref.WithLogger(s.logger))
	s.Loops = flightloop.New(host, s.registry, s.calls, s.table,
		flightloop.WithLogger(s.logger), flightloop.WithGate(s.gate))
	s.Menus = menu.New(host, s.registry, s.calls, s.table, menu.WithLogger(s.logger))
	s.Instances = instance.New(host, s.registry, s.calls, s.table,
		instance.WithLogger(s.logger), instance.WithGate(s.gate))
	s.Scenery = scenery.New(host, s.registry, s.calls, scenery.WithLogger(s.logger))

	s.lifecycle = lifecycle.NewManager(info, hooks, s.registry, s.calls, lifecycle.WithLogger(s.logger))
	s.lifecycle.OnTransition(func(_, to entities.LifecycleState) {
		if to == entities.StateStopped {
			s.closeLog()
		}
	})

	s.logger.Debug("sdk: session created",
		"sdk_version", Version,
		"host_sdk", s.gate.Host().String(),
		"strict_threads", s.cfg.StrictThreads,
	)
	return s
}

// Start implements ports.Entrypoints. Hosts older than MinHostSDK are
// refused before the start hook runs.
func (s *Session) Start() (entities.PluginInfo, bool) {
	if err := s.gate.Require("plugin", hostversion.FromSDK(MinHostSDK)); err != nil {
		s.logger.Error("sdk: host too old", "error", err)
		return s.lifecycle.Info(), false
	}
	return s.lifecycle.Start()
}

// Enable implements ports.Entrypoints.
func (s *Session) Enable() bool { return s.lifecycle.Enable() }

// Disable implements ports.Entrypoints.
func (s *Session) Disable() { s.lifecycle.Disable() }

// Stop implements ports.Entrypoints.
func (s *Session) Stop() { s.lifecycle.Stop() }

// ReceiveMessage implements ports.Entrypoints.
func (s *Session) ReceiveMessage(from int, msg entities.MessageID, param uintptr) {
	s.lifecycle.ReceiveMessage(from, msg, param)
}

// State returns the lifecycle state.
func (s *Session) State() entities.LifecycleState { return s.lifecycle.State() }

// OnTransition registers fn to observe lifecycle transitions.
func (s *Session) OnTransition(fn lifecycle.TransitionFunc) { s.lifecycle.OnTransition(fn) }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Config returns the session configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Registry returns the handle registry. Tests use it to count live handles.
func (s *Session) Registry() *handle.Registry { return s.registry }

// Thread returns the host thread context of the current call.
func (s *Session) Thread() entities.Thread { return s.calls.Current() }

// HostVersion returns the host's plugin API version, e.g. "3.0.3".
func (s *Session) HostVersion() string { return s.gate.Host().String() }

// SendMessage sends a message to another plugin by id.
func (s *Session) SendMessage(plugin int, msg entities.MessageID, param uintptr) error {
	if err := s.calls.Require("sdk.send_message", callctx.Sim...); err != nil {
		return err
	}
	s.host.SendMessageToPlugin(plugin, msg, param)
	return nil
}

func (s *Session) closeLog() {
	if s.logCloser == nil {
		return
	}
	if err := s.logCloser.Close(); err != nil {
		s.logger.Warn("sdk: closing log file", "error", err)
	}
	s.logCloser = nil
}
