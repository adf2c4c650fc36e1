// Package flightloop schedules periodic callbacks on the host's flight loop.
//
// A callback returns the interval until its next call: positive values are
// seconds, negative values are frames and zero leaves the registration
// dormant until Reschedule. Registrations belong to the handle scope they
// were created in and are destroyed with it.
package flightloop

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/skyframe-dev/xplm-sdk/internal/hostversion"
)

// ID identifies one registration.
type ID = handle.Handle[handle.FlightLoopTag]

// Callback runs on the sim thread and returns the next interval.
type Callback func(ctx context.Context, tick entities.Tick) entities.Interval

type registration struct {
	cb       Callback
	name     string
	id       ID
	raw      ports.RawHandle
	refcon   ports.Refcon
	seq      uint64
	phase    entities.LoopPhase
	interval entities.Interval
	override entities.Interval

	running    bool
	overridden bool
	cancelled  bool
	destroyed  bool
}

// Info describes a live registration.
type Info struct {
	ID       ID
	Name     string
	Phase    entities.LoopPhase
	Interval entities.Interval
}

// Scheduler owns the plugin's flight-loop registrations.
type Scheduler struct {
	host     ports.Processing
	registry *handle.Registry
	calls    *callctx.Tracker
	table    *dispatch.Table
	gate     *hostversion.Gate
	logger   *slog.Logger
	regs     map[ID]*registration
	seq      uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithGate rejects scheduling on hosts without the flight-loop API.
func WithGate(gate *hostversion.Gate) Option {
	return func(s *Scheduler) {
		s.gate = gate
	}
}

// New creates a Scheduler.
func New(host ports.Processing, registry *handle.Registry, calls *callctx.Tracker, table *dispatch.Table, opts ...Option) *Scheduler {
	s := &Scheduler{
		host:     host,
		registry: registry,
		calls:    calls,
		table:    table,
		logger:   slog.Default(),
		regs:     make(map[ID]*registration),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleOption configures one registration.
type ScheduleOption func(*registration)

// WithPhase selects when in the host frame the callback runs. The default
// is before the flight model.
func WithPhase(phase entities.LoopPhase) ScheduleOption {
	return func(r *registration) {
		r.phase = phase
	}
}

// WithName labels the registration in logs.
func WithName(name string) ScheduleOption {
	return func(r *registration) {
		r.name = name
	}
}

// Schedule registers cb and schedules its first call interval from now.
// A Stop interval registers it dormant.
func (s *Scheduler) Schedule(cb Callback, interval entities.Interval, opts ...ScheduleOption) (ID, error) {
	if err := s.calls.Require("flightloop.schedule", callctx.Sim...); err != nil {
		return ID{}, err
	}
	if err := s.gate.Require("flight loop", hostversion.FlightLoops); err != nil {
		return ID{}, err
	}

	s.seq++
	reg := &registration{cb: cb, name: "flightloop", seq: s.seq, phase: entities.PhaseBeforeFlightModel}
	for _, opt := range opts {
		opt(reg)
	}

	reg.refcon = s.table.AddFlightLoop(reg.name, func(ctx context.Context, tick entities.Tick) entities.Interval {
		return s.dispatch(ctx, reg, tick)
	})
	reg.raw = s.host.CreateFlightLoop(reg.phase, reg.refcon)

	id, err := handle.Acquire[handle.FlightLoopTag](s.registry, reg.raw, func(ports.RawHandle) {
		s.destroy(reg)
	})
	if err != nil {
		s.table.Remove(reg.refcon)
		return ID{}, err
	}
	reg.id = id
	s.regs[id] = reg

	if !interval.IsStop() {
		reg.interval = interval
		s.host.ScheduleFlightLoop(reg.raw, interval, true)
	}
	s.logger.Debug("flightloop: scheduled", "name", reg.name, "id", id.String(), "interval", interval.String())
	return id, nil
}

// dispatch runs one host call of reg. An explicit Reschedule inside the
// callback wins over its return value unless the callback panics: the
// host then gets Stop, so the registration goes dormant too.
func (s *Scheduler) dispatch(ctx context.Context, reg *registration, tick entities.Tick) (next entities.Interval) {
	if reg.cancelled || reg.destroyed {
		return entities.Stop
	}
	reg.running = true
	reg.overridden = false
	returned := false
	defer func() {
		reg.running = false
		if reg.cancelled {
			s.destroy(reg)
			next = entities.Stop
			return
		}
		if reg.overridden && returned {
			next = reg.override
		}
		reg.interval = next
		if next.IsStop() {
			s.logger.Debug("flightloop: dormant", "name", reg.name, "id", reg.id.String())
		}
	}()

	// The dispatch table recovers a panic and returns Stop to the host.
	next = reg.cb(ctx, tick)
	returned = true
	return next
}

func (s *Scheduler) destroy(reg *registration) {
	if reg.destroyed {
		return
	}
	reg.destroyed = true
	s.host.DestroyFlightLoop(reg.raw)
	s.table.Remove(reg.refcon)
	delete(s.regs, reg.id)
}

func (s *Scheduler) lookup(op string, id ID) (*registration, error) {
	if _, err := handle.Raw(s.registry, id); err != nil {
		return nil, err
	}
	if err := s.calls.Require(op, callctx.Sim...); err != nil {
		return nil, err
	}
	return s.regs[id], nil
}

// Reschedule sets the next call interval from now. Called from the
// registration's own callback it replaces the callback's return value.
func (s *Scheduler) Reschedule(id ID, interval entities.Interval) error {
	reg, err := s.lookup("flightloop.reschedule", id)
	if err != nil {
		return err
	}
	if reg.running {
		reg.override = interval
		reg.overridden = true
	}
	reg.interval = interval
	s.host.ScheduleFlightLoop(reg.raw, interval, true)
	return nil
}

// Cancel destroys the registration. Called from the registration's own
// callback it takes effect when the callback returns; the ID is invalid
// immediately either way.
func (s *Scheduler) Cancel(id ID) error {
	reg, err := s.lookup("flightloop.cancel", id)
	if err != nil {
		return err
	}
	if reg.running {
		reg.cancelled = true
		return handle.Forget(s.registry, id)
	}
	return handle.Release(s.registry, id)
}

// Interval returns the registration's current interval (Stop when dormant).
func (s *Scheduler) Interval(id ID) (entities.Interval, error) {
	if _, err := handle.Raw(s.registry, id); err != nil {
		return entities.Stop, err
	}
	return s.regs[id].interval, nil
}

// Active lists live registrations in creation order.
func (s *Scheduler) Active() []Info {
	regs := make([]*registration, 0, len(s.regs))
	for _, reg := range s.regs {
		if !reg.cancelled {
			regs = append(regs, reg)
		}
	}
	slices.SortFunc(regs, func(a, b *registration) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]Info, len(regs))
	for i, reg := range regs {
		out[i] = Info{ID: reg.id, Name: reg.name, Phase: reg.phase, Interval: reg.interval}
	}
	return out
}
