package sdk

import (
	"context"
	"time"

	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/flightloop"
	"github.com/skyframe-dev/xplm-sdk/menu"
	"github.com/skyframe-dev/xplm-sdk/scenery"
)

// Every calls fn every d of sim time until fn returns false.
func (s *Session) Every(d time.Duration, fn func(ctx context.Context, tick Tick) bool, opts ...flightloop.ScheduleOption) (flightloop.ID, error) {
	interval := entities.Seconds(d)
	return s.Loops.Schedule(func(ctx context.Context, tick entities.Tick) entities.Interval {
		if !fn(ctx, tick) {
			return 0
		}
		return interval
	}, interval, opts...)
}

// EveryFrame calls fn once per frame until fn returns false.
func (s *Session) EveryFrame(fn func(ctx context.Context, tick Tick) bool, opts ...flightloop.ScheduleOption) (flightloop.ID, error) {
	return s.Loops.Schedule(func(ctx context.Context, tick entities.Tick) entities.Interval {
		if !fn(ctx, tick) {
			return 0
		}
		return entities.Frames(1)
	}, entities.Frames(1), opts...)
}

// OnCommand finds or creates the named command and runs fn each time it
// begins. The host's own handling of the command is suppressed.
func (s *Session) OnCommand(name, description string, fn func(ctx context.Context)) (menu.CommandRef, error) {
	cmd, err := s.Menus.FindOrCreateCommand(name, description)
	if err != nil {
		return menu.CommandRef{}, err
	}
	_, err = s.Menus.RegisterHandler(cmd, func(ctx context.Context, phase entities.CommandPhase) entities.Disposition {
		if phase == entities.CommandBegin {
			fn(ctx)
		}
		return entities.Handled
	}, menu.Before)
	if err != nil {
		return menu.CommandRef{}, err
	}
	return cmd, nil
}

// Settings returns the plugin-specific section of the config file.
func (s *Session) Settings() config.Settings { return s.cfg.Settings }

// NewHandoff creates a mailbox sized by the configured handoff capacity.
func NewHandoff[T any](s *Session) *flightloop.Handoff[T] {
	return flightloop.NewHandoff[T](s.cfg.HandoffCapacity)
}

// NewProbe creates a terrain probe wrapped with the configured rate limit
// and cache.
func (s *Session) NewProbe() (*scenery.RateLimited, error) {
	probe, err := s.Scenery.NewProbe()
	if err != nil {
		return nil, err
	}
	return probe.RateLimited(
		scenery.WithRate(s.cfg.ProbeRateHz, s.cfg.ProbeBurst),
		scenery.WithCache(s.cfg.ProbeCacheSize, s.cfg.ProbeCacheTTL),
	), nil
}
