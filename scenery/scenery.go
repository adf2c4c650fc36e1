// Package scenery answers terrain and navigation questions through the host.
//
// Probe results and navigation queries are point-in-time answers.
// RateLimited keeps recent probe hits for a short TTL.
package scenery

import (
	"log/slog"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Host is the slice of the host API the service needs.
type Host interface {
	ports.Scenery
	ports.Navigation
}

// ProbeID identifies a terrain probe.
type ProbeID = handle.Handle[handle.ProbeTag]

// Service wraps terrain probes, coordinate conversion and the navigation
// database.
type Service struct {
	host     Host
	registry *handle.Registry
	calls    *callctx.Tracker
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(host Host, registry *handle.Registry, calls *callctx.Tracker, opts ...Option) *Service {
	s := &Service{
		host:     host,
		registry: registry,
		calls:    calls,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Probe is a host terrain probe. It is not safe for concurrent use.
type Probe struct {
	svc *Service
	id  ProbeID
}

// NewProbe creates a terrain probe owned by the current scope.
func (s *Service) NewProbe() (*Probe, error) {
	if err := s.calls.Require("scenery.new_probe", callctx.Sim...); err != nil {
		return nil, err
	}
	raw := s.host.CreateProbe()
	if raw == 0 {
		return nil, &errors.AcquisitionFailedError{Kind: "probe"}
	}
	id, err := handle.Acquire[handle.ProbeTag](s.registry, raw, s.host.DestroyProbe)
	if err != nil {
		s.host.DestroyProbe(raw)
		return nil, err
	}
	return &Probe{svc: s, id: id}, nil
}

// ID returns the probe's handle.
func (p *Probe) ID() ProbeID { return p.id }

// ProbeTerrain asks for the terrain directly above or below pos. A miss or
// a host error yields NoData.
func (p *Probe) ProbeTerrain(pos entities.LocalPoint) (entities.ProbeResult, error) {
	raw, err := handle.Raw(p.svc.registry, p.id)
	if err != nil {
		return entities.ProbeResult{}, err
	}
	if err := p.svc.calls.Require("scenery.probe_terrain", callctx.Sim...); err != nil {
		return entities.ProbeResult{}, err
	}
	result, status := p.svc.host.ProbeTerrainXYZ(raw, float32(pos.X), float32(pos.Y), float32(pos.Z))
	if status != entities.ProbeHitTerrain {
		return entities.ProbeResult{}, &errors.NoDataError{Query: "terrain probe", Status: status}
	}
	return result, nil
}

// Close destroys the probe.
func (p *Probe) Close() error {
	if err := p.svc.calls.Require("scenery.close_probe", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(p.svc.registry, p.id)
}

// WorldToLocal converts a geodetic position to local coordinates.
func (s *Service) WorldToLocal(p entities.WorldPoint) (entities.LocalPoint, error) {
	if err := s.calls.Require("scenery.world_to_local", callctx.SimOrRender...); err != nil {
		return entities.LocalPoint{}, err
	}
	x, y, z := s.host.WorldToLocal(p.Latitude, p.Longitude, p.Altitude)
	return entities.LocalPoint{X: x, Y: y, Z: z}, nil
}

// LocalToWorld converts local coordinates to a geodetic position.
func (s *Service) LocalToWorld(p entities.LocalPoint) (entities.WorldPoint, error) {
	if err := s.calls.Require("scenery.local_to_world", callctx.SimOrRender...); err != nil {
		return entities.WorldPoint{}, err
	}
	lat, lon, alt := s.host.LocalToWorld(p.X, p.Y, p.Z)
	return entities.WorldPoint{Latitude: lat, Longitude: lon, Altitude: alt}, nil
}
