package host

import (
	"io"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

// Option defines a functional option for configuring the Simulator.
type Option func(*Simulator)

// WithVersions sets what GetVersions reports. sdk uses the host encoding,
// e.g. 303 for XPLM 3.0.3.
func WithVersions(app, sdk int) Option {
	return func(s *Simulator) {
		s.appVersion = app
		s.sdkVersion = sdk
	}
}

// WithTerrain sets the terrain model used by probes.
func WithTerrain(fn TerrainFunc) Option {
	return func(s *Simulator) {
		s.terrain = fn
	}
}

// WithDebugOutput mirrors DebugString output to w.
func WithDebugOutput(w io.Writer) Option {
	return func(s *Simulator) {
		s.debugOut = w
	}
}

// WithoutDefaults starts with an empty dataref catalog, command list and
// navigation database.
func WithoutDefaults() Option {
	return func(s *Simulator) {
		s.noDefaults = true
	}
}

// WithReference sets the geodetic origin of the local coordinate system.
func WithReference(p entities.WorldPoint) Option {
	return func(s *Simulator) {
		s.reference = p
	}
}
