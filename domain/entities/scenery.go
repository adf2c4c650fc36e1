package entities

import "strings"

// LocalPoint is a position in the host's local OpenGL coordinates (meters).
type LocalPoint struct {
	X float64
	Y float64
	Z float64
}

// WorldPoint is a geodetic position. Altitude is in meters MSL.
type WorldPoint struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// ProbeStatus is the host's terrain probe outcome.
type ProbeStatus int

const (
	ProbeHitTerrain ProbeStatus = 0
	ProbeError      ProbeStatus = 1
	ProbeMissed     ProbeStatus = 2
)

// ProbeResult is a point-in-time terrain probe answer.
type ProbeResult struct {
	// Location is the terrain point directly below or above the probe.
	Location LocalPoint
	// Normal is the terrain surface normal.
	Normal LocalPoint
	// Velocity of the terrain, non-zero on moving surfaces such as carriers.
	Velocity LocalPoint
	// IsWet is true when the probe hit water.
	IsWet bool
}

// NavRef is the host's index into its navigation database.
type NavRef int32

// NavNotFound is the host's "no such entry" sentinel.
const NavNotFound NavRef = -1

// NavType is a bitmask of navigation entry types.
type NavType int

const (
	NavUnknown      NavType = 0
	NavAirport      NavType = 1
	NavNDB          NavType = 2
	NavVOR          NavType = 4
	NavILS          NavType = 8
	NavLocalizer    NavType = 16
	NavGlideSlope   NavType = 32
	NavOuterMarker  NavType = 64
	NavMiddleMarker NavType = 128
	NavInnerMarker  NavType = 256
	NavFix          NavType = 512
	NavDME          NavType = 1024
	NavLatLon       NavType = 2048
	NavTACAN        NavType = 4096
)

// NavAny matches every entry type.
const NavAny NavType = NavAirport | NavNDB | NavVOR | NavILS | NavLocalizer | NavGlideSlope |
	NavOuterMarker | NavMiddleMarker | NavInnerMarker | NavFix | NavDME | NavLatLon | NavTACAN

var navTypeOrder = []NavType{
	NavAirport, NavNDB, NavVOR, NavILS, NavLocalizer, NavGlideSlope, NavOuterMarker,
	NavMiddleMarker, NavInnerMarker, NavFix, NavDME, NavLatLon, NavTACAN,
}

// Types splits the mask into single-type values in host order.
func (t NavType) Types() []NavType {
	var out []NavType
	for _, single := range navTypeOrder {
		if t&single != 0 {
			out = append(out, single)
		}
	}
	return out
}

// NavEntry is one navigation database record.
type NavEntry struct {
	Ref       NavRef
	Type      NavType
	ID        string
	Name      string
	Latitude  float32
	Longitude float32
	// Height is in meters.
	Height float32
	// Frequency is in the host's units (10 kHz for VOR/ILS, kHz for NDB).
	Frequency int
	Heading   float32
	Region    string
}

// NavFilter selects entries for a navigation query.
// Zero fields match everything.
type NavFilter struct {
	Types        NavType
	IDFragment   string
	NameFragment string
	Limit        int
}

// Matches reports whether e satisfies the filter's id and name fragments.
// Type selection happens when the snapshot is taken.
func (f NavFilter) Matches(e NavEntry) bool {
	if f.IDFragment != "" && !strings.Contains(strings.ToUpper(e.ID), strings.ToUpper(f.IDFragment)) {
		return false
	}
	if f.NameFragment != "" && !strings.Contains(strings.ToUpper(e.Name), strings.ToUpper(f.NameFragment)) {
		return false
	}
	return true
}
