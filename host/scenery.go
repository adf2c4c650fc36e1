package host

import (
	"math"
	"strings"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = 111_320.0

// TerrainFunc returns the terrain height in local meters under x/z.
// ok false means the probe missed.
type TerrainFunc func(x, z float64) (height float64, wet bool, ok bool)

// FlatTerrain is dry terrain at a constant height.
func FlatTerrain(height float64) TerrainFunc {
	return func(_, _ float64) (float64, bool, bool) {
		return height, false, true
	}
}

// CreateProbe implements ports.Host.
func (s *Simulator) CreateProbe() ports.RawHandle {
	raw := s.alloc()
	s.probes[raw] = 0
	return raw
}

// DestroyProbe implements ports.Host.
func (s *Simulator) DestroyProbe(probe ports.RawHandle) {
	delete(s.probes, probe)
}

// ProbeTerrainXYZ implements ports.Host.
func (s *Simulator) ProbeTerrainXYZ(probe ports.RawHandle, x, _, z float32) (entities.ProbeResult, entities.ProbeStatus) {
	n, ok := s.probes[probe]
	if !ok {
		return entities.ProbeResult{}, entities.ProbeError
	}
	s.probes[probe] = n + 1

	height, wet, hit := s.terrain(float64(x), float64(z))
	if !hit {
		return entities.ProbeResult{}, entities.ProbeMissed
	}
	return entities.ProbeResult{
		Location: entities.LocalPoint{X: float64(x), Y: height, Z: float64(z)},
		Normal:   entities.LocalPoint{Y: 1},
		IsWet:    wet,
	}, entities.ProbeHitTerrain
}

// ProbeCalls returns how many terrain probes reached the host.
func (s *Simulator) ProbeCalls() int {
	total := 0
	for _, n := range s.probes {
		total += n
	}
	return total
}

// Probes returns the number of live probes.
func (s *Simulator) Probes() int { return len(s.probes) }

// WorldToLocal implements ports.Host with an equirectangular projection
// around the reference point. X points east, Y up and Z south.
func (s *Simulator) WorldToLocal(lat, lon, alt float64) (x, y, z float64) {
	ref := s.reference
	x = (lon - ref.Longitude) * metersPerDegree * math.Cos(ref.Latitude*math.Pi/180)
	y = alt - ref.Altitude
	z = -(lat - ref.Latitude) * metersPerDegree
	return x, y, z
}

// LocalToWorld implements ports.Host.
func (s *Simulator) LocalToWorld(x, y, z float64) (lat, lon, alt float64) {
	ref := s.reference
	lat = ref.Latitude - z/metersPerDegree
	lon = ref.Longitude + x/(metersPerDegree*math.Cos(ref.Latitude*math.Pi/180))
	alt = y + ref.Altitude
	return lat, lon, alt
}

// AddNavAid adds an entry to the navigation database. Entries are kept
// grouped by type the way the host orders them, so refs handed out earlier
// may shift.
func (s *Simulator) AddNavAid(e entities.NavEntry) {
	at := len(s.navaids)
	for i, cur := range s.navaids {
		if cur.Type > e.Type {
			at = i
			break
		}
	}
	s.navaids = append(s.navaids, entities.NavEntry{})
	copy(s.navaids[at+1:], s.navaids[at:])
	s.navaids[at] = e
	for i := range s.navaids {
		s.navaids[i].Ref = entities.NavRef(i)
	}
}

func (s *Simulator) navRef(i int) entities.NavRef {
	if i < 0 || i >= len(s.navaids) {
		return entities.NavNotFound
	}
	return entities.NavRef(i)
}

// GetFirstNavAid implements ports.Host.
func (s *Simulator) GetFirstNavAid() entities.NavRef { return s.navRef(0) }

// GetNextNavAid implements ports.Host.
func (s *Simulator) GetNextNavAid(ref entities.NavRef) entities.NavRef {
	if ref < 0 {
		return entities.NavNotFound
	}
	return s.navRef(int(ref) + 1)
}

// FindFirstNavAidOfType implements ports.Host.
func (s *Simulator) FindFirstNavAidOfType(t entities.NavType) entities.NavRef {
	for i, e := range s.navaids {
		if e.Type == t {
			return entities.NavRef(i)
		}
	}
	return entities.NavNotFound
}

// FindLastNavAidOfType implements ports.Host.
func (s *Simulator) FindLastNavAidOfType(t entities.NavType) entities.NavRef {
	for i := len(s.navaids) - 1; i >= 0; i-- {
		if s.navaids[i].Type == t {
			return entities.NavRef(i)
		}
	}
	return entities.NavNotFound
}

// FindNavAid implements ports.Host. Without a position the last match wins.
func (s *Simulator) FindNavAid(nameFragment, idFragment string, lat, lon *float32, types entities.NavType) entities.NavRef {
	best := entities.NavNotFound
	bestDist := math.Inf(1)
	for i, e := range s.navaids {
		if e.Type&types == 0 || !containsFold(e.Name, nameFragment) || !containsFold(e.ID, idFragment) {
			continue
		}
		if lat == nil || lon == nil {
			best = entities.NavRef(i)
			continue
		}
		if d := distance(float64(*lat), float64(*lon), float64(e.Latitude), float64(e.Longitude)); d < bestDist {
			best, bestDist = entities.NavRef(i), d
		}
	}
	return best
}

// GetNavAidInfo implements ports.Host. Unknown refs return a zero entry of
// unknown type.
func (s *Simulator) GetNavAidInfo(ref entities.NavRef) entities.NavEntry {
	if ref < 0 || int(ref) >= len(s.navaids) {
		return entities.NavEntry{Ref: entities.NavNotFound}
	}
	return s.navaids[ref]
}

func containsFold(s, fragment string) bool {
	return fragment == "" || strings.Contains(strings.ToUpper(s), strings.ToUpper(fragment))
}

// distance is the great-circle angle between two points, in radians.
func distance(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(a)))
}
