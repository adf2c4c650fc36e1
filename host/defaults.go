package host

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

var (
	kindInt    = entities.KindsOf(entities.KindInt)
	kindFloat  = entities.KindsOf(entities.KindFloat)
	kindDouble = entities.KindsOf(entities.KindDouble)
)

// loadDefaults installs a small catalog modelled on a default aircraft
// parked at KSEA.
func (s *Simulator) loadDefaults() {
	s.DefineDataRef("sim/time/zulu_time_sec", kindFloat, true, entities.FloatValue(43_200))
	s.DefineDataRef("sim/time/total_running_time_sec", kindFloat, false, entities.FloatValue(0))
	s.DefineDataRef("sim/time/paused", kindInt, false, entities.IntValue(0))
	s.DefineDataRef("sim/flightmodel/position/latitude", kindDouble, false, entities.DoubleValue(s.reference.Latitude))
	s.DefineDataRef("sim/flightmodel/position/longitude", kindDouble, false, entities.DoubleValue(s.reference.Longitude))
	s.DefineDataRef("sim/flightmodel/position/elevation", kindDouble, false, entities.DoubleValue(s.reference.Altitude))
	s.DefineDataRef("sim/flightmodel/position/local_x", kindDouble, false, entities.DoubleValue(0))
	s.DefineDataRef("sim/flightmodel/position/local_y", kindDouble, false, entities.DoubleValue(0))
	s.DefineDataRef("sim/flightmodel/position/local_z", kindDouble, false, entities.DoubleValue(0))
	s.DefineDataRef("sim/flightmodel/position/psi",
		entities.KindsOf(entities.KindFloat, entities.KindDouble), false, entities.FloatValue(164))
	s.DefineDataRef("sim/flightmodel/engine/ENGN_thro",
		entities.KindsOf(entities.KindFloatArray), true, entities.FloatArrayValue(make([]float32, 8)))
	s.DefineDataRef("sim/aircraft/engine/acf_num_engines", kindInt, false, entities.IntValue(1))
	s.DefineDataRef("sim/cockpit/electrical/avionics_on", kindInt, true, entities.IntValue(0))
	s.DefineDataRef("sim/cockpit2/engine/actuators/ignition_key",
		entities.KindsOf(entities.KindIntArray), true, entities.IntArrayValue(make([]int32, 8)))
	s.DefineDataRef("sim/aircraft/view/acf_tailnum",
		entities.KindsOf(entities.KindBytes), false, entities.BytesValue([]byte("N172SP\x00\x00")))

	s.DefineCommand("sim/operation/pause_toggle", "Toggle pause.", func(phase entities.CommandPhase) {
		if phase != entities.CommandBegin {
			return
		}
		if d := s.byName("sim/time/paused"); d != nil {
			d.num = 1 - d.num
		}
	})
	s.DefineCommand("sim/view/default_view", "Default cockpit view.", func(phase entities.CommandPhase) {
		if phase == entities.CommandBegin {
			s.ChangeView()
		}
	})
	s.DefineCommand("sim/systems/avionics_toggle", "Toggle avionics power.", func(phase entities.CommandPhase) {
		if phase != entities.CommandBegin {
			return
		}
		if d := s.byName("sim/cockpit/electrical/avionics_on"); d != nil {
			d.num = 1 - d.num
		}
	})
	s.DefineCommand("sim/engines/throttle_up", "Throttle up a bit.", func(phase entities.CommandPhase) {
		if d := s.byName("sim/flightmodel/engine/ENGN_thro"); d != nil {
			for i := range d.floats {
				d.floats[i] = min(1, d.floats[i]+0.1)
			}
		}
	})

	for _, e := range []entities.NavEntry{
		{Type: entities.NavAirport, ID: "KSEA", Name: "Seattle Tacoma Intl", Latitude: 47.4490, Longitude: -122.3093, Height: 131},
		{Type: entities.NavAirport, ID: "KBFI", Name: "Boeing Field King Co Intl", Latitude: 47.5300, Longitude: -122.3019, Height: 5},
		{Type: entities.NavAirport, ID: "KPAE", Name: "Snohomish Co Paine Fld", Latitude: 47.9063, Longitude: -122.2816, Height: 185},
		{Type: entities.NavNDB, ID: "CF", Name: "Carney", Latitude: 47.9120, Longitude: -122.2830, Frequency: 362, Region: "K1"},
		{Type: entities.NavVOR, ID: "SEA", Name: "Seattle", Latitude: 47.4354, Longitude: -122.3097, Height: 108, Frequency: 11680, Region: "K1"},
		{Type: entities.NavVOR, ID: "PAE", Name: "Paine", Latitude: 47.9199, Longitude: -122.2777, Height: 185, Frequency: 11040, Region: "K1"},
		{Type: entities.NavFix, ID: "ALKIA", Name: "ALKIA", Latitude: 47.5625, Longitude: -122.4069, Region: "K1"},
	} {
		s.AddNavAid(e)
	}
}
