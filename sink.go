package sdk

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// FlightLoop implements ports.CallbackSink.
func (s *Session) FlightLoop(refcon ports.Refcon, sinceLastCall, sinceLastLoop float32, counter int) entities.Interval {
	return s.table.FlightLoop(refcon, sinceLastCall, sinceLastLoop, counter)
}

// Command implements ports.CallbackSink.
func (s *Session) Command(refcon ports.Refcon, cmd ports.RawHandle, phase entities.CommandPhase) int {
	return s.table.Command(refcon, cmd, phase)
}

// MenuSelected implements ports.CallbackSink.
func (s *Session) MenuSelected(menuRefcon, itemRefcon ports.Refcon) {
	s.table.MenuSelected(menuRefcon, itemRefcon)
}

// Draw implements ports.CallbackSink.
func (s *Session) Draw(refcon ports.Refcon, phase entities.DrawPhase, before bool) int {
	return s.table.Draw(refcon, phase, before)
}

// Camera implements ports.CallbackSink.
func (s *Session) Camera(refcon ports.Refcon, pos *entities.CameraPosition, losingControl bool) int {
	return s.table.Camera(refcon, pos, losingControl)
}

// ReadData implements ports.CallbackSink.
func (s *Session) ReadData(refcon ports.Refcon, kind entities.ValueKind) entities.Value {
	return s.table.ReadData(refcon, kind)
}

// WriteData implements ports.CallbackSink.
func (s *Session) WriteData(refcon ports.Refcon, v entities.Value) {
	s.table.WriteData(refcon, v)
}
