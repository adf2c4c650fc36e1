package ports

import "github.com/skyframe-dev/xplm-sdk/domain/entities"

// CallbackSink receives every host-to-plugin callback other than the
// lifecycle entry points. Implementations must never panic: faults are
// converted into the documented inert return value.
type CallbackSink interface {
	// FlightLoop returns the next interval (0 = stop, >0 seconds, <0 frames).
	FlightLoop(refcon Refcon, sinceLastCall, sinceLastLoop float32, counter int) entities.Interval

	// Command returns 1 to let processing continue and 0 to stop it.
	Command(refcon Refcon, cmd RawHandle, phase entities.CommandPhase) int

	// MenuSelected reports a pick of an item appended with AppendMenuItem.
	MenuSelected(menuRefcon, itemRefcon Refcon)

	// Draw returns 1 to let the host draw normally; before-callbacks may
	// return 0 to suppress host drawing.
	Draw(refcon Refcon, phase entities.DrawPhase, before bool) int

	// Camera returns 1 to keep control, 0 to give it up. pos is nil when
	// the host only asks whether control is still wanted.
	Camera(refcon Refcon, pos *entities.CameraPosition, losingControl bool) int

	// ReadData and WriteData serve plugin-owned datarefs.
	ReadData(refcon Refcon, kind entities.ValueKind) entities.Value
	WriteData(refcon Refcon, v entities.Value)
}

// Entrypoints are the symbols the host resolves by name.
type Entrypoints interface {
	Start() (entities.PluginInfo, bool)
	Enable() bool
	Disable()
	Stop()
	ReceiveMessage(from int, msg entities.MessageID, param uintptr)
}
