package ports

import "github.com/skyframe-dev/xplm-sdk/domain/entities"

// RawHandle is an opaque host token. Zero is the host's null sentinel.
type RawHandle uintptr

// Refcon is the plugin-side token handed to the host with each callback
// registration and handed back on every invocation.
type Refcon uint64

// DataAccess is the host's typed-variable surface.
type DataAccess interface {
	FindDataRef(name string) RawHandle
	CanWriteDataRef(ref RawHandle) bool
	IsDataRefGood(ref RawHandle) bool
	GetDataRefTypes(ref RawHandle) entities.ValueKinds

	GetDatai(ref RawHandle) int32
	SetDatai(ref RawHandle, v int32)
	GetDataf(ref RawHandle) float32
	SetDataf(ref RawHandle, v float32)
	GetDatad(ref RawHandle) float64
	SetDatad(ref RawHandle, v float64)

	// The array getters return the full array length when out is nil and the
	// number of elements copied otherwise.
	GetDatavi(ref RawHandle, out []int32, offset int) int
	SetDatavi(ref RawHandle, in []int32, offset int)
	GetDatavf(ref RawHandle, out []float32, offset int) int
	SetDatavf(ref RawHandle, in []float32, offset int)
	GetDatab(ref RawHandle, out []byte, offset int) int
	SetDatab(ref RawHandle, in []byte, offset int)

	// RegisterDataAccessor publishes a plugin-owned scalar dataref. Reads and
	// writes arrive on CallbackSink.ReadData / WriteData with refcon.
	RegisterDataAccessor(name string, kinds entities.ValueKinds, writable bool, refcon Refcon) RawHandle
	UnregisterDataAccessor(ref RawHandle)
}

// Processing is the host's flight-loop surface.
type Processing interface {
	CreateFlightLoop(phase entities.LoopPhase, refcon Refcon) RawHandle
	ScheduleFlightLoop(id RawHandle, interval entities.Interval, relativeToNow bool)
	DestroyFlightLoop(id RawHandle)
	GetElapsedTime() float32
	GetCycleNumber() int
}

// Menus is the host's menu surface.
type Menus interface {
	FindPluginsMenu() RawHandle
	// CreateMenu attaches a new menu to item parentItem of parent.
	CreateMenu(name string, parent RawHandle, parentItem int, refcon Refcon) RawHandle
	DestroyMenu(menu RawHandle)
	AppendMenuItem(menu RawHandle, name string, itemRefcon Refcon) int
	AppendMenuItemWithCommand(menu RawHandle, name string, cmd RawHandle) int
	AppendMenuSeparator(menu RawHandle)
	SetMenuItemName(menu RawHandle, index int, name string)
	CheckMenuItem(menu RawHandle, index int, check entities.MenuCheck)
	EnableMenuItem(menu RawHandle, index int, enabled bool)
	// RemoveMenuItem deletes an item; later items shift down by one.
	RemoveMenuItem(menu RawHandle, index int)
}

// Commands is the host's command surface.
type Commands interface {
	FindCommand(name string) RawHandle
	CreateCommand(name, description string) RawHandle
	CommandBegin(cmd RawHandle)
	CommandEnd(cmd RawHandle)
	CommandOnce(cmd RawHandle)
	RegisterCommandHandler(cmd RawHandle, before bool, refcon Refcon)
	UnregisterCommandHandler(cmd RawHandle, before bool, refcon Refcon)
}

// Instances is the host's object and instancing surface.
type Instances interface {
	LoadObject(path string) RawHandle
	UnloadObject(obj RawHandle)
	CreateInstance(obj RawHandle, datarefs []string) RawHandle
	DestroyInstance(inst RawHandle)
	InstanceSetPosition(inst RawHandle, pos entities.DrawInfo, data []float32)
}

// Display is the host's legacy draw-callback surface.
type Display interface {
	RegisterDrawCallback(phase entities.DrawPhase, before bool, refcon Refcon) bool
	UnregisterDrawCallback(phase entities.DrawPhase, before bool, refcon Refcon) bool
}

// Camera is the host's camera override surface.
type Camera interface {
	ControlCamera(duration entities.CameraDuration, refcon Refcon)
	DontControlCamera()
	IsCameraBeingControlled() (bool, entities.CameraDuration)
	ReadCameraPosition() entities.CameraPosition
}

// Scenery is the host's terrain probe and coordinate surface.
type Scenery interface {
	CreateProbe() RawHandle
	DestroyProbe(probe RawHandle)
	ProbeTerrainXYZ(probe RawHandle, x, y, z float32) (entities.ProbeResult, entities.ProbeStatus)
	WorldToLocal(lat, lon, alt float64) (x, y, z float64)
	LocalToWorld(x, y, z float64) (lat, lon, alt float64)
}

// Navigation is the host's navigation database surface.
type Navigation interface {
	GetFirstNavAid() entities.NavRef
	GetNextNavAid(ref entities.NavRef) entities.NavRef
	FindFirstNavAidOfType(t entities.NavType) entities.NavRef
	FindLastNavAidOfType(t entities.NavType) entities.NavRef
	// FindNavAid returns the entry nearest to lat/lon matching the fragments
	// and types; nil lat/lon means "anywhere".
	FindNavAid(nameFragment, idFragment string, lat, lon *float32, types entities.NavType) entities.NavRef
	GetNavAidInfo(ref entities.NavRef) entities.NavEntry
}

// Utilities is the host's miscellaneous surface.
type Utilities interface {
	DebugString(s string)
	// GetVersions returns the host application version, the XPLM SDK
	// version (e.g. 303 for 3.0.3) and the host id.
	GetVersions() (appVersion, sdkVersion, hostID int)
	GetMyID() int
	SendMessageToPlugin(plugin int, message entities.MessageID, param uintptr)
}

// Host is the complete raw API surface.
type Host interface {
	DataAccess
	Processing
	Menus
	Commands
	Instances
	Display
	Camera
	Scenery
	Navigation
	Utilities

	// Bind installs the sink that receives every callback the plugin
	// registers. It is called once, before the start hook runs.
	Bind(sink CallbackSink)
}
