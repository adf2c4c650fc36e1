//go:build xplm

package native

/*
#cgo CFLAGS: -DXPLM200=1 -DXPLM210=1 -DXPLM300=1 -DXPLM301=1 -DXPLM303=1
#cgo linux CFLAGS: -DLIN=1
#cgo darwin CFLAGS: -DAPL=1 -DIBM=0 -DLIN=0
#cgo windows CFLAGS: -DIBM=1 -DAPL=0 -DLIN=0
#cgo darwin LDFLAGS: -framework XPLM
#cgo windows LDFLAGS: -lXPLM_64

#include "shim.h"
*/
import "C"

import (
	"unsafe"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Host implements ports.Host on the XPLM C API. All methods must be called
// from a host callback, which is where the session calls them.
type Host struct {
	sink ports.CallbackSink
}

var _ ports.Host = (*Host)(nil)

// active is the host whose sink receives trampoline calls. The host calls
// plugins on its main thread only.
var active *Host

// New creates a Host.
func New() *Host {
	return &Host{}
}

// Bind implements ports.Host.
func (h *Host) Bind(sink ports.CallbackSink) {
	h.sink = sink
	active = h
}

func ptr(h ports.RawHandle) unsafe.Pointer { return unsafe.Pointer(uintptr(h)) }

func raw(p unsafe.Pointer) ports.RawHandle { return ports.RawHandle(uintptr(p)) }

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// FindDataRef implements ports.Host.
func (h *Host) FindDataRef(name string) ports.RawHandle {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return raw(unsafe.Pointer(C.XPLMFindDataRef(cname)))
}

// CanWriteDataRef implements ports.Host.
func (h *Host) CanWriteDataRef(ref ports.RawHandle) bool {
	return C.XPLMCanWriteDataRef(C.XPLMDataRef(ptr(ref))) != 0
}

// IsDataRefGood implements ports.Host.
func (h *Host) IsDataRefGood(ref ports.RawHandle) bool {
	return C.XPLMIsDataRefGood(C.XPLMDataRef(ptr(ref))) != 0
}

// GetDataRefTypes implements ports.Host.
func (h *Host) GetDataRefTypes(ref ports.RawHandle) entities.ValueKinds {
	return entities.ValueKinds(C.XPLMGetDataRefTypes(C.XPLMDataRef(ptr(ref))))
}

// GetDatai implements ports.Host.
func (h *Host) GetDatai(ref ports.RawHandle) int32 {
	return int32(C.XPLMGetDatai(C.XPLMDataRef(ptr(ref))))
}

// SetDatai implements ports.Host.
func (h *Host) SetDatai(ref ports.RawHandle, v int32) {
	C.XPLMSetDatai(C.XPLMDataRef(ptr(ref)), C.int(v))
}

// GetDataf implements ports.Host.
func (h *Host) GetDataf(ref ports.RawHandle) float32 {
	return float32(C.XPLMGetDataf(C.XPLMDataRef(ptr(ref))))
}

// SetDataf implements ports.Host.
func (h *Host) SetDataf(ref ports.RawHandle, v float32) {
	C.XPLMSetDataf(C.XPLMDataRef(ptr(ref)), C.float(v))
}

// GetDatad implements ports.Host.
func (h *Host) GetDatad(ref ports.RawHandle) float64 {
	return float64(C.XPLMGetDatad(C.XPLMDataRef(ptr(ref))))
}

// SetDatad implements ports.Host.
func (h *Host) SetDatad(ref ports.RawHandle, v float64) {
	C.XPLMSetDatad(C.XPLMDataRef(ptr(ref)), C.double(v))
}

// GetDatavi implements ports.Host.
func (h *Host) GetDatavi(ref ports.RawHandle, out []int32, offset int) int {
	if out == nil {
		return int(C.XPLMGetDatavi(C.XPLMDataRef(ptr(ref)), nil, 0, 0))
	}
	if len(out) == 0 {
		return 0
	}
	return int(C.XPLMGetDatavi(C.XPLMDataRef(ptr(ref)), (*C.int)(unsafe.Pointer(&out[0])), C.int(offset), C.int(len(out))))
}

// SetDatavi implements ports.Host.
func (h *Host) SetDatavi(ref ports.RawHandle, in []int32, offset int) {
	if len(in) == 0 {
		return
	}
	C.XPLMSetDatavi(C.XPLMDataRef(ptr(ref)), (*C.int)(unsafe.Pointer(&in[0])), C.int(offset), C.int(len(in)))
}

// GetDatavf implements ports.Host.
func (h *Host) GetDatavf(ref ports.RawHandle, out []float32, offset int) int {
	if out == nil {
		return int(C.XPLMGetDatavf(C.XPLMDataRef(ptr(ref)), nil, 0, 0))
	}
	if len(out) == 0 {
		return 0
	}
	return int(C.XPLMGetDatavf(C.XPLMDataRef(ptr(ref)), (*C.float)(unsafe.Pointer(&out[0])), C.int(offset), C.int(len(out))))
}

// SetDatavf implements ports.Host.
func (h *Host) SetDatavf(ref ports.RawHandle, in []float32, offset int) {
	if len(in) == 0 {
		return
	}
	C.XPLMSetDatavf(C.XPLMDataRef(ptr(ref)), (*C.float)(unsafe.Pointer(&in[0])), C.int(offset), C.int(len(in)))
}

// GetDatab implements ports.Host.
func (h *Host) GetDatab(ref ports.RawHandle, out []byte, offset int) int {
	if out == nil {
		return int(C.XPLMGetDatab(C.XPLMDataRef(ptr(ref)), nil, 0, 0))
	}
	if len(out) == 0 {
		return 0
	}
	return int(C.XPLMGetDatab(C.XPLMDataRef(ptr(ref)), unsafe.Pointer(&out[0]), C.int(offset), C.int(len(out))))
}

// SetDatab implements ports.Host.
func (h *Host) SetDatab(ref ports.RawHandle, in []byte, offset int) {
	if len(in) == 0 {
		return
	}
	C.XPLMSetDatab(C.XPLMDataRef(ptr(ref)), unsafe.Pointer(&in[0]), C.int(offset), C.int(len(in)))
}

// RegisterDataAccessor implements ports.Host.
func (h *Host) RegisterDataAccessor(name string, kinds entities.ValueKinds, writable bool, refcon ports.Refcon) ports.RawHandle {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return raw(unsafe.Pointer(C.xsdk_register_accessor(cname, C.int(kinds), cbool(writable), C.uintptr_t(refcon))))
}

// UnregisterDataAccessor implements ports.Host.
func (h *Host) UnregisterDataAccessor(ref ports.RawHandle) {
	C.XPLMUnregisterDataAccessor(C.XPLMDataRef(ptr(ref)))
}

// CreateFlightLoop implements ports.Host.
func (h *Host) CreateFlightLoop(phase entities.LoopPhase, refcon ports.Refcon) ports.RawHandle {
	return raw(unsafe.Pointer(C.xsdk_create_flight_loop(C.int(phase), C.uintptr_t(refcon))))
}

// ScheduleFlightLoop implements ports.Host.
func (h *Host) ScheduleFlightLoop(id ports.RawHandle, interval entities.Interval, relativeToNow bool) {
	C.XPLMScheduleFlightLoop(C.XPLMFlightLoopID(ptr(id)), C.float(interval), cbool(relativeToNow))
}

// DestroyFlightLoop implements ports.Host.
func (h *Host) DestroyFlightLoop(id ports.RawHandle) {
	C.XPLMDestroyFlightLoop(C.XPLMFlightLoopID(ptr(id)))
}

// GetElapsedTime implements ports.Host.
func (h *Host) GetElapsedTime() float32 { return float32(C.XPLMGetElapsedTime()) }

// GetCycleNumber implements ports.Host.
func (h *Host) GetCycleNumber() int { return int(C.XPLMGetCycleNumber()) }

// FindPluginsMenu implements ports.Host.
func (h *Host) FindPluginsMenu() ports.RawHandle {
	return raw(unsafe.Pointer(C.XPLMFindPluginsMenu()))
}

// CreateMenu implements ports.Host.
func (h *Host) CreateMenu(name string, parent ports.RawHandle, parentItem int, refcon ports.Refcon) ports.RawHandle {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return raw(unsafe.Pointer(C.xsdk_create_menu(cname, C.XPLMMenuID(ptr(parent)), C.int(parentItem), C.uintptr_t(refcon))))
}

// DestroyMenu implements ports.Host.
func (h *Host) DestroyMenu(menu ports.RawHandle) {
	C.XPLMDestroyMenu(C.XPLMMenuID(ptr(menu)))
}

// AppendMenuItem implements ports.Host.
func (h *Host) AppendMenuItem(menu ports.RawHandle, name string, itemRefcon ports.Refcon) int {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return int(C.xsdk_append_menu_item(C.XPLMMenuID(ptr(menu)), cname, C.uintptr_t(itemRefcon)))
}

// AppendMenuItemWithCommand implements ports.Host.
func (h *Host) AppendMenuItemWithCommand(menu ports.RawHandle, name string, cmd ports.RawHandle) int {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return int(C.XPLMAppendMenuItemWithCommand(C.XPLMMenuID(ptr(menu)), cname, C.XPLMCommandRef(ptr(cmd))))
}

// AppendMenuSeparator implements ports.Host.
func (h *Host) AppendMenuSeparator(menu ports.RawHandle) {
	C.XPLMAppendMenuSeparator(C.XPLMMenuID(ptr(menu)))
}

// SetMenuItemName implements ports.Host.
func (h *Host) SetMenuItemName(menu ports.RawHandle, index int, name string) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.XPLMSetMenuItemName(C.XPLMMenuID(ptr(menu)), C.int(index), cname, 0)
}

// CheckMenuItem implements ports.Host.
func (h *Host) CheckMenuItem(menu ports.RawHandle, index int, check entities.MenuCheck) {
	C.XPLMCheckMenuItem(C.XPLMMenuID(ptr(menu)), C.int(index), C.XPLMMenuCheck(check))
}

// EnableMenuItem implements ports.Host.
func (h *Host) EnableMenuItem(menu ports.RawHandle, index int, enabled bool) {
	C.XPLMEnableMenuItem(C.XPLMMenuID(ptr(menu)), C.int(index), cbool(enabled))
}

// RemoveMenuItem implements ports.Host.
func (h *Host) RemoveMenuItem(menu ports.RawHandle, index int) {
	C.XPLMRemoveMenuItem(C.XPLMMenuID(ptr(menu)), C.int(index))
}

// FindCommand implements ports.Host.
func (h *Host) FindCommand(name string) ports.RawHandle {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return raw(unsafe.Pointer(C.XPLMFindCommand(cname)))
}

// CreateCommand implements ports.Host.
func (h *Host) CreateCommand(name, description string) ports.RawHandle {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cdesc := C.CString(description)
	defer C.free(unsafe.Pointer(cdesc))
	return raw(unsafe.Pointer(C.XPLMCreateCommand(cname, cdesc)))
}

// CommandBegin implements ports.Host.
func (h *Host) CommandBegin(cmd ports.RawHandle) { C.XPLMCommandBegin(C.XPLMCommandRef(ptr(cmd))) }

// CommandEnd implements ports.Host.
func (h *Host) CommandEnd(cmd ports.RawHandle) { C.XPLMCommandEnd(C.XPLMCommandRef(ptr(cmd))) }

// CommandOnce implements ports.Host.
func (h *Host) CommandOnce(cmd ports.RawHandle) { C.XPLMCommandOnce(C.XPLMCommandRef(ptr(cmd))) }

// RegisterCommandHandler implements ports.Host.
func (h *Host) RegisterCommandHandler(cmd ports.RawHandle, before bool, refcon ports.Refcon) {
	C.xsdk_register_command_handler(C.XPLMCommandRef(ptr(cmd)), cbool(before), C.uintptr_t(refcon))
}

// UnregisterCommandHandler implements ports.Host.
func (h *Host) UnregisterCommandHandler(cmd ports.RawHandle, before bool, refcon ports.Refcon) {
	C.xsdk_unregister_command_handler(C.XPLMCommandRef(ptr(cmd)), cbool(before), C.uintptr_t(refcon))
}

// LoadObject implements ports.Host.
func (h *Host) LoadObject(path string) ports.RawHandle {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	return raw(unsafe.Pointer(C.XPLMLoadObject(cpath)))
}

// UnloadObject implements ports.Host.
func (h *Host) UnloadObject(obj ports.RawHandle) {
	C.XPLMUnloadObject(C.XPLMObjectRef(ptr(obj)))
}

// CreateInstance implements ports.Host.
func (h *Host) CreateInstance(obj ports.RawHandle, datarefs []string) ports.RawHandle {
	// The host wants a NULL-terminated array of C strings.
	n := len(datarefs)
	mem := C.malloc(C.size_t(n+1) * C.size_t(unsafe.Sizeof(uintptr(0))))
	defer C.free(mem)
	names := unsafe.Slice((**C.char)(mem), n+1)
	for i, name := range datarefs {
		names[i] = C.CString(name)
	}
	names[n] = nil
	defer func() {
		for _, p := range names[:n] {
			C.free(unsafe.Pointer(p))
		}
	}()
	return raw(unsafe.Pointer(C.XPLMCreateInstance(C.XPLMObjectRef(ptr(obj)), (**C.char)(mem))))
}

// DestroyInstance implements ports.Host.
func (h *Host) DestroyInstance(inst ports.RawHandle) {
	C.XPLMDestroyInstance(C.XPLMInstanceRef(ptr(inst)))
}

// InstanceSetPosition implements ports.Host.
func (h *Host) InstanceSetPosition(inst ports.RawHandle, pos entities.DrawInfo, data []float32) {
	info := C.XPLMDrawInfo_t{
		x:       C.float(pos.X),
		y:       C.float(pos.Y),
		z:       C.float(pos.Z),
		pitch:   C.float(pos.Pitch),
		heading: C.float(pos.Heading),
		roll:    C.float(pos.Roll),
	}
	info.structSize = C.int(unsafe.Sizeof(info))
	var values *C.float
	if len(data) > 0 {
		values = (*C.float)(unsafe.Pointer(&data[0]))
	}
	C.XPLMInstanceSetPosition(C.XPLMInstanceRef(ptr(inst)), &info, values)
}

// RegisterDrawCallback implements ports.Host.
func (h *Host) RegisterDrawCallback(phase entities.DrawPhase, before bool, refcon ports.Refcon) bool {
	return C.xsdk_register_draw(C.int(phase), cbool(before), C.uintptr_t(refcon)) != 0
}

// UnregisterDrawCallback implements ports.Host.
func (h *Host) UnregisterDrawCallback(phase entities.DrawPhase, before bool, refcon ports.Refcon) bool {
	return C.xsdk_unregister_draw(C.int(phase), cbool(before), C.uintptr_t(refcon)) != 0
}

// ControlCamera implements ports.Host.
func (h *Host) ControlCamera(duration entities.CameraDuration, refcon ports.Refcon) {
	C.xsdk_control_camera(C.int(duration), C.uintptr_t(refcon))
}

// DontControlCamera implements ports.Host.
func (h *Host) DontControlCamera() { C.XPLMDontControlCamera() }

// IsCameraBeingControlled implements ports.Host.
func (h *Host) IsCameraBeingControlled() (bool, entities.CameraDuration) {
	var duration C.XPLMCameraControlDuration
	controlled := C.XPLMIsCameraBeingControlled(&duration) != 0
	return controlled, entities.CameraDuration(duration)
}

// ReadCameraPosition implements ports.Host.
func (h *Host) ReadCameraPosition() entities.CameraPosition {
	var pos C.XPLMCameraPosition_t
	C.XPLMReadCameraPosition(&pos)
	return fromCamera(&pos)
}

func fromCamera(pos *C.XPLMCameraPosition_t) entities.CameraPosition {
	return entities.CameraPosition{
		X:       float32(pos.x),
		Y:       float32(pos.y),
		Z:       float32(pos.z),
		Pitch:   float32(pos.pitch),
		Heading: float32(pos.heading),
		Roll:    float32(pos.roll),
		Zoom:    float32(pos.zoom),
	}
}

func toCamera(p entities.CameraPosition, pos *C.XPLMCameraPosition_t) {
	pos.x = C.float(p.X)
	pos.y = C.float(p.Y)
	pos.z = C.float(p.Z)
	pos.pitch = C.float(p.Pitch)
	pos.heading = C.float(p.Heading)
	pos.roll = C.float(p.Roll)
	pos.zoom = C.float(p.Zoom)
}

// CreateProbe implements ports.Host.
func (h *Host) CreateProbe() ports.RawHandle {
	return raw(unsafe.Pointer(C.XPLMCreateProbe(C.XPLMProbeType(C.xplm_ProbeY))))
}

// DestroyProbe implements ports.Host.
func (h *Host) DestroyProbe(probe ports.RawHandle) {
	C.XPLMDestroyProbe(C.XPLMProbeRef(ptr(probe)))
}

// ProbeTerrainXYZ implements ports.Host.
func (h *Host) ProbeTerrainXYZ(probe ports.RawHandle, x, y, z float32) (entities.ProbeResult, entities.ProbeStatus) {
	var info C.XPLMProbeInfo_t
	info.structSize = C.int(unsafe.Sizeof(info))
	status := C.XPLMProbeTerrainXYZ(C.XPLMProbeRef(ptr(probe)), C.float(x), C.float(y), C.float(z), &info)
	return entities.ProbeResult{
		Location: entities.LocalPoint{X: float64(info.locationX), Y: float64(info.locationY), Z: float64(info.locationZ)},
		Normal:   entities.LocalPoint{X: float64(info.normalX), Y: float64(info.normalY), Z: float64(info.normalZ)},
		Velocity: entities.LocalPoint{X: float64(info.velocityX), Y: float64(info.velocityY), Z: float64(info.velocityZ)},
		IsWet:    info.is_wet != 0,
	}, entities.ProbeStatus(status)
}

// WorldToLocal implements ports.Host.
func (h *Host) WorldToLocal(lat, lon, alt float64) (x, y, z float64) {
	var cx, cy, cz C.double
	C.XPLMWorldToLocal(C.double(lat), C.double(lon), C.double(alt), &cx, &cy, &cz)
	return float64(cx), float64(cy), float64(cz)
}

// LocalToWorld implements ports.Host.
func (h *Host) LocalToWorld(x, y, z float64) (lat, lon, alt float64) {
	var clat, clon, calt C.double
	C.XPLMLocalToWorld(C.double(x), C.double(y), C.double(z), &clat, &clon, &calt)
	return float64(clat), float64(clon), float64(calt)
}

// GetFirstNavAid implements ports.Host.
func (h *Host) GetFirstNavAid() entities.NavRef { return entities.NavRef(C.XPLMGetFirstNavAid()) }

// GetNextNavAid implements ports.Host.
func (h *Host) GetNextNavAid(ref entities.NavRef) entities.NavRef {
	return entities.NavRef(C.XPLMGetNextNavAid(C.XPLMNavRef(ref)))
}

// FindFirstNavAidOfType implements ports.Host.
func (h *Host) FindFirstNavAidOfType(t entities.NavType) entities.NavRef {
	return entities.NavRef(C.XPLMFindFirstNavAidOfType(C.XPLMNavType(t)))
}

// FindLastNavAidOfType implements ports.Host.
func (h *Host) FindLastNavAidOfType(t entities.NavType) entities.NavRef {
	return entities.NavRef(C.XPLMFindLastNavAidOfType(C.XPLMNavType(t)))
}

// FindNavAid implements ports.Host.
func (h *Host) FindNavAid(nameFragment, idFragment string, lat, lon *float32, types entities.NavType) entities.NavRef {
	var cname, cid *C.char
	if nameFragment != "" {
		cname = C.CString(nameFragment)
		defer C.free(unsafe.Pointer(cname))
	}
	if idFragment != "" {
		cid = C.CString(idFragment)
		defer C.free(unsafe.Pointer(cid))
	}
	var clat, clon *C.float
	if lat != nil && lon != nil {
		la, lo := C.float(*lat), C.float(*lon)
		clat, clon = &la, &lo
	}
	return entities.NavRef(C.XPLMFindNavAid(cname, cid, clat, clon, nil, C.XPLMNavType(types)))
}

// GetNavAidInfo implements ports.Host.
func (h *Host) GetNavAidInfo(ref entities.NavRef) entities.NavEntry {
	var (
		navType          C.XPLMNavType
		lat, lon, height C.float
		heading          C.float
		frequency        C.int
		id               [32]C.char
		name             [256]C.char
		region           [2]C.char
	)
	C.XPLMGetNavAidInfo(C.XPLMNavRef(ref), &navType, &lat, &lon, &height, &frequency, &heading,
		&id[0], &name[0], &region[0])
	return entities.NavEntry{
		Ref:       ref,
		Type:      entities.NavType(navType),
		ID:        C.GoString(&id[0]),
		Name:      C.GoString(&name[0]),
		Latitude:  float32(lat),
		Longitude: float32(lon),
		Height:    float32(height),
		Frequency: int(frequency),
		Heading:   float32(heading),
		Region:    C.GoString(&region[0]),
	}
}

// DebugString implements ports.Host.
func (h *Host) DebugString(s string) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	C.XPLMDebugString(cs)
}

// GetVersions implements ports.Host.
func (h *Host) GetVersions() (appVersion, sdkVersion, hostID int) {
	var app, sdk C.int
	var host C.XPLMHostApplicationID
	C.XPLMGetVersions(&app, &sdk, &host)
	return int(app), int(sdk), int(host)
}

// GetMyID implements ports.Host.
func (h *Host) GetMyID() int { return int(C.XPLMGetMyID()) }

// SendMessageToPlugin implements ports.Host.
func (h *Host) SendMessageToPlugin(plugin int, message entities.MessageID, param uintptr) {
	C.xsdk_send_message(C.XPLMPluginID(plugin), C.int(message), C.uintptr_t(param))
}
