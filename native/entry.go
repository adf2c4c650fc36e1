//go:build xplm

package native

/*
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/application/plugin"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

// session is the loaded plugin, nil until a successful start.
var session *sdk.Session

// infoSize is the size of each buffer the host passes to XPluginStart.
const infoSize = 256

func copyOut(dst *C.char, s string) {
	buf := unsafe.Slice((*byte)(unsafe.Pointer(dst)), infoSize)
	n := copy(buf[:infoSize-1], s)
	buf[n] = 0
}

func reportInfo(outName, outSig, outDesc *C.char, info entities.PluginInfo) {
	copyOut(outName, info.Name)
	copyOut(outSig, info.Signature)
	copyOut(outDesc, info.Description)
}

// pluginDir returns the plugin's folder: the directory holding the .xpl,
// or its parent for the per-platform layouts (64/, lin_x64/, ...).
func pluginDir() string {
	var path [1024]C.char
	C.XPLMGetPluginInfo(C.XPLMGetMyID(), nil, &path[0], nil, nil)
	dir := filepath.Dir(C.GoString(&path[0]))
	if base := filepath.Base(dir); base == "64" || strings.HasSuffix(base, "_x64") {
		dir = filepath.Dir(dir)
	}
	return dir
}

//export XPluginStart
func XPluginStart(outName, outSig, outDesc *C.char) C.int {
	h := New()
	p := plugin.Registered()
	if p == nil {
		h.DebugString("xplm-sdk: no plugin registered, call plugin.Register in init\n")
		reportInfo(outName, outSig, outDesc, entities.PluginInfo{Name: "unregistered", Signature: "xplm-sdk.unregistered"})
		return 0
	}

	cfeature := C.CString("XPLM_USE_NATIVE_PATHS")
	C.XPLMEnableFeature(cfeature, 1)
	C.free(unsafe.Pointer(cfeature))

	s, err := plugin.Load(h, p, filepath.Join(pluginDir(), config.FileName))
	if err != nil {
		h.DebugString(fmt.Sprintf("[%s] ERROR xplm-sdk: %v\n", p.Info().Name, err))
		reportInfo(outName, outSig, outDesc, p.Info())
		return 0
	}

	info, ok := s.Start()
	reportInfo(outName, outSig, outDesc, info)
	if !ok {
		return 0
	}
	session = s
	return 1
}

//export XPluginStop
func XPluginStop() {
	if session != nil {
		session.Stop()
		session = nil
	}
}

//export XPluginEnable
func XPluginEnable() C.int {
	if session == nil {
		return 0
	}
	return cbool(session.Enable())
}

//export XPluginDisable
func XPluginDisable() {
	if session != nil {
		session.Disable()
	}
}

//export XPluginReceiveMessage
func XPluginReceiveMessage(from C.XPLMPluginID, msg C.int, param unsafe.Pointer) {
	if session != nil {
		session.ReceiveMessage(int(from), entities.MessageID(msg), uintptr(param))
	}
}
