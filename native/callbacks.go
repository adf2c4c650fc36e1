//go:build xplm

package native

/*
#include "shim.h"
*/
import "C"

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Trampoline targets. Each forwards to the bound sink, which recovers
// panics itself; before binding they return the inert value.

func currentSink() ports.CallbackSink {
	if active == nil {
		return nil
	}
	return active.sink
}

//export xsdkFlightLoop
func xsdkFlightLoop(sinceLastCall, sinceLastLoop C.float, counter C.int, refcon C.uintptr_t) C.float {
	sink := currentSink()
	if sink == nil {
		return 0
	}
	return C.float(sink.FlightLoop(ports.Refcon(refcon), float32(sinceLastCall), float32(sinceLastLoop), int(counter)))
}

//export xsdkMenu
func xsdkMenu(menuRefcon, itemRefcon C.uintptr_t) {
	if sink := currentSink(); sink != nil {
		sink.MenuSelected(ports.Refcon(menuRefcon), ports.Refcon(itemRefcon))
	}
}

//export xsdkCommand
func xsdkCommand(cmd C.uintptr_t, phase C.int, refcon C.uintptr_t) C.int {
	sink := currentSink()
	if sink == nil {
		return 1
	}
	return C.int(sink.Command(ports.Refcon(refcon), ports.RawHandle(cmd), entities.CommandPhase(phase)))
}

//export xsdkDraw
func xsdkDraw(phase, before C.int, refcon C.uintptr_t) C.int {
	sink := currentSink()
	if sink == nil {
		return 1
	}
	return C.int(sink.Draw(ports.Refcon(refcon), entities.DrawPhase(phase), before != 0))
}

//export xsdkCamera
func xsdkCamera(pos *C.XPLMCameraPosition_t, losing C.int, refcon C.uintptr_t) C.int {
	sink := currentSink()
	if sink == nil {
		return 0
	}
	if pos == nil {
		return C.int(sink.Camera(ports.Refcon(refcon), nil, losing != 0))
	}
	p := fromCamera(pos)
	keep := sink.Camera(ports.Refcon(refcon), &p, losing != 0)
	toCamera(p, pos)
	return C.int(keep)
}

func read(refcon C.uintptr_t, kind entities.ValueKind) entities.Value {
	sink := currentSink()
	if sink == nil {
		return entities.Value{Kind: kind}
	}
	return sink.ReadData(ports.Refcon(refcon), kind)
}

func write(refcon C.uintptr_t, v entities.Value) {
	if sink := currentSink(); sink != nil {
		sink.WriteData(ports.Refcon(refcon), v)
	}
}

//export xsdkGeti
func xsdkGeti(refcon C.uintptr_t) C.int {
	return C.int(read(refcon, entities.KindInt).Int)
}

//export xsdkSeti
func xsdkSeti(refcon C.uintptr_t, v C.int) {
	write(refcon, entities.IntValue(int32(v)))
}

//export xsdkGetf
func xsdkGetf(refcon C.uintptr_t) C.float {
	return C.float(read(refcon, entities.KindFloat).Float)
}

//export xsdkSetf
func xsdkSetf(refcon C.uintptr_t, v C.float) {
	write(refcon, entities.FloatValue(float32(v)))
}

//export xsdkGetd
func xsdkGetd(refcon C.uintptr_t) C.double {
	return C.double(read(refcon, entities.KindDouble).Double)
}

//export xsdkSetd
func xsdkSetd(refcon C.uintptr_t, v C.double) {
	write(refcon, entities.DoubleValue(float64(v)))
}
