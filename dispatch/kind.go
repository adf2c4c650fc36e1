package dispatch

import (
	"context"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Kind tags a table entry.
type Kind int

const (
	KindFlightLoop Kind = iota + 1
	KindCommand
	KindMenu
	KindDraw
	KindCamera
	KindAccessor
)

func (k Kind) String() string {
	switch k {
	case KindFlightLoop:
		return "flightloop"
	case KindCommand:
		return "command"
	case KindMenu:
		return "menu"
	case KindDraw:
		return "draw"
	case KindCamera:
		return "camera"
	case KindAccessor:
		return "accessor"
	default:
		return "unknown"
	}
}

// Thread returns the host thread context the kind is invoked on.
// Accessors run in whatever context triggered the read or write, so they
// report ThreadNone and inherit.
func (k Kind) Thread() entities.Thread {
	switch k {
	case KindFlightLoop, KindCommand, KindMenu:
		return entities.ThreadSim
	case KindDraw, KindCamera:
		return entities.ThreadRender
	default:
		return entities.ThreadNone
	}
}

type (
	// FlightLoopFunc returns the next interval.
	FlightLoopFunc func(ctx context.Context, tick entities.Tick) entities.Interval

	// CommandFunc returns whether the command was handled.
	CommandFunc func(ctx context.Context, phase entities.CommandPhase) entities.Disposition

	// MenuFunc receives the refcon of the picked item.
	MenuFunc func(ctx context.Context, item ports.Refcon)

	// DrawFunc returns false from a before-callback to suppress host drawing.
	DrawFunc func(ctx context.Context, phase entities.DrawPhase, before bool) bool

	// CameraFunc returns whether the plugin keeps the camera.
	CameraFunc func(ctx context.Context, pos *entities.CameraPosition, losingControl bool) bool
)

// AccessorFuncs serve a plugin-owned dataref.
type AccessorFuncs struct {
	Read  func(ctx context.Context, kind entities.ValueKind) entities.Value
	Write func(ctx context.Context, v entities.Value)
}

// entry is the tagged variant stored per refcon. Exactly one callback field
// is set, selected by kind.
type entry struct {
	flightLoop FlightLoopFunc
	command    CommandFunc
	menu       MenuFunc
	draw       DrawFunc
	camera     CameraFunc
	accessor   AccessorFuncs
	label      string
	kind       Kind
}
