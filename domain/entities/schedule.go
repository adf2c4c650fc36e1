package entities

import (
	"fmt"
	"time"
)

// Interval is a flight-loop scheduling value.
// Positive values are seconds, negative values are frames and zero means
// "do not call again".
type Interval float32

// Stop deregisters the callback from further ticks.
const Stop Interval = 0

// Seconds builds an interval of at least d between calls.
func Seconds(d time.Duration) Interval {
	if d <= 0 {
		return Stop
	}
	return Interval(d.Seconds())
}

// Frames builds an interval of n host frames. Frames(1) runs every frame.
func Frames(n int) Interval {
	if n <= 0 {
		return Stop
	}
	return Interval(-n)
}

// IsStop reports whether the interval deregisters the callback.
func (i Interval) IsStop() bool { return i == 0 }

// IsFrames reports whether the interval counts frames.
func (i Interval) IsFrames() bool { return i < 0 }

func (i Interval) String() string {
	switch {
	case i == 0:
		return "stop"
	case i < 0:
		return fmt.Sprintf("%d frames", int(-i))
	default:
		return fmt.Sprintf("%gs", float32(i))
	}
}

// LoopPhase selects when in the host frame a flight loop runs.
type LoopPhase int

const (
	PhaseBeforeFlightModel LoopPhase = 0
	PhaseAfterFlightModel  LoopPhase = 1
)

// Tick is what a flight-loop callback receives on each invocation.
type Tick struct {
	// SinceLastCall is the elapsed sim time since this callback last ran.
	SinceLastCall float32
	// SinceLastLoop is the elapsed sim time since the last host flight loop.
	SinceLastLoop float32
	// Counter is the host's monotonically increasing frame counter.
	Counter int
}
