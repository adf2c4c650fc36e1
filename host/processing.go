package host

import (
	"time"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// timeEpsilon absorbs float accumulation when comparing due times.
const timeEpsilon = 1e-6

type simLoop struct {
	raw       ports.RawHandle
	refcon    ports.Refcon
	phase     entities.LoopPhase
	interval  entities.Interval
	dueTime   float64
	dueFrame  int
	lastCall  float64
	calls     int
	scheduled bool
}

// CreateFlightLoop implements ports.Host. The loop starts unscheduled.
func (s *Simulator) CreateFlightLoop(phase entities.LoopPhase, refcon ports.Refcon) ports.RawHandle {
	raw := s.alloc()
	s.loops[raw] = &simLoop{raw: raw, refcon: refcon, phase: phase, lastCall: s.elapsed}
	s.loopOrder = append(s.loopOrder, raw)
	return raw
}

// ScheduleFlightLoop implements ports.Host.
func (s *Simulator) ScheduleFlightLoop(id ports.RawHandle, interval entities.Interval, relativeToNow bool) {
	l, ok := s.loops[id]
	if !ok {
		return
	}
	s.schedule(l, interval, relativeToNow)
}

func (s *Simulator) schedule(l *simLoop, interval entities.Interval, relativeToNow bool) {
	l.interval = interval
	switch {
	case interval.IsStop():
		l.scheduled = false
	case interval.IsFrames():
		l.scheduled = true
		l.dueFrame = s.frame + int(-interval)
	default:
		base := s.elapsed
		if !relativeToNow {
			base = l.lastCall
		}
		l.scheduled = true
		l.dueTime = base + float64(interval)
	}
}

// DestroyFlightLoop implements ports.Host.
func (s *Simulator) DestroyFlightLoop(id ports.RawHandle) {
	if _, ok := s.loops[id]; !ok {
		return
	}
	delete(s.loops, id)
	for i, raw := range s.loopOrder {
		if raw == id {
			s.loopOrder = append(s.loopOrder[:i], s.loopOrder[i+1:]...)
			break
		}
	}
}

// GetElapsedTime implements ports.Host.
func (s *Simulator) GetElapsedTime() float32 { return float32(s.elapsed) }

// GetCycleNumber implements ports.Host.
func (s *Simulator) GetCycleNumber() int { return s.frame }

// Tick advances the simulation by dt and runs one host frame: due flight
// loops before the flight model, the flight model (time datarefs), due
// flight loops after it, and a continue phase for every held command.
func (s *Simulator) Tick(dt time.Duration) {
	step := dt.Seconds()
	s.frame++
	s.elapsed += step

	s.runLoops(entities.PhaseBeforeFlightModel, step)
	s.advanceFlightModel(step)
	s.runLoops(entities.PhaseAfterFlightModel, step)
	s.continueCommands()
}

// Run calls Tick n times.
func (s *Simulator) Run(n int, dt time.Duration) {
	for range n {
		s.Tick(dt)
	}
}

func (s *Simulator) runLoops(phase entities.LoopPhase, step float64) {
	// Callbacks may create and destroy loops, so walk a snapshot.
	order := append([]ports.RawHandle(nil), s.loopOrder...)
	for _, raw := range order {
		l, ok := s.loops[raw]
		if !ok || l.phase != phase || !s.due(l) {
			continue
		}
		sinceLast := s.elapsed - l.lastCall
		l.lastCall = s.elapsed
		l.calls++
		next := s.requireSink().FlightLoop(l.refcon, float32(sinceLast), float32(step), s.frame)

		// The callback may have destroyed its own loop.
		if l, ok = s.loops[raw]; ok {
			s.schedule(l, next, true)
		}
	}
}

func (s *Simulator) due(l *simLoop) bool {
	if !l.scheduled {
		return false
	}
	if l.interval.IsFrames() {
		return s.frame >= l.dueFrame
	}
	return s.elapsed+timeEpsilon >= l.dueTime
}

func (s *Simulator) advanceFlightModel(step float64) {
	for _, name := range []string{"sim/time/total_running_time_sec", "sim/time/zulu_time_sec"} {
		if d := s.byName(name); d != nil && !d.owned {
			d.num += step
		}
	}
}

// LoopCalls returns how many times the loop registered with refcon ran.
func (s *Simulator) LoopCalls(refcon ports.Refcon) int {
	for _, l := range s.loops {
		if l.refcon == refcon {
			return l.calls
		}
	}
	return 0
}

// ScheduledLoops returns the number of live loops that will run again.
func (s *Simulator) ScheduledLoops() int {
	n := 0
	for _, l := range s.loops {
		if l.scheduled {
			n++
		}
	}
	return n
}

// Loops returns the number of live (created, not destroyed) loops.
func (s *Simulator) Loops() int { return len(s.loops) }
