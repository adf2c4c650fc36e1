package host

import (
	"slices"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

type simInstance struct {
	obj      ports.RawHandle
	datarefs []string
	data     []float32
	pos      entities.DrawInfo
}

// InstanceInfo is a snapshot of one live instance.
type InstanceInfo struct {
	Object   string
	Datarefs []string
	Data     []float32
	Position entities.DrawInfo
}

type simDraw struct {
	refcon ports.Refcon
	phase  entities.DrawPhase
	before bool
}

type cameraState struct {
	pos      entities.CameraPosition
	refcon   ports.Refcon
	duration entities.CameraDuration
	ours     bool
	other    bool
}

// RejectObject makes LoadObject fail for path, as for a missing file.
func (s *Simulator) RejectObject(path string) {
	s.rejected[path] = true
}

// LoadObject implements ports.Host.
func (s *Simulator) LoadObject(path string) ports.RawHandle {
	if path == "" || s.rejected[path] {
		return 0
	}
	raw := s.alloc()
	s.objects[raw] = path
	return raw
}

// UnloadObject implements ports.Host.
func (s *Simulator) UnloadObject(obj ports.RawHandle) {
	delete(s.objects, obj)
}

// CreateInstance implements ports.Host.
func (s *Simulator) CreateInstance(obj ports.RawHandle, datarefs []string) ports.RawHandle {
	if _, ok := s.objects[obj]; !ok {
		return 0
	}
	raw := s.alloc()
	s.instances[raw] = &simInstance{
		obj:      obj,
		datarefs: slices.Clone(datarefs),
		data:     make([]float32, len(datarefs)),
	}
	return raw
}

// DestroyInstance implements ports.Host.
func (s *Simulator) DestroyInstance(inst ports.RawHandle) {
	delete(s.instances, inst)
}

// InstanceSetPosition implements ports.Host. The host reads exactly one
// value per bound dataref.
func (s *Simulator) InstanceSetPosition(inst ports.RawHandle, pos entities.DrawInfo, data []float32) {
	in, ok := s.instances[inst]
	if !ok {
		return
	}
	in.pos = pos
	copy(in.data, data)
}

// Instances returns a snapshot of every live instance.
func (s *Simulator) Instances() []InstanceInfo {
	out := make([]InstanceInfo, 0, len(s.instances))
	for _, in := range s.instances {
		out = append(out, InstanceInfo{
			Object:   s.objects[in.obj],
			Datarefs: slices.Clone(in.datarefs),
			Data:     slices.Clone(in.data),
			Position: in.pos,
		})
	}
	return out
}

// Objects returns the number of loaded objects.
func (s *Simulator) Objects() int { return len(s.objects) }

// RegisterDrawCallback implements ports.Host.
func (s *Simulator) RegisterDrawCallback(phase entities.DrawPhase, before bool, refcon ports.Refcon) bool {
	d := simDraw{refcon: refcon, phase: phase, before: before}
	if slices.Contains(s.draws, d) {
		return false
	}
	s.draws = append(s.draws, d)
	return true
}

// UnregisterDrawCallback implements ports.Host.
func (s *Simulator) UnregisterDrawCallback(phase entities.DrawPhase, before bool, refcon ports.Refcon) bool {
	i := slices.Index(s.draws, simDraw{refcon: refcon, phase: phase, before: before})
	if i < 0 {
		return false
	}
	s.draws = slices.Delete(s.draws, i, i+1)
	return true
}

// DrawCallbacks returns the number of registered draw callbacks.
func (s *Simulator) DrawCallbacks() int { return len(s.draws) }

// Render draws one frame. The camera override runs first, then every phase
// that has callbacks, in phase order. It returns the phases whose host
// drawing a before-callback suppressed.
func (s *Simulator) Render() []entities.DrawPhase {
	s.runCamera()

	phases := make([]entities.DrawPhase, 0, len(s.draws))
	for _, d := range s.draws {
		if !slices.Contains(phases, d.phase) {
			phases = append(phases, d.phase)
		}
	}
	slices.Sort(phases)

	var suppressed []entities.DrawPhase
	for _, phase := range phases {
		if !s.RenderPhase(phase) {
			suppressed = append(suppressed, phase)
		}
	}
	return suppressed
}

// RenderPhase runs one draw phase and reports whether the host drew it.
func (s *Simulator) RenderPhase(phase entities.DrawPhase) bool {
	draws := slices.Clone(s.draws)
	drawn := true
	for _, d := range draws {
		if d.phase == phase && d.before && s.requireSink().Draw(d.refcon, phase, true) == 0 {
			drawn = false
		}
	}
	for _, d := range draws {
		if d.phase == phase && !d.before {
			s.requireSink().Draw(d.refcon, phase, false)
		}
	}
	return drawn
}

// ControlCamera implements ports.Host.
func (s *Simulator) ControlCamera(duration entities.CameraDuration, refcon ports.Refcon) {
	s.camera.ours = true
	s.camera.other = false
	s.camera.refcon = refcon
	s.camera.duration = duration
}

// DontControlCamera implements ports.Host. The callback is not told.
func (s *Simulator) DontControlCamera() {
	s.camera.ours = false
	s.camera.refcon = 0
}

// IsCameraBeingControlled implements ports.Host.
func (s *Simulator) IsCameraBeingControlled() (bool, entities.CameraDuration) {
	if s.camera.ours || s.camera.other {
		return true, s.camera.duration
	}
	return false, 0
}

// ReadCameraPosition implements ports.Host.
func (s *Simulator) ReadCameraPosition() entities.CameraPosition {
	return s.camera.pos
}

func (s *Simulator) runCamera() {
	if !s.camera.ours {
		return
	}
	pos := s.camera.pos
	keep := s.requireSink().Camera(s.camera.refcon, &pos, false)
	s.camera.pos = pos
	if keep == 0 {
		s.DontControlCamera()
	}
}

// loseCamera tells the controlling callback it is losing control.
func (s *Simulator) loseCamera() {
	if !s.camera.ours {
		return
	}
	refcon := s.camera.refcon
	s.DontControlCamera()
	s.requireSink().Camera(refcon, nil, true)
}

// ChangeView simulates the user picking a view. Overrides taken
// until-view-changes end.
func (s *Simulator) ChangeView() {
	if s.camera.ours && s.camera.duration == entities.CameraUntilViewChanges {
		s.loseCamera()
	}
}

// SetOtherPluginCamera simulates another plugin taking or releasing the
// camera. Taking it from this plugin tells this plugin's callback.
func (s *Simulator) SetOtherPluginCamera(controlled bool) {
	if controlled {
		s.loseCamera()
		s.camera.duration = entities.CameraForever
	}
	s.camera.other = controlled
}

// CameraControlled reports whether this plugin holds the camera.
func (s *Simulator) CameraControlled() bool { return s.camera.ours }
