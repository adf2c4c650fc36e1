package host_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/host"
	"github.com/stretchr/testify/suite"
)

// recordingSink is a ports.CallbackSink that records what the host sent.
type recordingSink struct {
	loopNext  map[ports.Refcon]entities.Interval
	cmdResult map[ports.Refcon]int
	drawOK    map[ports.Refcon]int
	owned     map[ports.Refcon]entities.Value
	loops     []ports.Refcon
	commands  []string
	menus     [][2]ports.Refcon
	draws     []string
	camera    []bool
	keepCam   int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		loopNext:  make(map[ports.Refcon]entities.Interval),
		cmdResult: make(map[ports.Refcon]int),
		drawOK:    make(map[ports.Refcon]int),
		owned:     make(map[ports.Refcon]entities.Value),
		keepCam:   1,
	}
}

func (r *recordingSink) FlightLoop(refcon ports.Refcon, _, _ float32, _ int) entities.Interval {
	r.loops = append(r.loops, refcon)
	return r.loopNext[refcon]
}

func (r *recordingSink) Command(refcon ports.Refcon, _ ports.RawHandle, phase entities.CommandPhase) int {
	r.commands = append(r.commands, phase.String())
	if v, ok := r.cmdResult[refcon]; ok {
		return v
	}
	return 1
}

func (r *recordingSink) MenuSelected(menuRefcon, itemRefcon ports.Refcon) {
	r.menus = append(r.menus, [2]ports.Refcon{menuRefcon, itemRefcon})
}

func (r *recordingSink) Draw(refcon ports.Refcon, _ entities.DrawPhase, before bool) int {
	if before {
		r.draws = append(r.draws, "before")
	} else {
		r.draws = append(r.draws, "after")
	}
	if v, ok := r.drawOK[refcon]; ok {
		return v
	}
	return 1
}

func (r *recordingSink) Camera(_ ports.Refcon, pos *entities.CameraPosition, losing bool) int {
	r.camera = append(r.camera, losing)
	if pos != nil {
		pos.Zoom = 2
	}
	return r.keepCam
}

func (r *recordingSink) ReadData(refcon ports.Refcon, kind entities.ValueKind) entities.Value {
	v := r.owned[refcon]
	if v.Kind != kind {
		return entities.Value{Kind: kind}
	}
	return v
}

func (r *recordingSink) WriteData(refcon ports.Refcon, v entities.Value) {
	r.owned[refcon] = v
}

type SimulatorSuite struct {
	suite.Suite
	sim  *host.Simulator
	sink *recordingSink
}

func (s *SimulatorSuite) SetupTest() {
	s.sim = host.New()
	s.sink = newRecordingSink()
	s.sim.Bind(s.sink)
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorSuite))
}

func (s *SimulatorSuite) TestDefaultCatalog() {
	ref := s.sim.FindDataRef("sim/time/zulu_time_sec")
	s.Require().NotZero(ref)
	s.True(s.sim.CanWriteDataRef(ref))
	s.Equal(entities.KindsOf(entities.KindFloat), s.sim.GetDataRefTypes(ref))

	s.Zero(s.sim.FindDataRef("sim/does/not/exist"))
	s.False(s.sim.CanWriteDataRef(s.sim.FindDataRef("sim/time/total_running_time_sec")))
}

func (s *SimulatorSuite) TestWithoutDefaults() {
	sim := host.New(host.WithoutDefaults())
	s.Zero(sim.FindDataRef("sim/time/zulu_time_sec"))
	s.Equal(entities.NavNotFound, sim.GetFirstNavAid())
	s.NotZero(sim.FindPluginsMenu())
}

func (s *SimulatorSuite) TestScalarConversionAndWritability() {
	ref := s.sim.FindDataRef("sim/time/zulu_time_sec")
	s.sim.SetDataf(ref, 3600)
	s.InDelta(float32(3600), s.sim.GetDataf(ref), 0)

	// Asking for a kind the dataref does not have reads zero.
	s.Zero(s.sim.GetDatai(ref))

	ro := s.sim.FindDataRef("sim/time/total_running_time_sec")
	s.sim.SetDataf(ro, 99)
	s.Zero(s.sim.GetDataf(ro))
}

func (s *SimulatorSuite) TestArrayContract() {
	ref := s.sim.FindDataRef("sim/flightmodel/engine/ENGN_thro")
	s.Equal(8, s.sim.GetDatavf(ref, nil, 0))

	s.sim.SetDatavf(ref, []float32{0.5, 0.75}, 6)
	out := make([]float32, 4)
	n := s.sim.GetDatavf(ref, out, 4)
	s.Equal(4, n)
	s.Equal([]float32{0, 0, 0.5, 0.75}, out)

	// Out of range offsets are ignored by the host.
	s.Zero(s.sim.GetDatavf(ref, out, 8))
}

func (s *SimulatorSuite) TestFlightLoopScheduling() {
	loop := s.sim.CreateFlightLoop(entities.PhaseBeforeFlightModel, 7)
	s.sink.loopNext[7] = 1
	s.sim.ScheduleFlightLoop(loop, 1, true)

	s.sim.Run(5, time.Second)
	s.Equal(5, s.sim.LoopCalls(7))

	s.sink.loopNext[7] = entities.Stop
	s.sim.Run(3, time.Second)
	s.Equal(6, s.sim.LoopCalls(7))
	s.Zero(s.sim.ScheduledLoops())
}

func (s *SimulatorSuite) TestFlightLoopFrames() {
	loop := s.sim.CreateFlightLoop(entities.PhaseAfterFlightModel, 3)
	s.sink.loopNext[3] = entities.Frames(2)
	s.sim.ScheduleFlightLoop(loop, entities.Frames(1), true)

	s.sim.Run(5, 10*time.Millisecond)
	// Frames 1, 3 and 5.
	s.Equal(3, s.sim.LoopCalls(3))

	s.sim.DestroyFlightLoop(loop)
	s.Zero(s.sim.Loops())
}

func (s *SimulatorSuite) TestTimeAdvances() {
	ref := s.sim.FindDataRef("sim/time/total_running_time_sec")
	s.sim.Run(4, 500*time.Millisecond)
	s.InDelta(2.0, s.sim.GetDataf(ref), 1e-6)
	s.Equal(4, s.sim.GetCycleNumber())
	s.InDelta(2.0, s.sim.Elapsed(), 1e-9)
}

func (s *SimulatorSuite) TestCommandHandlerChain() {
	cmd := s.sim.CreateCommand("test/action", "Test action")
	s.Equal(cmd, s.sim.FindCommand("test/action"))

	s.sim.RegisterCommandHandler(cmd, true, 1)
	s.sim.RegisterCommandHandler(cmd, false, 2)
	s.True(s.sim.TriggerCommand("test/action"))
	s.Equal([]string{"begin", "begin", "end", "end"}, s.sink.commands)
	s.Equal(1, s.sim.CommandRuns("test/action"))

	s.sink.commands = nil
	s.sink.cmdResult[1] = 0
	s.sim.CommandOnce(cmd)
	s.Equal([]string{"begin", "end"}, s.sink.commands)
	s.Equal(1, s.sim.CommandRuns("test/action"))

	s.sim.UnregisterCommandHandler(cmd, true, 1)
	s.Equal(1, s.sim.CommandHandlers("test/action"))
}

func (s *SimulatorSuite) TestHeldCommandContinues() {
	cmd := s.sim.FindCommand("sim/engines/throttle_up")
	s.sim.RegisterCommandHandler(cmd, false, 4)

	s.sim.CommandBegin(cmd)
	s.sim.Run(2, time.Second)
	s.sim.CommandEnd(cmd)
	s.Equal([]string{"begin", "continue", "continue", "end"}, s.sink.commands)

	v, ok := s.sim.Value("sim/flightmodel/engine/ENGN_thro")
	s.Require().True(ok)
	s.InDelta(0.4, v.Floats[0], 1e-6)
}

func (s *SimulatorSuite) TestDefaultCommandAction() {
	s.True(s.sim.TriggerCommand("sim/operation/pause_toggle"))
	v, _ := s.sim.Value("sim/time/paused")
	s.Equal(int32(1), v.Int)
	s.False(s.sim.TriggerCommand("nope/nope"))
}

func (s *SimulatorSuite) TestMenus() {
	root := s.sim.FindPluginsMenu()
	slot := s.sim.AppendMenuItem(root, "Test", 0)
	menu := s.sim.CreateMenu("Test", root, slot, 10)
	s.Require().NotZero(menu)
	s.Zero(s.sim.CreateMenu("Again", root, slot, 11))

	s.sim.AppendMenuItem(menu, "Action", 20)
	s.sim.AppendMenuSeparator(menu)
	cmd := s.sim.CreateCommand("test/other", "")
	s.sim.AppendMenuItemWithCommand(menu, "Other", cmd)

	s.Require().NoError(s.sim.ClickMenuItem("Test", "Action"))
	s.Equal([][2]ports.Refcon{{10, 20}}, s.sink.menus)

	s.Require().NoError(s.sim.ClickMenuItem("Test", "Other"))
	s.Equal(1, s.sim.CommandRuns("test/other"))

	s.sim.CheckMenuItem(menu, 0, entities.MenuChecked)
	s.sim.EnableMenuItem(menu, 0, false)
	items, err := s.sim.MenuItems("Test")
	s.Require().NoError(err)
	s.Len(items, 3)
	s.Equal(entities.MenuChecked, items[0].Check)
	s.False(items[0].Enabled)
	s.True(items[1].Separator)
	s.True(items[2].HasCommand)
	s.Error(s.sim.ClickMenuItem("Test", "Action"))

	s.sim.RemoveMenuItem(menu, 1)
	items, _ = s.sim.MenuItems("Test")
	s.Len(items, 2)

	s.sim.DestroyMenu(menu)
	s.Zero(s.sim.Menus())
	s.Error(s.sim.ClickMenuItem("Test", "Action"))
}

func (s *SimulatorSuite) TestOwnedDataRef() {
	raw := s.sim.RegisterDataAccessor("plugin/value", entities.KindsOf(entities.KindFloat), true, 5)
	s.Require().NotZero(raw)
	s.Zero(s.sim.RegisterDataAccessor("plugin/value", entities.KindsOf(entities.KindFloat), true, 6))

	s.sim.SetDataf(raw, 1.5)
	s.InDelta(float32(1.5), s.sim.GetDataf(raw), 0)
	v, ok := s.sim.Value("plugin/value")
	s.True(ok)
	s.Equal(entities.FloatValue(1.5), v)

	s.sim.UnregisterDataAccessor(raw)
	s.False(s.sim.IsDataRefGood(raw))
	s.Zero(s.sim.FindDataRef("plugin/value"))
}

func (s *SimulatorSuite) TestObjectsAndInstances() {
	s.sim.RejectObject("missing.obj")
	s.Zero(s.sim.LoadObject("missing.obj"))

	obj := s.sim.LoadObject("lib/beacon.obj")
	s.Require().NotZero(obj)
	inst := s.sim.CreateInstance(obj, []string{"a", "b"})
	s.Require().NotZero(inst)

	s.sim.InstanceSetPosition(inst, entities.DrawInfo{X: 1, Y: 2, Z: 3}, []float32{4, 5})
	got := s.sim.Instances()
	s.Require().Len(got, 1)
	s.Equal("lib/beacon.obj", got[0].Object)
	s.Equal([]float32{4, 5}, got[0].Data)
	s.Equal(float32(2), got[0].Position.Y)

	s.sim.DestroyInstance(inst)
	s.Empty(s.sim.Instances())
	s.sim.UnloadObject(obj)
	s.Zero(s.sim.Objects())
	s.Zero(s.sim.CreateInstance(obj, nil))
}

func (s *SimulatorSuite) TestDrawPhases() {
	s.True(s.sim.RegisterDrawCallback(entities.DrawObjects, true, 1))
	s.False(s.sim.RegisterDrawCallback(entities.DrawObjects, true, 1))
	s.True(s.sim.RegisterDrawCallback(entities.DrawObjects, false, 2))

	s.Empty(s.sim.Render())
	s.Equal([]string{"before", "after"}, s.sink.draws)

	s.sink.drawOK[1] = 0
	s.Equal([]entities.DrawPhase{entities.DrawObjects}, s.sim.Render())

	s.True(s.sim.UnregisterDrawCallback(entities.DrawObjects, true, 1))
	s.Equal(1, s.sim.DrawCallbacks())
}

func (s *SimulatorSuite) TestCameraControl() {
	s.sim.ControlCamera(entities.CameraUntilViewChanges, 9)
	controlled, duration := s.sim.IsCameraBeingControlled()
	s.True(controlled)
	s.Equal(entities.CameraUntilViewChanges, duration)

	s.sim.Render()
	s.Equal(float32(2), s.sim.ReadCameraPosition().Zoom)

	s.sim.ChangeView()
	s.False(s.sim.CameraControlled())
	s.Equal([]bool{false, true}, s.sink.camera)

	s.sim.SetOtherPluginCamera(true)
	controlled, _ = s.sim.IsCameraBeingControlled()
	s.True(controlled)
	s.False(s.sim.CameraControlled())
}

func (s *SimulatorSuite) TestCameraCallbackGivesUp() {
	s.sink.keepCam = 0
	s.sim.ControlCamera(entities.CameraForever, 9)
	s.sim.Render()
	s.False(s.sim.CameraControlled())
}

func (s *SimulatorSuite) TestProbes() {
	sim := host.New(host.WithTerrain(func(x, _ float64) (float64, bool, bool) {
		return 12, x < 0, x < 1000
	}))
	probe := sim.CreateProbe()

	res, status := sim.ProbeTerrainXYZ(probe, -5, 100, 0)
	s.Equal(entities.ProbeHitTerrain, status)
	s.Equal(12.0, res.Location.Y)
	s.True(res.IsWet)

	_, status = sim.ProbeTerrainXYZ(probe, 5000, 100, 0)
	s.Equal(entities.ProbeMissed, status)
	s.Equal(2, sim.ProbeCalls())

	sim.DestroyProbe(probe)
	_, status = sim.ProbeTerrainXYZ(probe, 0, 0, 0)
	s.Equal(entities.ProbeError, status)
}

func (s *SimulatorSuite) TestCoordinatesRoundTrip() {
	x, y, z := s.sim.WorldToLocal(47.5, -122.2, 300)
	s.Greater(x, 0.0)
	s.Less(z, 0.0)
	s.Equal(300.0, y)

	lat, lon, alt := s.sim.LocalToWorld(x, y, z)
	s.InDelta(47.5, lat, 1e-9)
	s.InDelta(-122.2, lon, 1e-9)
	s.InDelta(300, alt, 1e-9)
}

func (s *SimulatorSuite) TestNavigation() {
	first := s.sim.FindFirstNavAidOfType(entities.NavVOR)
	last := s.sim.FindLastNavAidOfType(entities.NavVOR)
	s.Equal("SEA", s.sim.GetNavAidInfo(first).ID)
	s.Equal("PAE", s.sim.GetNavAidInfo(last).ID)
	s.Equal(last, s.sim.GetNextNavAid(first))

	lat, lon := float32(47.9), float32(-122.28)
	near := s.sim.FindNavAid("", "", &lat, &lon, entities.NavAirport)
	s.Equal("KPAE", s.sim.GetNavAidInfo(near).ID)

	s.Equal(entities.NavNotFound, s.sim.FindNavAid("nowhere", "", nil, nil, entities.NavAny))
	s.Equal(entities.NavNotFound, s.sim.GetNavAidInfo(999).Ref)

	n := 0
	for ref := s.sim.GetFirstNavAid(); ref != entities.NavNotFound; ref = s.sim.GetNextNavAid(ref) {
		n++
	}
	s.Equal(7, n)
}

func (s *SimulatorSuite) TestUtilities() {
	var buf bytes.Buffer
	sim := host.New(host.WithDebugOutput(&buf), host.WithVersions(11550, 303))
	sim.DebugString("hello\n")
	s.Equal([]string{"hello\n"}, sim.DebugLog())
	s.Equal("hello\n", buf.String())

	app, sdk, _ := sim.GetVersions()
	s.Equal(11550, app)
	s.Equal(303, sdk)

	sim.SendMessageToPlugin(2, entities.MsgPlaneLoaded, 0)
	s.Equal([]host.SentMessage{{Plugin: 2, Message: entities.MsgPlaneLoaded}}, sim.SentMessages())
}

func (s *SimulatorSuite) TestCallbackBeforeBindPanics() {
	sim := host.New()
	loop := sim.CreateFlightLoop(entities.PhaseBeforeFlightModel, 1)
	sim.ScheduleFlightLoop(loop, entities.Frames(1), true)
	s.Panics(func() { sim.Tick(time.Second) })
}
