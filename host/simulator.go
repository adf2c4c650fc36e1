package host

import (
	"fmt"
	"io"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// SentMessage records one SendMessageToPlugin call.
type SentMessage struct {
	Plugin  int
	Message entities.MessageID
	Param   uintptr
}

// Simulator is an in-memory ports.Host.
// It is driven from a single goroutine, like the real host's main thread.
type Simulator struct {
	sink ports.CallbackSink

	terrain  TerrainFunc
	debugOut io.Writer

	datarefs   map[ports.RawHandle]*simDataRef
	datarefIDs map[string]ports.RawHandle

	loops     map[ports.RawHandle]*simLoop
	loopOrder []ports.RawHandle

	menus       map[ports.RawHandle]*simMenu
	pluginsMenu ports.RawHandle

	commands   map[ports.RawHandle]*simCommand
	commandIDs map[string]ports.RawHandle

	objects   map[ports.RawHandle]string
	rejected  map[string]bool
	instances map[ports.RawHandle]*simInstance

	draws []simDraw

	probes map[ports.RawHandle]int

	debugLog []string
	sent     []SentMessage
	navaids  []entities.NavEntry
	camera   cameraState

	reference entities.WorldPoint

	nextRaw    ports.RawHandle
	elapsed    float64
	frame      int
	appVersion int
	sdkVersion int
	noDefaults bool
}

var _ ports.Host = (*Simulator)(nil)

// New creates a Simulator with the default catalog.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		datarefs:   make(map[ports.RawHandle]*simDataRef),
		datarefIDs: make(map[string]ports.RawHandle),
		loops:      make(map[ports.RawHandle]*simLoop),
		menus:      make(map[ports.RawHandle]*simMenu),
		commands:   make(map[ports.RawHandle]*simCommand),
		commandIDs: make(map[string]ports.RawHandle),
		objects:    make(map[ports.RawHandle]string),
		rejected:   make(map[string]bool),
		instances:  make(map[ports.RawHandle]*simInstance),
		probes:     make(map[ports.RawHandle]int),
		terrain:    FlatTerrain(0),
		appVersion: 12100,
		sdkVersion: 411,
		reference:  entities.WorldPoint{Latitude: 47.449, Longitude: -122.309, Altitude: 0},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pluginsMenu = s.alloc()
	s.menus[s.pluginsMenu] = &simMenu{raw: s.pluginsMenu, name: "Plugins"}

	if !s.noDefaults {
		s.loadDefaults()
	}
	return s
}

func (s *Simulator) alloc() ports.RawHandle {
	s.nextRaw++
	return s.nextRaw
}

// Bind implements ports.Host.
func (s *Simulator) Bind(sink ports.CallbackSink) {
	s.sink = sink
}

// DebugString implements ports.Host.
func (s *Simulator) DebugString(msg string) {
	s.debugLog = append(s.debugLog, msg)
	if s.debugOut != nil {
		_, _ = io.WriteString(s.debugOut, msg)
	}
}

// GetVersions implements ports.Host.
func (s *Simulator) GetVersions() (appVersion, sdkVersion, hostID int) {
	return s.appVersion, s.sdkVersion, 1
}

// GetMyID implements ports.Host.
func (s *Simulator) GetMyID() int { return 1 }

// SendMessageToPlugin implements ports.Host.
func (s *Simulator) SendMessageToPlugin(plugin int, message entities.MessageID, param uintptr) {
	s.sent = append(s.sent, SentMessage{Plugin: plugin, Message: message, Param: param})
}

// DebugLog returns everything passed to DebugString.
func (s *Simulator) DebugLog() []string {
	out := make([]string, len(s.debugLog))
	copy(out, s.debugLog)
	return out
}

// SentMessages returns every message the plugin sent.
func (s *Simulator) SentMessages() []SentMessage {
	out := make([]SentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// Elapsed returns the simulated time in seconds.
func (s *Simulator) Elapsed() float64 { return s.elapsed }

// Frame returns the number of completed Ticks.
func (s *Simulator) Frame() int { return s.frame }

func (s *Simulator) requireSink() ports.CallbackSink {
	if s.sink == nil {
		panic(fmt.Sprintf("host: callback fired before Bind (frame %d)", s.frame))
	}
	return s.sink
}
