package entities

import "fmt"

// LifecycleState is the plugin's position in the host-driven lifecycle.
type LifecycleState int

const (
	StateUnloaded LifecycleState = iota
	StateStarted
	StateEnabled
	StateDisabled
	StateStopped
)

func (s LifecycleState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateStarted:
		return "started"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Loaded reports whether the host has the plugin in memory and may call it.
func (s LifecycleState) Loaded() bool {
	return s == StateStarted || s == StateEnabled || s == StateDisabled
}

// Scope groups handles that are released together.
type Scope int

const (
	// ScopeNone marks handles that are only released explicitly.
	ScopeNone Scope = iota
	// ScopePlugin handles live from start until stop.
	ScopePlugin
	// ScopeEnabled handles live from enable until the next disable.
	ScopeEnabled
)

func (s Scope) String() string {
	switch s {
	case ScopePlugin:
		return "plugin"
	case ScopeEnabled:
		return "enabled"
	default:
		return "none"
	}
}

// Thread identifies the host thread context a call runs in.
type Thread int

const (
	// ThreadNone means no host call is in progress on this path.
	ThreadNone Thread = iota
	// ThreadSim runs lifecycle hooks, flight loops, dataref access and
	// menu/command handlers.
	ThreadSim
	// ThreadRender runs draw callbacks and the camera override.
	ThreadRender
)

func (t Thread) String() string {
	switch t {
	case ThreadSim:
		return "sim"
	case ThreadRender:
		return "render"
	default:
		return "none"
	}
}

// PluginInfo is what the start entry point reports back to the host.
type PluginInfo struct {
	Name        string `json:"name" yaml:"name" validate:"required,max=255"`
	Signature   string `json:"signature" yaml:"signature" validate:"required,max=255,excludesall= "`
	Description string `json:"description" yaml:"description" validate:"max=255"`
}

// MessageID identifies an inter-plugin or host message.
type MessageID int

// Messages sent by the host. Any other id may arrive from other plugins.
const (
	MsgPlaneCrashed         MessageID = 101
	MsgPlaneLoaded          MessageID = 102
	MsgAirportLoaded        MessageID = 103
	MsgSceneryLoaded        MessageID = 104
	MsgAirplaneCountChanged MessageID = 105
	MsgPlaneUnloaded        MessageID = 106
	MsgWillWritePrefs       MessageID = 107
	MsgLiveryLoaded         MessageID = 108
	MsgEnteredVR            MessageID = 109
	MsgExitingVR            MessageID = 110
	MsgReleasePlanes        MessageID = 111
	MsgFMODBankLoaded       MessageID = 112
	MsgFMODBankUnloading    MessageID = 113
	MsgDatarefsAdded        MessageID = 114
)

var messageNames = map[MessageID]string{
	MsgPlaneCrashed:         "plane_crashed",
	MsgPlaneLoaded:          "plane_loaded",
	MsgAirportLoaded:        "airport_loaded",
	MsgSceneryLoaded:        "scenery_loaded",
	MsgAirplaneCountChanged: "airplane_count_changed",
	MsgPlaneUnloaded:        "plane_unloaded",
	MsgWillWritePrefs:       "will_write_prefs",
	MsgLiveryLoaded:         "livery_loaded",
	MsgEnteredVR:            "entered_vr",
	MsgExitingVR:            "exiting_vr",
	MsgReleasePlanes:        "release_planes",
	MsgFMODBankLoaded:       "fmod_bank_loaded",
	MsgFMODBankUnloading:    "fmod_bank_unloading",
	MsgDatarefsAdded:        "datarefs_added",
}

// Known reports whether the id is one the host itself sends.
func (m MessageID) Known() bool {
	_, ok := messageNames[m]
	return ok
}

func (m MessageID) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("message(%d)", int(m))
}

// Message is one delivery on the receive-message side channel.
// Payload is opaque: it is only meaningful to the sender.
type Message struct {
	Sender  int
	ID      MessageID
	Payload uintptr
}
