// Package plugin is the high-level way to write a plugin: implement Plugin
// (or build one with DefinePlugin), register it, and let the native entry
// points or a test harness drive it through a Session.
package plugin

import (
	"context"
	"sync"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

// Plugin is the interface every plugin implements. Each method runs in the
// sim thread context with the session that owns the plugin's handles.
type Plugin interface {
	Info() entities.PluginInfo
	Start(ctx context.Context, s *sdk.Session) error
	Enable(ctx context.Context, s *sdk.Session) error
	Disable(ctx context.Context, s *sdk.Session)
	Stop(ctx context.Context, s *sdk.Session)
}

// MessageReceiver is implemented by plugins that handle inter-plugin and
// host messages.
type MessageReceiver interface {
	ReceiveMessage(ctx context.Context, s *sdk.Session, msg entities.Message)
}

var (
	registeredMu sync.Mutex
	registered   Plugin
)

// Register makes p the plugin the native entry points load. Call it from
// an init function; a second call replaces the first.
func Register(p Plugin) {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	registered = p
}

// Registered returns the registered plugin, or nil.
func Registered() Plugin {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	return registered
}
