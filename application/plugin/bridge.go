package plugin

import (
	"context"
	"fmt"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/config"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/lifecycle"
)

// Hooks adapts p to lifecycle hooks. session is called on every hook and
// must return the session the hooks were installed on.
func Hooks(p Plugin, session func() *sdk.Session) lifecycle.Hooks {
	hooks := lifecycle.Hooks{
		Start:   func(ctx context.Context) error { return p.Start(ctx, session()) },
		Enable:  func(ctx context.Context) error { return p.Enable(ctx, session()) },
		Disable: func(ctx context.Context) { p.Disable(ctx, session()) },
		Stop:    func(ctx context.Context) { p.Stop(ctx, session()) },
	}
	if r, ok := p.(MessageReceiver); ok {
		hooks.ReceiveMessage = func(ctx context.Context, msg entities.Message) {
			r.ReceiveMessage(ctx, session(), msg)
		}
	}
	return hooks
}

// NewSession creates a session running p on host. The host is not bound.
func NewSession(host ports.Host, p Plugin, opts ...sdk.Option) *sdk.Session {
	var s *sdk.Session
	s = sdk.New(host, p.Info(), Hooks(p, func() *sdk.Session { return s }), opts...)
	return s
}

// Load validates p's info, reads the config file at path and returns a
// session for p bound to host. A missing config file means defaults.
// Options given here apply after the loaded configuration.
func Load(host ports.Host, p Plugin, path string, opts ...sdk.Option) (*sdk.Session, error) {
	if err := sdk.ValidateInfo(p.Info()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.Info().Name, err)
	}
	s := NewSession(host, p, append([]sdk.Option{sdk.WithConfig(cfg)}, opts...)...)
	host.Bind(s)
	return s, nil
}
