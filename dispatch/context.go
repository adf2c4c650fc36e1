package dispatch

import (
	"context"

	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// CallContext wraps a context.Context with callback-specific helpers.
// Middleware uses it to learn what is being invoked and to pass
// invocation-scoped values down the chain.
type CallContext interface {
	context.Context

	// Kind returns the callback kind being invoked.
	Kind() Kind

	// Refcon returns the token the host passed back.
	Refcon() ports.Refcon

	// Label returns the name the callback was registered under.
	Label() string

	// SetValue stores an invocation-scoped value. Values set here are also
	// visible through Value.
	SetValue(key, value any)

	// GetValue retrieves a value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type callContext struct {
	context.Context
	values map[any]any
	label  string
	refcon ports.Refcon
	kind   Kind
}

// NewCallContext creates a CallContext wrapping ctx.
func NewCallContext(ctx context.Context, kind Kind, refcon ports.Refcon, label string) CallContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &callContext{
		Context: ctx,
		kind:    kind,
		refcon:  refcon,
		label:   label,
		values:  make(map[any]any),
	}
}

func (c *callContext) Kind() Kind           { return c.kind }
func (c *callContext) Refcon() ports.Refcon { return c.refcon }
func (c *callContext) Label() string        { return c.label }

func (c *callContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *callContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Value consults invocation-scoped values before the wrapped context.
func (c *callContext) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.Context.Value(key)
}
