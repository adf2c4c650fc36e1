package dataref

import (
	"context"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Owned is a dataref this plugin publishes to the host and other plugins.
type Owned struct {
	name string
	h    handle.Handle[handle.AccessorTag]
}

// Name returns the published path.
func (o Owned) Name() string { return o.name }

// Handle returns the underlying registry handle.
func (o Owned) Handle() handle.Handle[handle.AccessorTag] { return o.h }

// Source backs a published scalar dataref. Read is called with the kind the
// reader asked for. A nil Write publishes the dataref read-only.
type Source struct {
	Read  func(kind entities.ValueKind) entities.Value
	Write func(v entities.Value)
	Kinds entities.ValueKinds
}

// Scalar is the set of Go types a Var can publish.
type Scalar interface {
	~int32 | ~float32 | ~float64
}

// Var publishes the variable p points to. The host sees it as int, float
// and double at once, converting on access.
func Var[T Scalar](p *T, writable bool) Source {
	src := Source{
		Kinds: entities.KindsOf(entities.KindInt, entities.KindFloat, entities.KindDouble),
		Read: func(kind entities.ValueKind) entities.Value {
			switch kind {
			case entities.KindInt:
				return entities.IntValue(int32(*p))
			case entities.KindFloat:
				return entities.FloatValue(float32(*p))
			default:
				return entities.DoubleValue(float64(*p))
			}
		},
	}
	if writable {
		src.Write = func(v entities.Value) {
			switch v.Kind {
			case entities.KindInt:
				*p = T(v.Int)
			case entities.KindFloat:
				*p = T(v.Float)
			case entities.KindDouble:
				*p = T(v.Double)
			}
		}
	}
	return src
}

var scalarKinds = entities.KindsOf(entities.KindInt, entities.KindFloat, entities.KindDouble)

// Publish registers a plugin-owned scalar dataref. Host reads and writes are
// routed through the dispatch table, so a panicking Source reads as zero
// instead of crashing the host. The dataref is then resolvable by name.
func (a *Access) Publish(name string, src Source) (Owned, error) {
	if err := a.calls.Require("dataref.publish", callctx.Sim...); err != nil {
		return Owned{}, err
	}
	if src.Read == nil || src.Kinds == 0 || src.Kinds&^scalarKinds != 0 {
		return Owned{}, &errors.AcquisitionFailedError{Kind: "accessor", Target: name, Reason: "only int, float and double sources can be published"}
	}

	fns := dispatch.AccessorFuncs{
		Read: func(_ context.Context, kind entities.ValueKind) entities.Value {
			if !src.Kinds.Has(kind) {
				return entities.Value{Kind: kind}
			}
			return src.Read(kind)
		},
	}
	if src.Write != nil {
		fns.Write = func(_ context.Context, v entities.Value) {
			if src.Kinds.Has(v.Kind) {
				src.Write(v)
			}
		}
	}
	refcon := a.table.AddAccessor("dataref:"+name, fns)

	raw := a.host.RegisterDataAccessor(name, src.Kinds, src.Write != nil, refcon)
	h, err := handle.Acquire[handle.AccessorTag](a.registry, raw, func(raw ports.RawHandle) {
		a.host.UnregisterDataAccessor(raw)
		a.table.Remove(refcon)
		if d, ok := a.cache[name]; ok {
			_ = handle.Release(a.registry, d.h)
			delete(a.cache, name)
		}
	})
	if err != nil {
		a.table.Remove(refcon)
		return Owned{}, &errors.AcquisitionFailedError{Kind: "accessor", Target: name}
	}

	a.logger.Debug("dataref: published", "name", name, "kinds", src.Kinds.String(), "writable", src.Write != nil)
	return Owned{name: name, h: h}, nil
}

// Unpublish withdraws an owned dataref from the host.
func (a *Access) Unpublish(o Owned) error {
	return handle.Release(a.registry, o.h)
}
