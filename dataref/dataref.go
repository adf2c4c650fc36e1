// Package dataref gives typed, checked access to host datarefs.
//
// A DataRef carries the host handle plus the kinds and writability the host
// reported when it was resolved. Every read and write validates the handle,
// the calling thread context and the value kind before the host is called,
// so a failed write never partially changes host state.
package dataref

import (
	"log/slog"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Handle is the typed handle of a resolved dataref.
type Handle = handle.Handle[handle.DataRefTag]

// DataRef is a resolved dataref. Copies share the same handle; once the
// handle is released every copy fails with UseAfterRelease.
type DataRef struct {
	name     string
	h        Handle
	kinds    entities.ValueKinds
	writable bool
}

// Name returns the dataref's path.
func (d DataRef) Name() string { return d.name }

// Handle returns the underlying registry handle.
func (d DataRef) Handle() Handle { return d.h }

// Kinds returns the kinds the host reported at resolve time.
func (d DataRef) Kinds() entities.ValueKinds { return d.kinds }

// CanWrite reports whether the host accepts writes.
func (d DataRef) CanWrite() bool { return d.writable }

// Access resolves, reads and writes datarefs.
type Access struct {
	host     ports.DataAccess
	registry *handle.Registry
	calls    *callctx.Tracker
	table    *dispatch.Table
	logger   *slog.Logger
	cache    map[string]DataRef
}

// Option configures an Access.
type Option func(*Access)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Access) {
		a.logger = logger
	}
}

// New creates an Access over host. table receives the accessor callbacks of
// published datarefs.
func New(host ports.DataAccess, registry *handle.Registry, calls *callctx.Tracker, table *dispatch.Table, opts ...Option) *Access {
	a := &Access{
		host:     host,
		registry: registry,
		calls:    calls,
		table:    table,
		logger:   slog.Default(),
		cache:    make(map[string]DataRef),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve looks a dataref up by name. Resolving the same name again returns
// the same handle while it is live.
func (a *Access) Resolve(name string) (DataRef, error) {
	if err := a.calls.Require("dataref.resolve", callctx.SimOrRender...); err != nil {
		return DataRef{}, err
	}
	if d, ok := a.cache[name]; ok {
		if handle.IsValid(a.registry, d.h) {
			return d, nil
		}
		delete(a.cache, name)
	}

	raw := a.host.FindDataRef(name)
	if raw == 0 {
		return DataRef{}, &errors.NotFoundError{Kind: "dataref", Name: name}
	}
	h, err := handle.Acquire[handle.DataRefTag](a.registry, raw, nil)
	if err != nil {
		return DataRef{}, err
	}
	d := DataRef{
		name:     name,
		h:        h,
		kinds:    a.host.GetDataRefTypes(raw),
		writable: a.host.CanWriteDataRef(raw),
	}
	a.cache[name] = d
	return d, nil
}

// Find is Resolve.
func (a *Access) Find(name string) (DataRef, error) {
	return a.Resolve(name)
}

// MustResolve is Resolve for names the plugin cannot run without.
// It panics on failure, which a lifecycle hook turns into a failed start.
func (a *Access) MustResolve(name string) DataRef {
	d, err := a.Resolve(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Release drops d's handle and its cache entry.
func (a *Access) Release(d DataRef) error {
	if err := handle.Release(a.registry, d.h); err != nil {
		return err
	}
	if cached, ok := a.cache[d.name]; ok && cached.h == d.h {
		delete(a.cache, d.name)
	}
	return nil
}

// IsGood reports whether d is live and the host still backs it (a dataref
// published by a plugin that has since been unloaded is not good).
func (a *Access) IsGood(d DataRef) bool {
	raw, err := handle.Raw(a.registry, d.h)
	if err != nil {
		return false
	}
	return a.host.IsDataRefGood(raw)
}

// CanWrite reports whether d is live and writable.
func (a *Access) CanWrite(d DataRef) bool {
	return handle.IsValid(a.registry, d.h) && d.writable
}

// Kinds returns d's kinds, or an error if d was released.
func (a *Access) Kinds(d DataRef) (entities.ValueKinds, error) {
	if _, err := handle.Raw(a.registry, d.h); err != nil {
		return 0, err
	}
	return d.kinds, nil
}

// readable validates d for a read of kind and returns its raw handle.
func (a *Access) readable(op string, d DataRef, kind entities.ValueKind) (ports.RawHandle, error) {
	raw, err := handle.Raw(a.registry, d.h)
	if err != nil {
		return 0, err
	}
	if err := a.calls.Require(op, callctx.SimOrRender...); err != nil {
		return 0, err
	}
	if !d.kinds.Has(kind) {
		return 0, &errors.TypeMismatchError{Name: d.name, Requested: kind, Supported: d.kinds}
	}
	return raw, nil
}

// writable validates d for a write of kind and returns its raw handle.
func (a *Access) writable(op string, d DataRef, kind entities.ValueKind) (ports.RawHandle, error) {
	raw, err := handle.Raw(a.registry, d.h)
	if err != nil {
		return 0, err
	}
	if err := a.calls.Require(op, callctx.Sim...); err != nil {
		return 0, err
	}
	if !d.kinds.Has(kind) {
		return 0, &errors.TypeMismatchError{Name: d.name, Requested: kind, Supported: d.kinds}
	}
	if !d.writable {
		return 0, &errors.NotWritableError{Name: d.name}
	}
	return raw, nil
}

// Read reads d in its most precise kind. Array kinds are read whole.
func (a *Access) Read(d DataRef) (entities.Value, error) {
	kind := d.kinds.Preferred()
	if _, err := a.readable("dataref.read", d, kind); err != nil {
		return entities.Value{}, err
	}

	switch kind {
	case entities.KindDouble:
		v, err := a.GetDouble(d)
		return entities.DoubleValue(v), err
	case entities.KindFloat:
		v, err := a.GetFloat(d)
		return entities.FloatValue(v), err
	case entities.KindInt:
		v, err := a.GetInt(d)
		return entities.IntValue(v), err
	case entities.KindFloatArray:
		n, _ := a.Len(d)
		v, err := a.GetFloatArray(d, 0, n)
		return entities.FloatArrayValue(v), err
	case entities.KindIntArray:
		n, _ := a.Len(d)
		v, err := a.GetIntArray(d, 0, n)
		return entities.IntArrayValue(v), err
	default:
		n, _ := a.Len(d)
		v, err := a.GetBytes(d, 0, n)
		return entities.BytesValue(v), err
	}
}

// Write writes v to d. Array values are written starting at offset 0.
func (a *Access) Write(d DataRef, v entities.Value) error {
	switch v.Kind {
	case entities.KindInt:
		return a.SetInt(d, v.Int)
	case entities.KindFloat:
		return a.SetFloat(d, v.Float)
	case entities.KindDouble:
		return a.SetDouble(d, v.Double)
	case entities.KindFloatArray:
		return a.SetFloatArray(d, 0, v.Floats)
	case entities.KindIntArray:
		return a.SetIntArray(d, 0, v.Ints)
	case entities.KindBytes:
		return a.SetBytes(d, 0, v.Bytes)
	default:
		return &errors.TypeMismatchError{Name: d.name, Requested: v.Kind, Supported: d.kinds}
	}
}

// GetInt reads an int dataref.
func (a *Access) GetInt(d DataRef) (int32, error) {
	raw, err := a.readable("dataref.get_int", d, entities.KindInt)
	if err != nil {
		return 0, err
	}
	return a.host.GetDatai(raw), nil
}

// SetInt writes an int dataref.
func (a *Access) SetInt(d DataRef, v int32) error {
	raw, err := a.writable("dataref.set_int", d, entities.KindInt)
	if err != nil {
		return err
	}
	a.host.SetDatai(raw, v)
	return nil
}

// GetFloat reads a float dataref.
func (a *Access) GetFloat(d DataRef) (float32, error) {
	raw, err := a.readable("dataref.get_float", d, entities.KindFloat)
	if err != nil {
		return 0, err
	}
	return a.host.GetDataf(raw), nil
}

// SetFloat writes a float dataref.
func (a *Access) SetFloat(d DataRef, v float32) error {
	raw, err := a.writable("dataref.set_float", d, entities.KindFloat)
	if err != nil {
		return err
	}
	a.host.SetDataf(raw, v)
	return nil
}

// GetDouble reads a double dataref.
func (a *Access) GetDouble(d DataRef) (float64, error) {
	raw, err := a.readable("dataref.get_double", d, entities.KindDouble)
	if err != nil {
		return 0, err
	}
	return a.host.GetDatad(raw), nil
}

// SetDouble writes a double dataref.
func (a *Access) SetDouble(d DataRef, v float64) error {
	raw, err := a.writable("dataref.set_double", d, entities.KindDouble)
	if err != nil {
		return err
	}
	a.host.SetDatad(raw, v)
	return nil
}
