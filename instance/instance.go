// Package instance manages 3D objects, their instances, legacy draw
// callbacks and the camera override.
//
// Instances are updated from the sim thread (flight loops, command
// handlers). Draw and camera callbacks run in the render context, where
// datarefs may be read but not written.
package instance

import (
	"log/slog"

	"github.com/skyframe-dev/xplm-sdk/dispatch"
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
	"github.com/skyframe-dev/xplm-sdk/internal/hostversion"
)

// Host is the slice of the host API the manager needs.
type Host interface {
	ports.Instances
	ports.Display
	ports.Camera
}

// ObjectRef identifies a loaded object.
type ObjectRef = handle.Handle[handle.ObjectTag]

// InstanceRef identifies one instance of an object.
type InstanceRef = handle.Handle[handle.InstanceTag]

type objectState struct {
	path      string
	instances map[InstanceRef]struct{}
}

type instanceState struct {
	obj      ObjectRef
	datarefs []string
	pos      entities.DrawInfo
}

// Manager owns the plugin's objects, instances, draw callbacks and camera
// override.
type Manager struct {
	host      Host
	registry  *handle.Registry
	calls     *callctx.Tracker
	table     *dispatch.Table
	gate      *hostversion.Gate
	logger    *slog.Logger
	objects   map[ObjectRef]*objectState
	instances map[InstanceRef]*instanceState
	camera    CameraID
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithGate rejects instancing on hosts that predate it.
func WithGate(gate *hostversion.Gate) Option {
	return func(m *Manager) {
		m.gate = gate
	}
}

// New creates a Manager.
func New(host Host, registry *handle.Registry, calls *callctx.Tracker, table *dispatch.Table, opts ...Option) *Manager {
	m := &Manager{
		host:      host,
		registry:  registry,
		calls:     calls,
		table:     table,
		logger:    slog.Default(),
		objects:   make(map[ObjectRef]*objectState),
		instances: make(map[InstanceRef]*instanceState),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadObject loads an object file by path, relative to the host's root.
func (m *Manager) LoadObject(path string) (ObjectRef, error) {
	if err := m.calls.Require("instance.load_object", callctx.Sim...); err != nil {
		return ObjectRef{}, err
	}
	raw := m.host.LoadObject(path)
	if raw == 0 {
		return ObjectRef{}, &errors.AcquisitionFailedError{Kind: "object", Target: path}
	}

	state := &objectState{path: path, instances: make(map[InstanceRef]struct{})}
	var ref ObjectRef
	ref, err := handle.Acquire[handle.ObjectTag](m.registry, raw, func(raw ports.RawHandle) {
		// The host requires instances to go before their object.
		for inst := range state.instances {
			_ = handle.Release(m.registry, inst)
		}
		m.host.UnloadObject(raw)
		delete(m.objects, ref)
	})
	if err != nil {
		m.host.UnloadObject(raw)
		return ObjectRef{}, err
	}
	m.objects[ref] = state
	return ref, nil
}

// UnloadObject unloads obj, destroying any instances still using it.
func (m *Manager) UnloadObject(obj ObjectRef) error {
	if err := m.calls.Require("instance.unload_object", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(m.registry, obj)
}

// Create makes an instance of obj whose animation is driven by the named
// datarefs, in order. It needs host SDK 3.0.0 or later.
func (m *Manager) Create(obj ObjectRef, datarefs []string) (InstanceRef, error) {
	objRaw, err := handle.Raw(m.registry, obj)
	if err != nil {
		return InstanceRef{}, err
	}
	if err := m.calls.Require("instance.create", callctx.Sim...); err != nil {
		return InstanceRef{}, err
	}
	if err := m.gate.Require("instance", hostversion.Instancing); err != nil {
		return InstanceRef{}, err
	}

	names := append([]string(nil), datarefs...)
	raw := m.host.CreateInstance(objRaw, names)
	if raw == 0 {
		return InstanceRef{}, &errors.AcquisitionFailedError{Kind: "instance", Target: m.objects[obj].path}
	}

	owner := m.objects[obj]
	var ref InstanceRef
	ref, err = handle.Acquire[handle.InstanceTag](m.registry, raw, func(raw ports.RawHandle) {
		m.host.DestroyInstance(raw)
		delete(m.instances, ref)
		delete(owner.instances, ref)
	})
	if err != nil {
		m.host.DestroyInstance(raw)
		return InstanceRef{}, err
	}
	m.instances[ref] = &instanceState{obj: obj, datarefs: names}
	owner.instances[ref] = struct{}{}
	return ref, nil
}

func (m *Manager) instance(op string, inst InstanceRef, values []float32) (ports.RawHandle, *instanceState, error) {
	raw, err := handle.Raw(m.registry, inst)
	if err != nil {
		return 0, nil, err
	}
	if err := m.calls.Require(op, callctx.Sim...); err != nil {
		return 0, nil, err
	}
	state := m.instances[inst]
	if len(values) != len(state.datarefs) {
		return 0, nil, &errors.RangeError{Target: "instance values", Count: len(values), Length: len(state.datarefs)}
	}
	return raw, state, nil
}

// SetPosition moves inst and sets one value per bound dataref.
func (m *Manager) SetPosition(inst InstanceRef, pos entities.DrawInfo, values []float32) error {
	raw, state, err := m.instance("instance.set_position", inst, values)
	if err != nil {
		return err
	}
	state.pos = pos
	m.host.InstanceSetPosition(raw, pos, values)
	return nil
}

// Update sets one value per bound dataref, keeping the last position.
func (m *Manager) Update(inst InstanceRef, values []float32) error {
	raw, state, err := m.instance("instance.update", inst, values)
	if err != nil {
		return err
	}
	m.host.InstanceSetPosition(raw, state.pos, values)
	return nil
}

// Datarefs returns the dataref names inst was created with.
func (m *Manager) Datarefs(inst InstanceRef) ([]string, error) {
	if _, err := handle.Raw(m.registry, inst); err != nil {
		return nil, err
	}
	return append([]string(nil), m.instances[inst].datarefs...), nil
}

// Destroy destroys inst. Every later use of it fails with UseAfterRelease.
func (m *Manager) Destroy(inst InstanceRef) error {
	if err := m.calls.Require("instance.destroy", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(m.registry, inst)
}
