package instance

import (
	"context"
	"fmt"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// DrawID identifies a registered draw callback.
type DrawID = handle.Handle[handle.DrawCallbackTag]

// CameraID identifies the active camera override.
type CameraID = handle.Handle[handle.CameraTag]

// DrawFunc runs in the render context. Returning false from a
// before-callback suppresses the host's own drawing of the phase.
type DrawFunc func(ctx context.Context, phase entities.DrawPhase, before bool) bool

// CameraFunc runs in the render context once per frame while the plugin
// controls the camera. It may change pos and returns whether it keeps
// control. pos is nil when losingControl is set.
type CameraFunc func(ctx context.Context, pos *entities.CameraPosition, losingControl bool) bool

// RegisterDraw adds a draw callback for phase, before or after the host
// draws it.
func (m *Manager) RegisterDraw(phase entities.DrawPhase, before bool, cb DrawFunc) (DrawID, error) {
	if err := m.calls.Require("instance.register_draw", callctx.Sim...); err != nil {
		return DrawID{}, err
	}

	label := fmt.Sprintf("draw:%d", phase)
	refcon := m.table.AddDraw(label, func(ctx context.Context, phase entities.DrawPhase, before bool) bool {
		return cb(ctx, phase, before)
	})
	if !m.host.RegisterDrawCallback(phase, before, refcon) {
		m.table.Remove(refcon)
		return DrawID{}, &errors.AcquisitionFailedError{Kind: "draw callback", Target: label, Reason: "host refused the phase"}
	}

	// Draw callbacks have no host object of their own; the refcon stands in.
	id, err := handle.Acquire[handle.DrawCallbackTag](m.registry, ports.RawHandle(refcon), func(ports.RawHandle) {
		m.host.UnregisterDrawCallback(phase, before, refcon)
		m.table.Remove(refcon)
	})
	if err != nil {
		m.host.UnregisterDrawCallback(phase, before, refcon)
		m.table.Remove(refcon)
		return DrawID{}, err
	}
	return id, nil
}

// UnregisterDraw removes a draw callback.
func (m *Manager) UnregisterDraw(id DrawID) error {
	if err := m.calls.Require("instance.unregister_draw", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(m.registry, id)
}

// TakeCameraControl installs cb as the camera override. It fails with
// AlreadyControlled while this or another plugin holds the camera.
func (m *Manager) TakeCameraControl(duration entities.CameraDuration, cb CameraFunc) error {
	if err := m.calls.Require("camera.take", callctx.Sim...); err != nil {
		return err
	}
	if handle.IsValid(m.registry, m.camera) {
		return &errors.AlreadyControlledError{ByThisPlugin: true}
	}
	if controlled, _ := m.host.IsCameraBeingControlled(); controlled {
		return &errors.AlreadyControlledError{ByThisPlugin: false}
	}

	var id CameraID
	var refcon ports.Refcon
	refcon = m.table.AddCamera("camera", func(ctx context.Context, pos *entities.CameraPosition, losing bool) (keep bool) {
		defer func() {
			// The host has already dropped us; only forget the override.
			if losing || !keep {
				m.dropCamera(id, refcon)
			}
		}()
		return cb(ctx, pos, losing)
	})
	m.host.ControlCamera(duration, refcon)

	id, err := handle.Acquire[handle.CameraTag](m.registry, ports.RawHandle(refcon), func(ports.RawHandle) {
		m.host.DontControlCamera()
		m.table.Remove(refcon)
	})
	if err != nil {
		m.host.DontControlCamera()
		m.table.Remove(refcon)
		return err
	}
	m.camera = id
	m.logger.Debug("camera: control taken", "duration", int(duration))
	return nil
}

func (m *Manager) dropCamera(id CameraID, refcon ports.Refcon) {
	if handle.IsValid(m.registry, id) {
		_ = handle.Forget(m.registry, id)
	}
	m.table.Remove(refcon)
	m.logger.Debug("camera: control lost")
}

// ReleaseCameraControl gives the camera back to the host.
func (m *Manager) ReleaseCameraControl() error {
	if err := m.calls.Require("camera.release", callctx.Sim...); err != nil {
		return err
	}
	return handle.Release(m.registry, m.camera)
}

// IsControlled reports whether this plugin holds the camera.
func (m *Manager) IsControlled() bool {
	return handle.IsValid(m.registry, m.camera)
}

// CameraPosition returns the camera position the host last used.
func (m *Manager) CameraPosition() (entities.CameraPosition, error) {
	if err := m.calls.Require("camera.read", callctx.SimOrRender...); err != nil {
		return entities.CameraPosition{}, err
	}
	return m.host.ReadCameraPosition(), nil
}
