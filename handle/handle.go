// Package handle tracks every opaque host handle the plugin holds.
//
// A Handle[T] is an arena index plus a generation. The registry keeps the raw
// host token and the host release function for each live slot; releasing a
// slot bumps its generation so every copy of the old handle stops matching.
// Handles are tagged by kind at the type level: a Handle[MenuTag] cannot be
// passed where a Handle[DataRefTag] is expected, and the two cannot be
// converted into each other.
//
// The registry is not safe for concurrent use. Every call comes from a host
// thread context, which the host serialises.
package handle

import (
	"fmt"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/domain/ports"
)

// Tag names a handle kind.
type Tag interface {
	Kind() string
}

type (
	DataRefTag        struct{}
	AccessorTag       struct{}
	CommandTag        struct{}
	CommandHandlerTag struct{}
	MenuTag           struct{}
	FlightLoopTag     struct{}
	ObjectTag         struct{}
	InstanceTag       struct{}
	DrawCallbackTag   struct{}
	CameraTag         struct{}
	ProbeTag          struct{}
)

func (DataRefTag) Kind() string        { return "dataref" }
func (AccessorTag) Kind() string       { return "accessor" }
func (CommandTag) Kind() string        { return "command" }
func (CommandHandlerTag) Kind() string { return "command handler" }
func (MenuTag) Kind() string           { return "menu" }
func (FlightLoopTag) Kind() string     { return "flight loop" }
func (ObjectTag) Kind() string         { return "object" }
func (InstanceTag) Kind() string       { return "instance" }
func (DrawCallbackTag) Kind() string   { return "draw callback" }
func (CameraTag) Kind() string         { return "camera override" }
func (ProbeTag) Kind() string          { return "probe" }

// Handle is a typed reference to a registry slot.
// The zero Handle is never valid.
type Handle[T Tag] struct {
	_     [0]T
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool { return h.index == 0 }

// Kind returns the handle kind name.
func (h Handle[T]) Kind() string {
	var tag T
	return tag.Kind()
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("%s#%d.%d", h.Kind(), h.index, h.gen)
}

// ReleaseFunc destroys the host resource behind a raw handle.
// A nil ReleaseFunc means the host has nothing to destroy (found datarefs,
// commands, the plugins menu).
type ReleaseFunc func(raw ports.RawHandle)

func staleError[T Tag](h Handle[T]) error {
	return &errors.UseAfterReleaseError{Kind: h.Kind(), Index: h.index, Generation: h.gen}
}

// Acquire registers raw in the registry's current scope.
// It fails with AcquisitionFailed when raw is the host's null sentinel.
func Acquire[T Tag](r *Registry, raw ports.RawHandle, release ReleaseFunc) (Handle[T], error) {
	var h Handle[T]
	if raw == 0 {
		return h, &errors.AcquisitionFailedError{Kind: h.Kind()}
	}
	h.index, h.gen = r.insert(h.Kind(), raw, release)
	return h, nil
}

// Raw returns the host token behind h.
func Raw[T Tag](r *Registry, h Handle[T]) (ports.RawHandle, error) {
	s := r.lookup(h.Kind(), h.index, h.gen)
	if s == nil {
		return 0, staleError(h)
	}
	return s.raw, nil
}

// IsValid reports whether h still refers to a live slot.
func IsValid[T Tag](r *Registry, h Handle[T]) bool {
	return r.lookup(h.Kind(), h.index, h.gen) != nil
}

// Release invalidates h and then calls its release function exactly once.
func Release[T Tag](r *Registry, h Handle[T]) error {
	s := r.lookup(h.Kind(), h.index, h.gen)
	if s == nil {
		return staleError(h)
	}
	r.free(h.index, true)
	return nil
}

// Forget invalidates h without calling its release function.
// Use it when the host has already destroyed the resource on its own.
func Forget[T Tag](r *Registry, h Handle[T]) error {
	if r.lookup(h.Kind(), h.index, h.gen) == nil {
		return staleError(h)
	}
	r.free(h.index, false)
	return nil
}

// ScopeOf returns the scope h was acquired in.
func ScopeOf[T Tag](r *Registry, h Handle[T]) (entities.Scope, error) {
	s := r.lookup(h.Kind(), h.index, h.gen)
	if s == nil {
		return entities.ScopeNone, staleError(h)
	}
	return s.scope, nil
}
