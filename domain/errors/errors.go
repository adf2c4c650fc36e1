// Package errors provides the binding layer's error taxonomy.
// All error types support error unwrapping via errors.As() and errors.Is();
// each type also matches its package sentinel so callers can write
// errors.Is(err, errors.ErrUseAfterRelease).
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinels matched by the typed errors below.
var (
	ErrAcquisitionFailed = stdErrors.New("acquisition failed")
	ErrNotFound          = stdErrors.New("not found")
	ErrTypeMismatch      = stdErrors.New("type mismatch")
	ErrNotWritable       = stdErrors.New("not writable")
	ErrRange             = stdErrors.New("out of range")
	ErrUseAfterRelease   = stdErrors.New("use after release")
	ErrAlreadyControlled = stdErrors.New("already controlled")
	ErrNoData            = stdErrors.New("no data")
	ErrThreadAffinity    = stdErrors.New("wrong thread context")
	ErrLifecycle         = stdErrors.New("invalid lifecycle state")
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    entities.ErrorInternal,
	}
}

// AcquisitionFailedError is returned when the host hands back a null handle.
type AcquisitionFailedError struct {
	Kind   string // handle kind, e.g. "menu"
	Target string // what was requested, e.g. a name or path
	Reason string
}

func (e *AcquisitionFailedError) Error() string {
	msg := fmt.Sprintf("acquire %s", e.Kind)
	if e.Target != "" {
		msg += fmt.Sprintf(" %q", e.Target)
	}
	if e.Reason != "" {
		return msg + ": " + e.Reason
	}
	return msg + ": host returned a null handle"
}

func (e *AcquisitionFailedError) Is(target error) bool { return target == ErrAcquisitionFailed }

// ToErrorDetail implements DetailedError.
func (e *AcquisitionFailedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorAcquisition, Code: e.Kind}
}

// NotFoundError is returned when a named host object does not exist.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ToErrorDetail implements DetailedError.
func (e *NotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorNotFound, Code: e.Kind}
}

// TypeMismatchError is returned when a read or write does not match a
// dataref's kinds.
type TypeMismatchError struct {
	Name      string
	Requested entities.ValueKind
	Supported entities.ValueKinds
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("dataref %q: %s access on a %s dataref", e.Name, e.Requested, e.Supported)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ToErrorDetail implements DetailedError.
func (e *TypeMismatchError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorTypeMismatch, Code: e.Requested.String()}
}

// NotWritableError is returned for writes to host read-only datarefs.
type NotWritableError struct {
	Name string
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("dataref %q is read-only", e.Name)
}

func (e *NotWritableError) Is(target error) bool { return target == ErrNotWritable }

// ToErrorDetail implements DetailedError.
func (e *NotWritableError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorNotWritable}
}

// RangeError is returned when an offset/count pair or a value count does not
// fit the target.
type RangeError struct {
	Target string
	Offset int
	Count  int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: range [%d,+%d) outside length %d", e.Target, e.Offset, e.Count, e.Length)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// ToErrorDetail implements DetailedError.
func (e *RangeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorRange}
}

// UseAfterReleaseError is returned when a handle is used or released after
// it was released (explicitly or by a lifecycle scope).
type UseAfterReleaseError struct {
	Kind       string
	Index      uint32
	Generation uint32
}

func (e *UseAfterReleaseError) Error() string {
	return fmt.Sprintf("%s handle #%d (gen %d) used after release", e.Kind, e.Index, e.Generation)
}

func (e *UseAfterReleaseError) Is(target error) bool { return target == ErrUseAfterRelease }

// ToErrorDetail implements DetailedError.
func (e *UseAfterReleaseError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorUseAfterRelease, Code: e.Kind}
}

// AlreadyControlledError is returned when a camera override is already active.
type AlreadyControlledError struct {
	// ByThisPlugin is false when another plugin holds the camera.
	ByThisPlugin bool
}

func (e *AlreadyControlledError) Error() string {
	if e.ByThisPlugin {
		return "camera is already controlled by this plugin"
	}
	return "camera is already controlled by another plugin"
}

func (e *AlreadyControlledError) Is(target error) bool { return target == ErrAlreadyControlled }

// ToErrorDetail implements DetailedError.
func (e *AlreadyControlledError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorAlreadyControlled}
}

// NoDataError is returned when a scenery query has no answer.
type NoDataError struct {
	Query  string
	Status entities.ProbeStatus
}

func (e *NoDataError) Error() string {
	switch e.Status {
	case entities.ProbeError:
		return fmt.Sprintf("%s: host reported an error", e.Query)
	case entities.ProbeMissed:
		return fmt.Sprintf("%s: no terrain at position", e.Query)
	default:
		return fmt.Sprintf("%s: no data", e.Query)
	}
}

func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// ToErrorDetail implements DetailedError.
func (e *NoDataError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorNoData, Code: e.Query}
}

// ThreadAffinityError is returned when an operation is attempted outside the
// host thread context it is valid on.
type ThreadAffinityError struct {
	Operation string
	Current   entities.Thread
	Allowed   []entities.Thread
}

func (e *ThreadAffinityError) Error() string {
	return fmt.Sprintf("%s called on %s thread context, allowed: %v", e.Operation, e.Current, e.Allowed)
}

func (e *ThreadAffinityError) Is(target error) bool { return target == ErrThreadAffinity }

// ToErrorDetail implements DetailedError.
func (e *ThreadAffinityError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorThread, Code: e.Operation}
}

// LifecycleError is returned for transitions or operations the current
// lifecycle state does not allow.
type LifecycleError struct {
	Operation string
	State     entities.LifecycleState
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Operation, e.State)
}

func (e *LifecycleError) Is(target error) bool { return target == ErrLifecycle }

// ToErrorDetail implements DetailedError.
func (e *LifecycleError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorLifecycle, Code: e.State.String()}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorConfig, Code: e.Field}
}

// PanicError carries a value recovered at a callback edge.
type PanicError struct {
	Value    any
	Callback string
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Callback, e.Value)
}

// Unwrap exposes a panic value that was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorPanic, Code: e.Callback, Stack: e.Stack}
}
