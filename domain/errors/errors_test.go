package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquisitionFailedError(t *testing.T) {
	err := &AcquisitionFailedError{Kind: "object", Target: "lib/airport/beacon.obj"}

	assert.Equal(t, `acquire object "lib/airport/beacon.obj": host returned a null handle`, err.Error())
	assert.True(t, errors.Is(err, ErrAcquisitionFailed))
	assert.False(t, errors.Is(err, ErrNotFound))

	withReason := &AcquisitionFailedError{Kind: "instance", Reason: "instancing needs XPLM 3.0.0"}
	assert.Equal(t, "acquire instance: instancing needs XPLM 3.0.0", withReason.Error())
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Kind: "dataref", Name: "sim/no/such/ref"}

	assert.Equal(t, `dataref "sim/no/such/ref" not found`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "sim/no/such/ref", nf.Name)
}

func TestTypeMismatchError(t *testing.T) {
	err := &TypeMismatchError{
		Name:      "sim/time/zulu_time_sec",
		Requested: entities.KindInt,
		Supported: entities.KindsOf(entities.KindFloat, entities.KindDouble),
	}

	assert.Equal(t, `dataref "sim/time/zulu_time_sec": int access on a float|double dataref`, err.Error())
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestRangeError(t *testing.T) {
	err := &RangeError{Target: "sim/flightmodel/engine/ENGN_thro", Offset: 6, Count: 4, Length: 8}

	assert.Equal(t, "sim/flightmodel/engine/ENGN_thro: range [6,+4) outside length 8", err.Error())
	assert.True(t, errors.Is(err, ErrRange))
}

func TestUseAfterReleaseError(t *testing.T) {
	err := &UseAfterReleaseError{Kind: "menu", Index: 3, Generation: 2}

	assert.Equal(t, "menu handle #3 (gen 2) used after release", err.Error())
	assert.True(t, errors.Is(err, ErrUseAfterRelease))

	wrapped := fmt.Errorf("add item: %w", err)
	assert.True(t, errors.Is(wrapped, ErrUseAfterRelease))
}

func TestAlreadyControlledError(t *testing.T) {
	assert.Equal(t, "camera is already controlled by this plugin", (&AlreadyControlledError{ByThisPlugin: true}).Error())
	assert.Equal(t, "camera is already controlled by another plugin", (&AlreadyControlledError{}).Error())
	assert.True(t, errors.Is(&AlreadyControlledError{}, ErrAlreadyControlled))
}

func TestNoDataError(t *testing.T) {
	assert.Equal(t, "probe: no terrain at position", (&NoDataError{Query: "probe", Status: entities.ProbeMissed}).Error())
	assert.Equal(t, "probe: host reported an error", (&NoDataError{Query: "probe", Status: entities.ProbeError}).Error())
	assert.True(t, errors.Is(&NoDataError{Query: "probe"}, ErrNoData))
}

func TestThreadAffinityError(t *testing.T) {
	err := &ThreadAffinityError{
		Operation: "dataref.write",
		Current:   entities.ThreadRender,
		Allowed:   []entities.Thread{entities.ThreadSim},
	}

	assert.Equal(t, "dataref.write called on render thread context, allowed: [sim]", err.Error())
	assert.True(t, errors.Is(err, ErrThreadAffinity))
}

func TestLifecycleError(t *testing.T) {
	err := &LifecycleError{Operation: "enable", State: entities.StateUnloaded}

	assert.Equal(t, "enable not allowed in state unloaded", err.Error())
	assert.True(t, errors.Is(err, ErrLifecycle))
}

func TestConfigError(t *testing.T) {
	baseErr := fmt.Errorf("invalid format")
	err := &ConfigError{
		Field: "log_level",
		Err:   baseErr,
	}

	assert.Equal(t, "config validation failed for field 'log_level': invalid format", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	noField := &ConfigError{Err: baseErr}
	assert.Equal(t, "config validation failed: invalid format", noField.Error())
}

func TestPanicError(t *testing.T) {
	cause := fmt.Errorf("nil map write")
	err := &PanicError{Value: cause, Callback: "flightloop"}

	assert.Equal(t, "panic in flightloop: nil map write", err.Error())
	assert.True(t, errors.Is(err, cause))

	plain := &PanicError{Value: "boom", Callback: "draw"}
	assert.Nil(t, plain.Unwrap())
}

func TestToErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType entities.ErrorType
		wantCode string
	}{
		{"nil", nil, "", ""},
		{"generic", fmt.Errorf("boom"), "internal", ""},
		{"acquisition", &AcquisitionFailedError{Kind: "menu"}, "acquisition", "menu"},
		{"not found", &NotFoundError{Kind: "command", Name: "x"}, "not_found", "command"},
		{"type mismatch", &TypeMismatchError{Requested: entities.KindBytes}, "type_mismatch", "bytes"},
		{"wrapped use after release", fmt.Errorf("ctx: %w", &UseAfterReleaseError{Kind: "instance"}), "use_after_release", "instance"},
		{"lifecycle", &LifecycleError{Operation: "stop", State: entities.StateEnabled}, "lifecycle", "enabled"},
		{"panic", &PanicError{Value: "x", Callback: "menu"}, "panic", "menu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			if tt.err == nil {
				assert.Nil(t, detail)
				return
			}
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
			assert.Equal(t, tt.wantCode, detail.Code)
		})
	}
}

func TestToErrorDetail_PassesThroughDetail(t *testing.T) {
	detail := entities.NewErrorDetail(entities.ErrorConfig, "bad").WithCode("log_level")
	assert.Same(t, detail, ToErrorDetail(fmt.Errorf("load: %w", detail)))
}
