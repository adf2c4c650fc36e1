package hostversion

import (
	"errors"
	"testing"

	sdkerrors "github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSDK(t *testing.T) {
	tests := []struct {
		sdk  int
		want string
	}{
		{303, "3.0.3"},
		{411, "4.1.1"},
		{210, "2.1.0"},
		{4, "4.0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromSDK(tt.sdk).String())
	}
}

func TestGate(t *testing.T) {
	old := New(210)
	assert.True(t, old.Supports(FlightLoops))
	assert.False(t, old.Supports(Instancing))

	err := old.Require("instance", Instancing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdkerrors.ErrAcquisitionFailed))
	assert.Contains(t, err.Error(), "2.1.0")

	assert.NoError(t, New(303).Require("instance", Instancing))

	var ungated *Gate
	assert.True(t, ungated.Supports(Instancing))
	assert.Nil(t, ungated.Host())
}
