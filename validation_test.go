package sdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/skyframe-dev/xplm-sdk"
	"github.com/skyframe-dev/xplm-sdk/application/config"
	sdkerrors "github.com/skyframe-dev/xplm-sdk/domain/errors"
)

type beaconSettings struct {
	BlinkHz   float64  `json:"blink_hz" validate:"required,gt=0,lte=10"`
	Lights    []string `json:"lights" validate:"min=1,dive,required"`
	Announce  bool     `json:"announce"`
	MaxEngine int      `json:"max_engine" validate:"min=0,max=8"`
}

func TestValidateSettings(t *testing.T) {
	var target beaconSettings
	err := sdk.ValidateSettings(config.Settings{
		"blink_hz":   1.5,
		"lights":     []any{"beacon", "strobe"},
		"announce":   true,
		"max_engine": 2,
	}, &target)
	require.NoError(t, err)

	assert.Equal(t, beaconSettings{
		BlinkHz:   1.5,
		Lights:    []string{"beacon", "strobe"},
		Announce:  true,
		MaxEngine: 2,
	}, target)
}

func TestValidateSettingsErrors(t *testing.T) {
	tests := []struct {
		name      string
		settings  config.Settings
		wantField string
	}{
		{
			name:      "missing required",
			settings:  config.Settings{"lights": []any{"beacon"}},
			wantField: "BlinkHz",
		},
		{
			name:      "out of range",
			settings:  config.Settings{"blink_hz": 40, "lights": []any{"beacon"}},
			wantField: "BlinkHz",
		},
		{
			name:      "empty list",
			settings:  config.Settings{"blink_hz": 1, "lights": []any{}},
			wantField: "Lights",
		},
		{
			name:     "wrong type",
			settings: config.Settings{"blink_hz": "fast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target beaconSettings
			err := sdk.ValidateSettings(tt.settings, &target)
			require.Error(t, err)

			var cfgErr *sdkerrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestValidateInfo(t *testing.T) {
	assert.NoError(t, sdk.ValidateInfo(beacon))

	tests := []struct {
		name string
		info sdk.PluginInfo
	}{
		{name: "missing name", info: sdk.PluginInfo{Signature: "com.example.x"}},
		{name: "missing signature", info: sdk.PluginInfo{Name: "X"}},
		{name: "signature with space", info: sdk.PluginInfo{Name: "X", Signature: "com example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, sdk.ValidateInfo(tt.info))
		})
	}
}
