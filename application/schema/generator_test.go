package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func properties(t *testing.T, raw []byte) map[string]map[string]any {
	t.Helper()
	var decoded struct {
		Title      string                    `json:"title"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded.Properties
}

func TestGenerateSchema_SettingsStruct(t *testing.T) {
	type BeaconSettings struct {
		Object   string   `json:"object"`
		Rotation float64  `json:"rotation_dps" jsonschema:"default=90"`
		Colors   []string `json:"colors,omitempty"`
	}

	raw, err := GenerateSchema(BeaconSettings{})
	require.NoError(t, err)

	props := properties(t, raw)
	require.Contains(t, props, "object")
	require.Contains(t, props, "rotation_dps")
	assert.Equal(t, "number", props["rotation_dps"]["type"])
	assert.Equal(t, 90.0, props["rotation_dps"]["default"])
	assert.Equal(t, "array", props["colors"]["type"])
}

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type Window struct {
		Left  int `json:"left"`
		Right int `json:"right"`
	}
	type Settings struct {
		Window  Window `json:"window"`
		Visible bool   `json:"visible"`
	}

	raw, err := GenerateSchema(Settings{}, WithTitle("window settings"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"left"`)
	assert.Contains(t, string(raw), `"title": "window settings"`)
}

func TestConfigSchema(t *testing.T) {
	raw, err := ConfigSchema()
	require.NoError(t, err)

	props := properties(t, raw)
	for _, key := range []string{"log_level", "log_file", "strict_threads", "probe_rate_hz", "handoff_capacity", "settings"} {
		assert.Contains(t, props, key)
	}
	assert.Equal(t, []any{"debug", "info", "warn", "error"}, props["log_level"]["enum"])
	assert.Equal(t, true, props["strict_threads"]["default"])
}
