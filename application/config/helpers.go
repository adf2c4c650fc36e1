package config

import (
	"fmt"

	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

// Settings holds plugin-specific values from the settings section of the
// config file.
type Settings = map[string]any

// GetString extracts a string from settings, returning (value, found).
func GetString(settings Settings, key string) (string, bool) {
	v, ok := settings[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt extracts an int from settings, handling the integer and float
// types YAML and JSON decoders produce.
func GetInt(settings Settings, key string) (int, bool) {
	v, ok := settings[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetFloat extracts a float64 from settings.
func GetFloat(settings Settings, key string) (float64, bool) {
	v, ok := settings[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetBool extracts a bool from settings, returning (value, found).
func GetBool(settings Settings, key string) (bool, bool) {
	v, ok := settings[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringSlice extracts a []string from settings, returning (value, found).
func GetStringSlice(settings Settings, key string) ([]string, bool) {
	v, ok := settings[key]
	if !ok {
		return nil, false
	}
	// Sequences decode as []any.
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		result = append(result, s)
	}
	return result, true
}

// MustGetString extracts a required string or returns a ConfigError.
func MustGetString(settings Settings, key string) (string, error) {
	s, ok := GetString(settings, key)
	if !ok {
		return "", &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required string setting '%s' is missing or not a string", key),
		}
	}
	return s, nil
}

// MustGetInt extracts a required int or returns a ConfigError.
func MustGetInt(settings Settings, key string) (int, error) {
	i, ok := GetInt(settings, key)
	if !ok {
		return 0, &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required int setting '%s' is missing or not a number", key),
		}
	}
	return i, nil
}

// GetStringDefault extracts a string or returns defaultValue.
func GetStringDefault(settings Settings, key, defaultValue string) string {
	if s, ok := GetString(settings, key); ok {
		return s
	}
	return defaultValue
}

// GetIntDefault extracts an int or returns defaultValue.
func GetIntDefault(settings Settings, key string, defaultValue int) int {
	if i, ok := GetInt(settings, key); ok {
		return i
	}
	return defaultValue
}

// GetFloatDefault extracts a float64 or returns defaultValue.
func GetFloatDefault(settings Settings, key string, defaultValue float64) float64 {
	if f, ok := GetFloat(settings, key); ok {
		return f
	}
	return defaultValue
}

// GetBoolDefault extracts a bool or returns defaultValue.
func GetBoolDefault(settings Settings, key string, defaultValue bool) bool {
	if b, ok := GetBool(settings, key); ok {
		return b
	}
	return defaultValue
}
