// Package config loads the optional plugin configuration file.
//
// The file is YAML, lives next to the plugin binary and is read once at
// start. A missing file is not an error: every field has a default.
package config

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

// FileName is the config file looked for next to the plugin binary.
const FileName = "xplm-sdk.yaml"

// Config is the plugin configuration.
type Config struct {
	// LogLevel is the minimum level sent to the host log.
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	// LogFile, when set, also writes records to a rotating file.
	LogFile       string `yaml:"log_file" json:"log_file,omitempty"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb" json:"log_max_size_mb" validate:"gte=1,lte=1024" jsonschema:"default=10"`
	LogMaxBackups int    `yaml:"log_max_backups" json:"log_max_backups" validate:"gte=0,lte=100" jsonschema:"default=3"`

	// StrictThreads fails host calls made from the wrong thread context.
	// When false they are logged and allowed.
	StrictThreads bool `yaml:"strict_threads" json:"strict_threads" jsonschema:"default=true"`

	ProbeRateHz    float64       `yaml:"probe_rate_hz" json:"probe_rate_hz" validate:"gt=0,lte=1000" jsonschema:"default=60"`
	ProbeBurst     int           `yaml:"probe_burst" json:"probe_burst" validate:"gte=1" jsonschema:"default=8"`
	ProbeCacheTTL  time.Duration `yaml:"probe_cache_ttl" json:"probe_cache_ttl" validate:"gt=0"`
	ProbeCacheSize int           `yaml:"probe_cache_size" json:"probe_cache_size" validate:"gte=1" jsonschema:"default=256"`

	// HandoffCapacity bounds mailboxes created by the session.
	HandoffCapacity int `yaml:"handoff_capacity" json:"handoff_capacity" validate:"gte=1,lte=65536" jsonschema:"default=64"`

	// Settings holds plugin-specific values.
	Settings Settings `yaml:"settings" json:"settings,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel:        "info",
		LogMaxSizeMB:    10,
		LogMaxBackups:   3,
		StrictThreads:   true,
		ProbeRateHz:     60,
		ProbeBurst:      8,
		ProbeCacheTTL:   2 * time.Second,
		ProbeCacheSize:  256,
		HandoffCapacity: 64,
	}
}

var validate = newValidator()

// newValidator reports fields by their YAML key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and validates the file at path. A missing file yields Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if stdErrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return Config{}, &errors.ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints. The first failing field is reported.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ConfigError{
			Field: fe.Field(),
			Err:   fmt.Errorf("failed %q (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// Level returns LogLevel as a slog level.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
