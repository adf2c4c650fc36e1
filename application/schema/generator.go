// Package schema generates JSON schemas for the config file and for plugin
// settings structs, so editors can validate them.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/skyframe-dev/xplm-sdk/application/config"
)

// Option configures schema generation.
type Option func(*jsonschema.Reflector, *jsonschema.Schema)

// WithFieldNameTag names properties after the given struct tag instead of
// the json tag.
func WithFieldNameTag(tag string) Option {
	return func(r *jsonschema.Reflector, _ *jsonschema.Schema) {
		r.FieldNameTag = tag
	}
}

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(_ *jsonschema.Reflector, s *jsonschema.Schema) {
		if s != nil {
			s.Title = title
		}
	}
}

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Struct definitions are expanded inline.
func GenerateSchema(v any, opts ...Option) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	for _, opt := range opts {
		opt(&reflector, nil)
	}
	schema := reflector.Reflect(v)
	for _, opt := range opts {
		opt(&reflector, schema)
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}

// ConfigSchema returns the schema of the config file, keyed by YAML names.
func ConfigSchema() ([]byte, error) {
	return GenerateSchema(config.Config{},
		WithFieldNameTag("yaml"),
		WithTitle("xplm-sdk plugin configuration"),
	)
}
