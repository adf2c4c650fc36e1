package entities

import "encoding/json"

// Manifest describes a plugin for tooling: identity, the commands it
// defines and the JSON Schema of its settings section.
type Manifest struct {
	Name           string            `json:"name" yaml:"name"`
	Signature      string            `json:"signature" yaml:"signature"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	SDKVersion     string            `json:"sdk_version" yaml:"sdk_version"`
	MinHostSDK     int               `json:"min_host_sdk" yaml:"min_host_sdk"`
	SettingsSchema json.RawMessage   `json:"settings_schema,omitempty" yaml:"-"`
	Commands       []CommandManifest `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// CommandManifest describes one command a plugin creates.
type CommandManifest struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Menu        string `json:"menu,omitempty" yaml:"menu,omitempty"`
}
