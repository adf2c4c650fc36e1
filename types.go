package sdk

import (
	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

const (
	// Version of the SDK.
	Version = "0.3.0"
	// MinHostSDK is the oldest host API version the SDK runs on. Features
	// newer than this are checked when they are used.
	MinHostSDK = 210
)

// Common types, re-exported so plugins can import a single package.
type (
	PluginInfo     = entities.PluginInfo
	Message        = entities.Message
	Interval       = entities.Interval
	Tick           = entities.Tick
	Value          = entities.Value
	CommandPhase   = entities.CommandPhase
	Disposition    = entities.Disposition
	DrawPhase      = entities.DrawPhase
	DrawInfo       = entities.DrawInfo
	CameraPosition = entities.CameraPosition
	LocalPoint     = entities.LocalPoint
	WorldPoint     = entities.WorldPoint
	NavEntry       = entities.NavEntry
	NavFilter      = entities.NavFilter
	ErrorDetail    = entities.ErrorDetail
)

// Interval constructors.
var (
	Seconds = entities.Seconds
	Frames  = entities.Frames
)

// ToErrorDetail converts a Go error to its structured ErrorDetail.
func ToErrorDetail(err error) *ErrorDetail {
	return errors.ToErrorDetail(err)
}
