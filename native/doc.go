// Package native connects a registered plugin to the real host.
//
// It exports the five entry points the host resolves by name, implements
// ports.Host on top of the XPLM C API, and routes every host callback
// through C trampolines into the session's callback sink.
//
// The package is only compiled with the xplm build tag. A plugin's main
// package imports it for its side effects and registers itself:
//
//	package main
//
//	import (
//		"github.com/skyframe-dev/xplm-sdk/application/plugin"
//		_ "github.com/skyframe-dev/xplm-sdk/native"
//	)
//
//	func init() { plugin.Register(beacon) }
//
//	func main() {}
//
// Build it as a shared library with the SDK headers on the include path:
//
//	export CGO_CFLAGS="-I$XPLANE_SDK/CHeaders/XPLM"
//	go build -tags xplm -buildmode=c-shared -o lin.xpl .
//
// On macOS add CGO_LDFLAGS="-F$XPLANE_SDK/Libraries/Mac", on Windows
// CGO_LDFLAGS="-L$XPLANE_SDK/Libraries/Win".
//
// On start the configuration is read from xplm-sdk.yaml in the plugin
// folder; a missing file means defaults.
package native
