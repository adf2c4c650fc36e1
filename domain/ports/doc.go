// Package ports defines the boundary between the binding layer and the host.
//
// Host is the raw, untyped API surface the plugin calls: every handle is an
// opaque RawHandle and every callback registration carries only a Refcon
// token. CallbackSink is the other direction: the host (or the native
// trampolines standing in for it) calls the sink whenever a registered
// callback fires, passing back the Refcon it was given. Entrypoints are the
// only symbols the host resolves by name.
//
// Implementations: the native package (cgo, real host) and host.Simulator
// (in-memory host used by tests).
package ports
