// Package host provides an in-memory host for running plugins without the
// simulator application.
//
// Simulator implements ports.Host with the host's observable semantics:
// dataref storage and plugin-published accessors, flight-loop scheduling
// driven by Tick, menus and commands with before/after handler chains,
// draw phases, camera control, terrain probes and a small navigation
// database. Tests drive it with Tick, TriggerCommand, ClickMenuItem and
// Render and inspect what the plugin did through its accessors.
package host
