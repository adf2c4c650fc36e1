// Package dispatch routes host callbacks to plugin closures.
//
// The host only hands back the Refcon a callback was registered with. Table
// maps each Refcon to a tagged entry (flight loop, command handler, menu,
// draw, camera, dataref accessor) and implements ports.CallbackSink, so it
// can be bound to the host directly. Every invocation runs through a
// middleware chain and ends at a recover, so a fault in plugin code becomes
// the callback's inert return value instead of unwinding into the host.
package dispatch
