// Package entities provides the core value types shared by every component of
// the binding layer: dataref value kinds, lifecycle states, scheduling
// intervals, command phases, draw phases and the records returned by
// scenery and navigation queries.
//
// Nothing in this package talks to the host.
package entities
