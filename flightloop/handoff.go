package flightloop

import "sync/atomic"

// Handoff is a bounded mailbox from background goroutines to the sim
// thread. Goroutines Post results; a flight-loop callback Drains them and
// talks to the host. Post never blocks: when the mailbox is full the value
// is dropped and counted.
type Handoff[T any] struct {
	queue   chan T
	posted  atomic.Uint64
	dropped atomic.Uint64
}

// NewHandoff creates a mailbox holding at most capacity values.
func NewHandoff[T any](capacity int) *Handoff[T] {
	return &Handoff[T]{queue: make(chan T, max(capacity, 1))}
}

// Post queues v. It reports false when the mailbox was full.
// Safe for concurrent use.
func (h *Handoff[T]) Post(v T) bool {
	select {
	case h.queue <- v:
		h.posted.Add(1)
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

// Drain calls fn for every value queued when Drain started, in post order,
// and returns how many it delivered. Values posted meanwhile wait for the
// next Drain so one callback cannot be starved by a fast producer.
func (h *Handoff[T]) Drain(fn func(T)) int {
	n := len(h.queue)
	for i := range n {
		select {
		case v := <-h.queue:
			fn(v)
		default:
			return i
		}
	}
	return n
}

// Len returns the number of queued values.
func (h *Handoff[T]) Len() int { return len(h.queue) }

// Cap returns the mailbox capacity.
func (h *Handoff[T]) Cap() int { return cap(h.queue) }

// Posted returns how many values were accepted.
func (h *Handoff[T]) Posted() uint64 { return h.posted.Load() }

// Dropped returns how many values were rejected because the mailbox was full.
func (h *Handoff[T]) Dropped() uint64 { return h.dropped.Load() }
