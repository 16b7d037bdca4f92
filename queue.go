package crt

import "github.com/crtgo/crt/kernel"

// Queue is a fixed-capacity FIFO of T, optionally owner-less so that an ISR
// (or this simulation's stand-in for one) can write to it without any
// event-bit signalling. The owner's bit is a level — "queue non-empty" —
// signalled through a re-asserted edge: after Read drains one element, if
// the queue is still non-empty the bit is set again so the next wait fires
// without needing another write.
type Queue[T any] struct {
	waitable
	owner       *Task
	q           *kernel.Queue[T]
	blockOnFull bool
}

// NewQueue constructs a queue of capacity elements. If owner is nil, no
// event bit is ever touched — useful for producers that must never block on
// signalling. If blockOnFull is true, Write blocks while the queue is full
// instead of failing.
func NewQueue[T any](owner *Task, capacity int, blockOnFull bool) *Queue[T] {
	q := &Queue[T]{
		owner:       owner,
		q:           kernel.NewQueue[T](capacity),
		blockOnFull: blockOnFull,
	}
	if owner != nil {
		q.waitable.init(owner, KindQueue)
	}
	return q
}

// Write enqueues v. It returns false if the queue is full and blockOnFull
// was false at construction; otherwise it always returns true (blocking if
// necessary). On success, if there is an owner, its bit is set.
func (q *Queue[T]) Write(v T) bool {
	if q.blockOnFull {
		q.q.Put(v)
	} else if !q.q.TryPut(v) {
		return false
	}
	if q.owner != nil {
		q.owner.SetEventBits(q.bitMask)
	}
	return true
}

// Read dequeues the next element, blocking while empty. If there is an
// owner, its bit is re-asserted when the queue is still non-empty afterward
// and cleared when the queue is now empty.
func (q *Queue[T]) Read() T {
	v := q.q.Get()
	if q.owner != nil {
		if q.q.Len() > 0 {
			q.owner.SetEventBits(q.bitMask)
		} else {
			q.owner.ClearEventBits(q.bitMask)
			// A Write that landed between the Len check and the clear has
			// already set its bit; restore it.
			if q.q.Len() > 0 {
				q.owner.SetEventBits(q.bitMask)
			}
		}
	}
	return v
}

// Count returns the number of currently-queued elements.
func (q *Queue[T]) Count() int {
	return q.q.Len()
}

// Clear drains the queue and, if there is an owner, clears its bit.
func (q *Queue[T]) Clear() {
	q.q.Drain()
	if q.owner != nil {
		q.owner.ClearEventBits(q.bitMask)
	}
}
