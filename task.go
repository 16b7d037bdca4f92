package crt

import (
	"fmt"

	"github.com/crtgo/crt/kernel"
)

// maxWaitablesPerTask mirrors queryBitNumber's assert(nofWaitables < 24):
// bits 24..31 are left for kernel-internal use.
const maxWaitablesPerTask = 24

// Task owns an event-bit vector and a stack of currently-held ordered-mutex
// IDs. Constructed once at startup and never destroyed.
type Task struct {
	name     string
	priority int

	eg *kernel.EventGroup

	nofWaitables uint32
	queuesMask   uint32
	flagsMask    uint32
	timersMask   uint32
	latestResult uint32

	maxMutexNesting int
	mutexIDStack    []uint32

	kernelTask *kernel.Task
}

// NewTask constructs a Task with no waitables registered yet. maxMutexNesting
// bounds the ordered-mutex lock-ID stack depth.
func NewTask(name string, priority int, maxMutexNesting int) *Task {
	return &Task{
		name:            name,
		priority:        priority,
		eg:              kernel.NewEventGroup(),
		maxMutexNesting: maxMutexNesting,
	}
}

// Name returns the task's name.
func (t *Task) Name() string {
	return t.name
}

// Start launches fn as the task's body on its own goroutine.
func (t *Task) Start(fn func()) {
	t.kernelTask = kernel.StartTask(kernel.TaskConfig{Name: t.name, Priority: t.priority}, fn)
}

// Join blocks until the task's body (started via Start) has returned.
func (t *Task) Join() {
	if t.kernelTask != nil {
		t.kernelTask.Join()
	}
}

// queryBitNumber assigns the next event bit to a newly constructed waitable
// and classifies it into the queue/flag/timer mask.
func (t *Task) queryBitNumber(kind WaitableKind) uint32 {
	if t.nofWaitables >= maxWaitablesPerTask {
		panic(fmt.Sprintf("crt: task %q exceeds %d addressable waitables", t.name, maxWaitablesPerTask))
	}
	bit := t.nofWaitables
	mask := uint32(1) << bit
	switch kind {
	case KindQueue:
		t.queuesMask |= mask
	case KindTimer:
		t.timersMask |= mask
	case KindFlag:
		t.flagsMask |= mask
	}
	t.nofWaitables++
	return bit
}

// SetEventBits ORs mask into the task's event vector. Safe to call from any
// goroutine, including a timer's ISR-simulation callback.
func (t *Task) SetEventBits(mask uint32) {
	t.eg.Set(mask)
}

// ClearEventBits ANDs the complement of mask into the task's event vector.
func (t *Task) ClearEventBits(mask uint32) {
	t.eg.Clear(mask)
}

// Wait blocks until w's bit is set, then consumes it (re-asserting it
// immediately if w is a queue that still has elements).
func (t *Task) Wait(w Waiter) uint32 {
	return t.WaitAll(w.BitMask())
}

// WaitAll blocks until every bit in mask is set, clears all of them, then
// re-asserts whichever of them belong to still-nonempty queues — queue bits
// are a level, not an edge, and only Queue.Read is allowed to consume them.
func (t *Task) WaitAll(mask uint32) uint32 {
	result := t.eg.WaitAll(mask)
	t.latestResult = result
	if reassert := t.queuesMask & result; reassert != 0 {
		t.eg.Set(reassert)
	}
	return result
}

// WaitAny blocks until at least one bit in mask is set. It does not clear
// anything; callers identify and clear each fired bit with HasFired.
func (t *Task) WaitAny(mask uint32) uint32 {
	result := t.eg.WaitAny(mask)
	t.latestResult = result
	return result
}

// HasFired reports whether w's bit is set in the cached latest wait result.
// If set, the bit is cleared unless w is a queue waitable, whose bit only a
// Queue.Read may consume.
func (t *Task) HasFired(w Waiter) bool {
	mask := w.BitMask()
	fired := t.latestResult&mask != 0
	if fired {
		if clearMask := mask &^ t.queuesMask; clearMask != 0 {
			t.ClearEventBits(clearMask)
		}
	}
	return fired
}

// IsSet peeks whether w's bit is currently set, without waiting or clearing.
func (t *Task) IsSet(w Waiter) bool {
	return t.IsAllSet(w.BitMask())
}

// IsAllSet peeks whether every bit in mask is currently set.
func (t *Task) IsAllSet(mask uint32) bool {
	result := t.eg.Peek()
	t.latestResult = result
	return result&mask == mask
}

// IsAnySet peeks whether any bit in mask is currently set.
func (t *Task) IsAnySet(mask uint32) bool {
	result := t.eg.Peek()
	t.latestResult = result
	return result&mask != 0
}

// mutexTop returns the ID on top of the mutex-ID stack, or 0 (the reserved
// "empty" sentinel) if nothing is held.
func (t *Task) mutexTop() uint32 {
	if len(t.mutexIDStack) == 0 {
		return 0
	}
	return t.mutexIDStack[len(t.mutexIDStack)-1]
}

func (t *Task) pushMutexID(id uint32) bool {
	if len(t.mutexIDStack) >= t.maxMutexNesting {
		return false
	}
	t.mutexIDStack = append(t.mutexIDStack, id)
	return true
}

func (t *Task) popMutexID() {
	t.mutexIDStack = t.mutexIDStack[:len(t.mutexIDStack)-1]
}

// stackDepth returns the current depth of the mutex-ID stack, for metrics.
func (t *Task) stackDepth() int {
	return len(t.mutexIDStack)
}
