package crt

import (
	"fmt"

	"github.com/crtgo/crt/internal/metrics"
	"github.com/crtgo/crt/kernel"
)

// Mutex is the ordered mutex: a kernel mutex paired with a positive integer
// ID fixed at construction. Within any task, the IDs on the mutex-ID stack
// must be strictly increasing bottom to top; a global acyclic order on IDs
// combined with that per-task monotonicity rules out deadlock cycles.
type Mutex struct {
	id uint32
	km kernel.Mutex
}

// NewMutex constructs a Mutex with the given ID. ID 0 is reserved to mean
// "nothing held" on a task's mutex-ID stack and may not be used here.
func NewMutex(id uint32) *Mutex {
	if id == 0 {
		panic("crt: mutex id 0 is reserved")
	}
	return &Mutex{id: id}
}

// ID returns the mutex's lock-order ID.
func (m *Mutex) ID() uint32 {
	return m.id
}

// Lock acquires the mutex on behalf of task, asserting that m's ID is
// strictly greater than whatever the task currently holds. It retries with
// kernel.Yield on transient acquisition failure rather than blocking
// indefinitely inside the kernel call, to stay watchdog-friendly.
func (m *Mutex) Lock(task *Task) {
	for {
		if top := task.mutexTop(); m.id <= top {
			metrics.MutexOrderViolationsTotal.Inc()
			panic(fmt.Sprintf("crt: mutex order violation: locking id %d while holding id %d", m.id, top))
		}
		if m.km.TryLock() {
			if !task.pushMutexID(m.id) {
				panic("crt: mutex nesting exceeds MaxMutexNesting")
			}
			metrics.MutexStackDepth.WithLabelValues(task.Name()).Set(float64(task.stackDepth()))
			return
		}
		kernel.Yield()
	}
}

// Unlock releases the mutex and pops its ID from task's mutex-ID stack.
func (m *Mutex) Unlock(task *Task) {
	task.popMutexID()
	metrics.MutexStackDepth.WithLabelValues(task.Name()).Set(float64(task.stackDepth()))
	m.km.Unlock()
}

// Section acquires a Mutex for the duration of a scope, Go's RAII-section
// idiom standing in for MutexSection: callers `defer sec.Release()`.
type Section struct {
	task     *Task
	mu       *Mutex
	released bool
}

// NewSection locks mu on behalf of task and returns a handle to release it.
func NewSection(task *Task, mu *Mutex) *Section {
	mu.Lock(task)
	return &Section{task: task, mu: mu}
}

// Release unlocks the section's mutex. Safe to call more than once; only
// the first call has effect.
func (s *Section) Release() {
	if s.released {
		return
	}
	s.released = true
	s.mu.Unlock(s.task)
}
