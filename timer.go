package crt

import (
	"sync"

	"github.com/crtgo/crt/internal/multiplexer"
)

// Timer is a one-shot or periodic software timer of arbitrary 64-bit
// duration. Durations beyond the hardware counter's range are chopped into
// a sequence of hardware-sized chunks, continued by the long-timer relay
// from task context.
type Timer struct {
	waitable
	owner *Task
	sys   *System
	name  string

	mu           sync.Mutex
	handle       multiplexer.Handle
	total        uint64
	chunk        uint32
	chunksFired  uint64
	periodic     bool
	longChopping bool
	runID        uint64
}

func newTimer(sys *System, owner *Task, name string) *Timer {
	t := &Timer{
		owner:  owner,
		sys:    sys,
		name:   name,
		handle: multiplexer.HandleNone,
	}
	t.waitable.init(owner, KindTimer)
	return t
}

// Start (re)schedules the timer to fire durationUs microseconds from now.
// If durationUs exceeds the hardware counter's range, it is chopped into a
// sequence of chunks driven by the relay; the timer's bit still fires only
// once, when the full duration has elapsed.
func (t *Timer) Start(durationUs uint64, periodic bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID++ // invalidates any relay record already in flight
	if t.handle == multiplexer.HandleNone {
		h := t.sys.mux.CreateTimer(t.name, t.onFire)
		if h == multiplexer.HandleNone {
			panic("crt: timer pool exhausted (increase Config.MaxTimers)")
		}
		t.handle = h
	}

	t.total = durationUs
	t.chunksFired = 0
	t.periodic = periodic

	maxHwTimeUs := t.sys.cfg.MaxHwTimeUs
	if durationUs <= maxHwTimeUs {
		t.longChopping = false
		t.chunk = uint32(durationUs)
		t.sys.mux.StartTimer(t.handle, t.chunk, periodic)
	} else {
		t.longChopping = true
		t.chunk = uint32(maxHwTimeUs)
		t.sys.mux.StartTimer(t.handle, t.chunk, false) // one-shot; chopping continues via the relay
	}
}

// StartPeriodic is shorthand for Start(durationUs, true).
func (t *Timer) StartPeriodic(durationUs uint64) {
	t.Start(durationUs, true)
}

// Stop cancels the timer, invalidating any relay record in flight and
// clearing the owner's bit.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.runID++
	handle := t.handle
	t.longChopping = false
	t.mu.Unlock()

	if handle != multiplexer.HandleNone {
		t.sys.mux.StopTimer(handle)
	}
	t.owner.ClearEventBits(t.bitMask)
}

// IsRunning reports whether the timer currently has a hardware chunk armed.
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	handle := t.handle
	t.mu.Unlock()
	if handle == multiplexer.HandleNone {
		return false
	}
	return t.sys.mux.IsTimerRunning(handle)
}

// onFire is the multiplexer's ISR callback for this timer's handle: it must
// be short and non-blocking, so it only enqueues a relay record.
func (t *Timer) onFire() {
	t.mu.Lock()
	longChopping := t.longChopping
	runID := t.runID
	t.mu.Unlock()

	if longChopping {
		t.sys.relay.RequestRearm(t, runID)
	} else {
		t.sys.relay.RequestDeliver(t, runID)
	}
}

// OnRelayRearm implements relay.Target: it continues chopping a long timer,
// or delivers completion once the remaining time drops below MinWaitUs.
func (t *Timer) OnRelayRearm(runID uint64) {
	t.mu.Lock()
	if runID != t.runID {
		t.mu.Unlock() // stale: the timer was restarted or stopped since this chunk was armed
		return
	}
	t.chunksFired += uint64(t.chunk)
	remaining := t.total - t.chunksFired

	if remaining < t.sys.cfg.MinWaitUs {
		periodic := t.periodic
		total := t.total
		t.longChopping = false
		t.mu.Unlock()

		t.owner.SetEventBits(t.bitMask)
		if periodic {
			t.StartPeriodic(total)
		}
		return
	}

	chunk := remaining
	if maxHwTimeUs := t.sys.cfg.MaxHwTimeUs; chunk > maxHwTimeUs {
		chunk = maxHwTimeUs
	}
	t.chunk = uint32(chunk)
	handle := t.handle
	t.mu.Unlock()

	t.sys.mux.StartTimer(handle, uint32(chunk), false)
}

// OnRelayDeliver implements relay.Target: a plain, non-chopped fire.
func (t *Timer) OnRelayDeliver(runID uint64) {
	t.mu.Lock()
	stale := runID != t.runID
	t.mu.Unlock()
	if stale {
		return
	}
	t.owner.SetEventBits(t.bitMask)
}
