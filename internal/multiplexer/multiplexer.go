// Package multiplexer multiplexes an arbitrary number of software timers
// onto a single 32-bit hardware countdown timer. It owns the sorted
// due-list, the index pool that hands out timer handles, and the hardware
// arming policy; it is a direct port of crt_Timers.h's Timers_template.
package multiplexer

import (
	"time"

	"github.com/crtgo/crt/hwtimer"
	"github.com/crtgo/crt/internal/clock"
	"github.com/crtgo/crt/internal/duelist"
	"github.com/crtgo/crt/internal/indexpool"
	"github.com/crtgo/crt/internal/metrics"
	"github.com/crtgo/crt/kernel"
	"github.com/crtgo/crt/rtlog"
)

var log = rtlog.Named("multiplexer")

// Handle identifies a timer created with CreateTimer.
type Handle int32

// HandleNone is returned by CreateTimer when the multiplexer is full, and is
// the value a Handle field holds before its timer is created.
const HandleNone Handle = -1

// MinWaitUs is the smallest gap worth arming hardware for, matching
// crt_Timers.h's minimumWaitTimeUs: below this, the platform's clock
// resolution and call overhead dominate.
const MinWaitUs uint64 = 100

type entry struct {
	dueUs    uint64
	next     duelist.Node
	handle   Handle
	name     string
	callback func()
	periodUs uint32
	periodic bool
	running  bool
}

func (e *entry) DueUs() uint64        { return e.dueUs }
func (e *entry) Next() duelist.Node   { return e.next }
func (e *entry) SetNext(n duelist.Node) { e.next = n }

// Multiplexer multiplexes software timers onto one hwtimer.Driver.
type Multiplexer struct {
	entries []entry
	pool    *indexpool.Pool
	list    duelist.List

	hwActivatedFor Handle
	overheadUs     uint32

	drv hwtimer.Driver
	clk *clock.Clock
}

// New constructs a Multiplexer with room for capacity concurrent timers,
// driven by drv and timestamped by clk. overheadUs compensates for the call
// overhead between reading "now" and the hardware actually starting to
// count, matching crt_Timers.h's estimated_overhead_us.
func New(capacity int, drv hwtimer.Driver, clk *clock.Clock, overheadUs uint32) *Multiplexer {
	m := &Multiplexer{
		entries:        make([]entry, capacity),
		pool:           indexpool.New(capacity),
		hwActivatedFor: HandleNone,
		overheadUs:     overheadUs,
		drv:            drv,
		clk:            clk,
	}
	for i := range m.entries {
		m.entries[i].handle = Handle(i)
	}
	drv.Init()
	drv.SetCallback(m.onHardwareFired)
	return m
}

// Capacity returns the maximum number of concurrently registered timers.
func (m *Multiplexer) Capacity() int {
	return m.pool.Capacity()
}

// NumInUse returns the number of currently-registered timers.
func (m *Multiplexer) NumInUse() int32 {
	return m.pool.NumInUse()
}

// IsValid reports whether h refers to a currently-registered timer.
func (m *Multiplexer) IsValid(h Handle) bool {
	return h >= 0 && int(h) < len(m.entries) && m.pool.IsUsed(int32(h))
}

// CreateTimer allocates an entry for a new timer. callback runs with the
// multiplexer's critical section released but is still invoked from
// whatever context triggered the fire (hardware ISR simulation or a task
// calling StartTimer/StopTimer synchronously) — it must be short and must
// not block.
func (m *Multiplexer) CreateTimer(name string, callback func()) Handle {
	kernel.EnterCritical()
	idx := m.pool.GetNew()
	kernel.ExitCritical()
	if idx == indexpool.Undefined {
		log.Errorf("CreateTimer(%s): pool exhausted at capacity %d", name, m.Capacity())
		return HandleNone
	}
	log.V2(2, "CreateTimer(%s) -> handle %d", name, idx)
	metrics.TimersInUse.Set(float64(m.NumInUse()))
	e := &m.entries[idx]
	e.name = name
	e.callback = callback
	e.periodic = false
	e.running = false
	e.periodUs = 0
	e.dueUs = 0
	e.next = nil
	return Handle(idx)
}

// DestroyTimer stops h if running and releases its slot for reuse.
func (m *Multiplexer) DestroyTimer(h Handle) {
	m.assertValid(h)
	m.StopTimer(h)

	kernel.EnterCritical()
	m.pool.Release(int32(h))
	e := &m.entries[h]
	e.name = ""
	e.callback = nil
	e.next = nil
	if h == m.hwActivatedFor {
		m.hwActivatedFor = HandleNone
	}
	now := m.clk.TimeMicroseconds()
	head, tail := m.list.CollectDue(now)
	kernel.ExitCritical()
	metrics.TimersInUse.Set(float64(m.NumInUse()))

	m.runCallbacks(head)

	kernel.EnterCritical()
	m.reschedulePeriodicsAndRearm(head, tail, now)
	needResume := m.hwActivatedFor != HandleNone
	kernel.ExitCritical()

	if needResume {
		m.drv.Resume()
	}
}

// StartTimer (re)schedules h to fire durationUs microseconds from now, and
// periodically thereafter if periodic is true.
func (m *Multiplexer) StartTimer(h Handle, durationUs uint32, periodic bool) {
	m.assertValid(h)
	e := &m.entries[h]
	if e.running {
		m.StopTimer(h)
	}

	effective := durationUs
	if effective > m.overheadUs {
		effective -= m.overheadUs
	}

	now := m.clk.TimeMicroseconds()
	e.periodic = periodic
	e.periodUs = effective
	e.dueUs = now + uint64(effective)
	e.running = true

	m.drv.Pause()
	kernel.EnterCritical()
	headChanged := m.list.Insert(e)
	head, tail := m.list.CollectDue(now)
	if headChanged || head != nil {
		m.reassignLocked(now)
	}
	kernel.ExitCritical()

	m.runCallbacks(head)

	kernel.EnterCritical()
	m.reschedulePeriodicsAndRearm(head, tail, now)
	needResume := m.hwActivatedFor != HandleNone
	kernel.ExitCritical()

	if needResume {
		m.drv.Resume()
	}
}

// StopTimer cancels h if running. It is a no-op if h is not currently
// running.
func (m *Multiplexer) StopTimer(h Handle) {
	m.assertValid(h)
	e := &m.entries[h]

	m.drv.Pause()
	kernel.EnterCritical()
	e.running = false
	m.list.Remove(e)
	now := m.clk.TimeMicroseconds()
	head, tail := m.list.CollectDue(now)
	kernel.ExitCritical()

	m.runCallbacks(head)

	kernel.EnterCritical()
	m.reschedulePeriodicsAndRearm(head, tail, now)
	needResume := m.hwActivatedFor != HandleNone
	kernel.ExitCritical()

	if needResume {
		m.drv.Resume()
	}
}

// IsTimerRunning reports whether h is currently armed.
func (m *Multiplexer) IsTimerRunning(h Handle) bool {
	m.assertValid(h)
	return m.entries[h].running
}

func (m *Multiplexer) assertValid(h Handle) {
	if !m.IsValid(h) {
		panic("multiplexer: invalid timer handle")
	}
}

// onHardwareFired is the hardware ISR callback entry point: every timer
// whose due time has arrived is collected, their callbacks run, periodics
// reschedule, and hardware is reassigned to the new earliest due time.
func (m *Multiplexer) onHardwareFired() {
	kernel.EnterCritical()
	now := m.clk.TimeMicroseconds()
	head, tail := m.list.CollectDue(now)
	kernel.ExitCritical()

	m.runCallbacks(head)

	kernel.EnterCritical()
	m.reschedulePeriodicsAndRearm(head, tail, now)
	needResume := m.hwActivatedFor != HandleNone
	kernel.ExitCritical()

	if needResume {
		m.drv.Resume()
	}
}

func (m *Multiplexer) runCallbacks(head duelist.Node) {
	for n := head; n != nil; n = n.Next() {
		e := n.(*entry)
		if e.callback != nil {
			e.callback()
			metrics.TimerFiresTotal.WithLabelValues("chunk").Inc()
		}
	}
}

// reschedulePeriodicsAndRearm re-inserts every fired periodic timer that is
// still running (staggered from now, not from the missed due time, trading
// strict periodicity for bounded latency under load) and reassigns hardware
// to the new head. Must be called with the critical section held.
func (m *Multiplexer) reschedulePeriodicsAndRearm(head, tail duelist.Node, now uint64) {
	for n := head; n != nil; n = n.Next() {
		e := n.(*entry)
		if e.periodic && e.running {
			e.dueUs = now + uint64(e.periodUs)
			e.next = nil
			m.list.Insert(e)
		} else {
			e.running = false
		}
	}
	m.reassignLocked(now)
}

// reassignLocked reprograms the hardware timer for the current list head.
// Must be called with the critical section held.
func (m *Multiplexer) reassignLocked(now uint64) {
	head := m.list.Head()
	if head == nil {
		m.drv.Pause()
		m.hwActivatedFor = HandleNone
		return
	}
	e := head.(*entry)
	m.hwActivatedFor = e.handle
	log.V2(3, "reassign: hardware now targets %q (handle %d) due %d, now %d", e.name, e.handle, e.dueUs, now)
	metrics.HardwareRearmsTotal.Inc()

	var deltaUs uint64
	if e.dueUs > now {
		deltaUs = e.dueUs - now
	} else {
		deltaUs = 1
	}
	if deltaUs > 1<<32-1 {
		deltaUs = 1<<32 - 1
	}
	m.drv.FireAfter(time.Duration(deltaUs) * time.Microsecond)
}
