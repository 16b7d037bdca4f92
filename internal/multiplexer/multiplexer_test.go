package multiplexer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/crtgo/crt/cycle"
	"github.com/crtgo/crt/hwtimer"
	"github.com/crtgo/crt/internal/clock"
)

func newTestMultiplexer(t *testing.T, capacity int) (*Multiplexer, *clock.Clock) {
	t.Helper()
	src := cycle.NewHostCycleSource(1_000_000)
	clk := clock.New(src, 1_000_000)
	clk.Start()
	t.Cleanup(clk.Stop)
	drv := hwtimer.NewSimulated()
	m := New(capacity, drv, clk, 0)
	return m, clk
}

func TestCreateTimerExhaustsCapacity(t *testing.T) {
	m, _ := newTestMultiplexer(t, 2)
	h1 := m.CreateTimer("a", func() {})
	h2 := m.CreateTimer("b", func() {})
	if h1 == HandleNone || h2 == HandleNone {
		t.Fatal("expected two valid handles")
	}
	if m.CreateTimer("c", func() {}) != HandleNone {
		t.Fatal("expected HandleNone once capacity is exhausted")
	}
}

func TestStartTimerFiresOnce(t *testing.T) {
	m, _ := newTestMultiplexer(t, 4)
	fired := make(chan struct{}, 1)
	h := m.CreateTimer("once", func() { fired <- struct{}{} })
	m.StartTimer(h, 20_000, false)

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timer did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if m.IsTimerRunning(h) {
		t.Fatal("one-shot timer should not be running after firing")
	}
}

func TestPeriodicTimerFiresRepeatedly(t *testing.T) {
	m, _ := newTestMultiplexer(t, 4)
	var count int32
	h := m.CreateTimer("periodic", func() { atomic.AddInt32(&count, 1) })
	m.StartTimer(h, 10_000, true)

	time.Sleep(150 * time.Millisecond)
	m.StopTimer(h)

	if atomic.LoadInt32(&count) < 3 {
		t.Fatalf("expected several periodic fires, got %d", count)
	}
}

func TestStopTimerPreventsFiring(t *testing.T) {
	m, _ := newTestMultiplexer(t, 4)
	fired := make(chan struct{}, 1)
	h := m.CreateTimer("stoppable", func() { fired <- struct{}{} })
	m.StartTimer(h, 30_000, false)
	m.StopTimer(h)

	select {
	case <-fired:
		t.Fatal("timer fired after being stopped")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestIsValidAfterDestroy(t *testing.T) {
	m, _ := newTestMultiplexer(t, 4)
	h := m.CreateTimer("tmp", func() {})
	if !m.IsValid(h) {
		t.Fatal("expected valid handle right after creation")
	}
	m.DestroyTimer(h)
	if m.IsValid(h) {
		t.Fatal("expected invalid handle after destroy")
	}
}

func TestMultipleTimersFireInDueOrder(t *testing.T) {
	m, _ := newTestMultiplexer(t, 4)
	order := make(chan string, 3)
	h1 := m.CreateTimer("first", func() { order <- "first" })
	h2 := m.CreateTimer("second", func() { order <- "second" })
	h3 := m.CreateTimer("third", func() { order <- "third" })

	m.StartTimer(h3, 60_000, false)
	m.StartTimer(h1, 20_000, false)
	m.StartTimer(h2, 40_000, false)

	want := []string{"first", "second", "third"}
	for _, w := range want {
		select {
		case got := <-order:
			if got != w {
				t.Fatalf("expected %q next, got %q", w, got)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}
