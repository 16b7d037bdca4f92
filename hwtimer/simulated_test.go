package hwtimer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSimulatedFires(t *testing.T) {
	s := NewSimulated()
	s.Init()
	var fired int32
	s.SetCallback(func() { atomic.StoreInt32(&fired, 1) })
	s.FireAfter(10 * time.Millisecond)
	if !s.IsRunning() {
		t.Fatal("expected timer running immediately after FireAfter")
	}
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("callback did not fire")
	}
	if s.IsRunning() {
		t.Fatal("timer should not be running after firing")
	}
}

func TestSimulatedPauseResume(t *testing.T) {
	s := NewSimulated()
	s.Init()
	var fired int32
	s.SetCallback(func() { atomic.StoreInt32(&fired, 1) })
	s.FireAfter(40 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	s.Pause()
	if s.IsRunning() {
		t.Fatal("expected not running while paused")
	}
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatal("callback fired while paused")
	}
	s.Resume()
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("callback did not fire after resume")
	}
}

func TestSimulatedRefireCancelsPrevious(t *testing.T) {
	s := NewSimulated()
	s.Init()
	var count int32
	s.SetCallback(func() { atomic.AddInt32(&count, 1) })
	s.FireAfter(10 * time.Millisecond)
	s.FireAfter(40 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&count) != 0 {
		t.Fatal("earlier arm should have been cancelled by re-arm")
	}
	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&count) != 1 {
		t.Fatalf("expected exactly one fire, got %d", count)
	}
}

func TestMaxCount(t *testing.T) {
	s := NewSimulated()
	if s.MaxCount() != MaxHwDurationUs*time.Microsecond {
		t.Fatal("MaxCount should match MaxHwDurationUs")
	}
}
