package crt

import (
	"testing"
	"time"
)

func TestTimerOneShotFires(t *testing.T) {
	sys := newTestSystem(t, DefaultConfig())
	owner := sys.NewTask("owner", 0)
	timer := sys.NewTimer(owner, "once")

	timer.Start(20_000, false)

	done := make(chan struct{})
	go func() {
		owner.Wait(timer)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot timer did not fire")
	}
}

func TestTimerPeriodicFiresRepeatedly(t *testing.T) {
	sys := newTestSystem(t, DefaultConfig())
	owner := sys.NewTask("owner", 0)
	timer := sys.NewTimer(owner, "periodic")

	timer.StartPeriodic(15_000)

	for i := 0; i < 3; i++ {
		done := make(chan struct{})
		go func() {
			owner.Wait(timer)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("periodic timer did not fire iteration %d", i)
		}
	}
	timer.Stop()
}

func TestTimerStopPreventsFiring(t *testing.T) {
	sys := newTestSystem(t, DefaultConfig())
	owner := sys.NewTask("owner", 0)
	timer := sys.NewTimer(owner, "stoppable")

	timer.Start(100_000, false)
	time.Sleep(10 * time.Millisecond)
	timer.Stop()

	if owner.IsSet(timer) {
		t.Fatal("expected timer bit clear right after Stop")
	}

	time.Sleep(200 * time.Millisecond)
	if owner.IsSet(timer) {
		t.Fatal("stopped timer must never fire")
	}
}

func TestLongTimerChoppingFiresOnce(t *testing.T) {
	// TimeMicroseconds tracks real elapsed wall-clock time regardless of
	// ClockRateHz (the rate cancels out between the cycle source and the
	// conversion back to microseconds), so the only way to reach the
	// chopping path within a test's real-time budget is to lower
	// MaxHwTimeUs itself, not to "speed up" the clock.
	cfg := DefaultConfig()
	cfg.MaxHwTimeUs = 50_000
	cfg.MinWaitUs = 100
	sys := newTestSystem(t, cfg)
	owner := sys.NewTask("owner", 0)
	timer := sys.NewTimer(owner, "long")

	longDuration := cfg.MaxHwTimeUs + 60_000 // two hardware chunks plus a short remainder
	timer.Start(longDuration, false)

	done := make(chan struct{})
	go func() {
		owner.Wait(timer)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("chopped long timer never delivered")
	}
}

func TestTimerStopDuringChunkNeverFires(t *testing.T) {
	sys := newTestSystem(t, DefaultConfig())
	owner := sys.NewTask("owner", 0)
	timer := sys.NewTimer(owner, "stop-during-chunk")

	timer.Start(2_000_000, false) // 2s, comfortably longer than the poll window below
	time.Sleep(10 * time.Millisecond)
	timer.Stop()

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		if owner.IsSet(timer) {
			t.Fatal("timer fired after being stopped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
