package clock

import (
	"testing"
	"time"

	"github.com/crtgo/crt/cycle"
)

func TestTimeMicrosecondsAdvances(t *testing.T) {
	src := cycle.NewHostCycleSource(1_000_000) // 1 count per microsecond
	c := New(src, 1_000_000)
	c.Start()
	defer c.Stop()

	time.Sleep(5 * time.Millisecond)
	us := c.TimeMicroseconds()
	if us < 3000 {
		t.Fatalf("expected at least ~3ms elapsed, got %dus", us)
	}
}

func TestTotalCycleCountSurvivesOverflowFolding(t *testing.T) {
	// At 1<<20 counts per second the accumulation task's own fold interval
	// is over half an hour, so the test folds the source into total itself
	// between the two reads and checks that the total keeps growing across
	// the fold.
	src := cycle.NewHostCycleSource(1 << 20)
	c := New(src, 1<<20)
	c.Start()
	defer c.Stop()

	time.Sleep(20 * time.Millisecond)
	first := c.TotalCycleCount()
	c.updateCycleCount()
	time.Sleep(20 * time.Millisecond)
	second := c.TotalCycleCount()
	if second <= first {
		t.Fatalf("expected monotonic growth, got %d then %d", first, second)
	}
}

func TestTimeSecondsConsistentWithMicroseconds(t *testing.T) {
	src := cycle.NewHostCycleSource(1_000_000)
	c := New(src, 1_000_000)
	c.Start()
	defer c.Stop()

	time.Sleep(5 * time.Millisecond)
	us := c.TimeMicroseconds()
	s := c.TimeSeconds()
	if s != us/1_000_000 {
		t.Fatalf("seconds %d inconsistent with microseconds %d", s, us)
	}
}
