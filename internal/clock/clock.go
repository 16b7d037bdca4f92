// Package clock aggregates a wrapping 32-bit hardware cycle counter into a
// monotonically increasing 64-bit microsecond clock, using a lock-free
// even/odd sequence-counter protocol so readers never block a writer and
// never observe a torn total. It is a direct port of crt_Time.h.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/crtgo/crt/cycle"
	"github.com/crtgo/crt/kernel"
)

// Clock accumulates a cycle.Source into a 64-bit total, converting to
// microseconds/seconds using rateHz (the source's counts-per-second rate).
type Clock struct {
	src    cycle.Source
	rateHz uint64

	seq   atomic.Uint32
	total atomic.Uint64

	overflowCheckInterval time.Duration
	task                  *kernel.Task
	stop                  chan struct{}
}

// New returns a Clock driven by src, which counts at rateHz counts per
// second. The returned Clock has not started its accumulation task; call
// Start to begin it.
func New(src cycle.Source, rateHz uint64) *Clock {
	// Time per 32-bit-counter overflow, halved "to be on the safe side"
	// exactly as crt_Time.h's constructor computes msPerCountOverflowCheck.
	overflowSeconds := float64(uint64(1)<<32) / float64(rateHz)
	interval := time.Duration(overflowSeconds * float64(time.Second) / 2)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Clock{
		src:                   src,
		rateHz:                rateHz,
		overflowCheckInterval: interval,
		stop:                  make(chan struct{}),
	}
}

// Start begins counting and launches the background accumulation task that
// periodically folds the wrapping hardware counter into the 64-bit total
// before it can wrap a second time.
func (c *Clock) Start() {
	c.src.Start()
	c.task = kernel.StartTask(kernel.TaskConfig{Name: "crt-clock", Priority: 0}, func() {
		ticker := time.NewTicker(c.overflowCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.updateCycleCount()
			}
		}
	})
}

// Stop terminates the accumulation task. Safe to call at most once.
func (c *Clock) Stop() {
	close(c.stop)
	if c.task != nil {
		c.task.Join()
	}
}

func (c *Clock) updateCycleCount() {
	c.seq.Add(1) // becomes odd: update in progress
	c.total.Add(uint64(c.src.Count()))
	c.src.Reset()
	c.seq.Add(1) // becomes even again
}

// TotalCycleCount returns the accumulated cycle count without blocking,
// retrying if it observes a writer mid-update.
func (c *Clock) TotalCycleCount() uint64 {
	for {
		startSeq := c.seq.Load()
		if startSeq&1 != 0 {
			continue
		}
		total := c.total.Load() + uint64(c.src.Count())
		if c.seq.Load() == startSeq {
			return total
		}
	}
}

// TimeMicroseconds returns elapsed time since Start, in microseconds.
func (c *Clock) TimeMicroseconds() uint64 {
	return c.TotalCycleCount() * 1_000_000 / c.rateHz
}

// TimeSeconds returns elapsed time since Start, in whole seconds.
func (c *Clock) TimeSeconds() uint64 {
	return c.TotalCycleCount() / c.rateHz
}
