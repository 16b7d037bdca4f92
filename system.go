package crt

import (
	"fmt"
	"sync/atomic"

	"github.com/crtgo/crt/cycle"
	"github.com/crtgo/crt/hwtimer"
	"github.com/crtgo/crt/internal/clock"
	"github.com/crtgo/crt/internal/multiplexer"
	"github.com/crtgo/crt/internal/relay"
)

var systemConstructed atomic.Bool

// System is the set of singletons — clock, multiplexer, relay — that every
// Task and Timer is built against. Go idiom prefers passing this
// explicitly over the C++ function-local-static singleton the original
// uses, but the "construct exactly once, at startup" contract is preserved:
// Init panics if called a second time.
type System struct {
	cfg   Config
	clk   *clock.Clock
	mux   *multiplexer.Multiplexer
	relay *relay.Relay
}

// Init constructs the System. It may be called exactly once per process;
// a second call panics. drv and cyc are the external collaborators this
// package needs but does not implement: the hardware countdown timer and
// the free-running cycle counter it multiplexes.
func Init(cfg Config, drv hwtimer.Driver, cyc cycle.Source) (*System, error) {
	if !systemConstructed.CompareAndSwap(false, true) {
		panic("crt: Init called more than once")
	}
	return newSystem(cfg, drv, cyc)
}

// newSystem holds the actual construction logic, split out from Init so
// package-internal tests can build any number of independent System
// instances without tripping the process-wide singleton guard Init enforces
// for production callers.
func newSystem(cfg Config, drv hwtimer.Driver, cyc cycle.Source) (*System, error) {
	if cfg.MaxTimers <= 0 {
		return nil, fmt.Errorf("crt: Config.MaxTimers must be positive, got %d", cfg.MaxTimers)
	}
	if cfg.ClockRateHz == 0 {
		return nil, fmt.Errorf("crt: Config.ClockRateHz must be positive")
	}

	clk := clock.New(cyc, cfg.ClockRateHz)
	clk.Start()

	mux := multiplexer.New(cfg.MaxTimers, drv, clk, cfg.OverheadCompensationUs)

	rel := relay.New(cfg.RelayQueueDepth)
	rel.Start()

	return &System{cfg: cfg, clk: clk, mux: mux, relay: rel}, nil
}

// NewTask constructs a Task bound to this System's MaxMutexNesting.
func (s *System) NewTask(name string, priority int) *Task {
	return NewTask(name, priority, s.cfg.MaxMutexNesting)
}

// NewTimer constructs a Timer owned by owner, registered with this
// System's multiplexer and relay on first Start.
func (s *System) NewTimer(owner *Task, name string) *Timer {
	return newTimer(s, owner, name)
}

// NowUs returns elapsed microseconds since the System was initialized.
func (s *System) NowUs() uint64 {
	return s.clk.TimeMicroseconds()
}

// NowMs returns elapsed milliseconds since the System was initialized.
func (s *System) NowMs() uint64 {
	return s.NowUs() / 1000
}

// NowS returns elapsed whole seconds since the System was initialized.
func (s *System) NowS() uint64 {
	return s.clk.TimeSeconds()
}

// Config returns the configuration the System was initialized with.
func (s *System) Config() Config {
	return s.cfg
}
