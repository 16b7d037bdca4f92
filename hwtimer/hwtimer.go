// Package hwtimer models the single 32-bit hardware countdown timer the
// multiplexer multiplexes every software timer onto. Real firmware would
// implement Driver against a timer/counter peripheral; this package supplies
// the interface and one software simulation built on time.AfterFunc.
package hwtimer

import "time"

// Driver is the hardware countdown timer the multiplexer drives directly.
// It fires its callback once, d after FireAfter(d) is called, unless paused
// or re-armed first. It never auto-reloads.
type Driver interface {
	// Init prepares the timer for use. Called once during system setup.
	Init()

	// Pause stops the countdown without losing the configured deadline,
	// standing in for disabling the peripheral's interrupt/counting.
	Pause()

	// Resume restarts counting from wherever Pause left off.
	Resume()

	// IsRunning reports whether the timer is currently counting down.
	IsRunning() bool

	// SetCallback installs the function invoked when the timer fires. It
	// must be called before the first FireAfter.
	SetCallback(fn func())

	// FireAfter arms the timer to fire once, d after this call. d is
	// clamped by the caller to the hardware counter's range; a Driver may
	// assert if handed a value it cannot represent.
	FireAfter(d time.Duration)

	// MaxCount returns the largest duration a single FireAfter can
	// represent before the hardware counter would wrap — 1<<32 - 1
	// microseconds for a 32-bit counter.
	MaxCount() time.Duration
}
