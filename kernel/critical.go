package kernel

import "sync"

// critical stands in for masking the scheduler/timer interrupt: a
// package-level mutex, entered with EnterCritical and left with
// ExitCritical, taken around the short, non-blocking bookkeeping
// that on real hardware runs with interrupts disabled (due-list mutation,
// index-pool claim/release). It must never be held across a blocking call.
var critical sync.Mutex

// EnterCritical disables "interrupts" by acquiring the package-level lock.
func EnterCritical() {
	critical.Lock()
}

// ExitCritical re-enables "interrupts".
func ExitCritical() {
	critical.Unlock()
}

// Critical runs fn with the critical section held. fn must be short and must
// not block.
func Critical(fn func()) {
	EnterCritical()
	defer ExitCritical()
	fn()
}
