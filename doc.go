// Package crt implements a cooperative concurrency toolkit on top of a
// preemptive kernel: tasks with event-bit vectors, flags, bounded queues,
// pools, ordered mutexes and a software timer service that multiplexes an
// arbitrary number of timers — including durations that exceed the
// underlying hardware counter's range — onto a single hardware timer.
//
// The kernel itself, the hardware timer and the cycle counter are external
// collaborators: this package only depends on the kernel, hwtimer and cycle
// packages' interfaces, so a firmware build can supply real implementations
// of those three without touching anything here.
package crt
