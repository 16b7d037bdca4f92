// Package kernel supplies the preemptive-kernel primitives that the crt
// package is built on: tasks, event groups, mutexes, bounded queues,
// critical sections and yield. It is the one concrete realization of the
// "external collaborator" kernel that crt assumes; a firmware port would
// replace this package with one backed by the real RTOS, without changing
// anything above it.
//
// Event groups and mutexes are built on sync.Mutex and sync.Cond: Mutex's
// TryLock backs the ordered-mutex retry loop in crt, and EventGroup's
// wait/broadcast pattern is the textbook use of a condition variable.
package kernel
