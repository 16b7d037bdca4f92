package kernel

import "sync"

// Mutex is the kernel mutex primitive crt.Mutex (the ordered mutex) is built
// on, standing in for osMutexNew/osMutexAcquire/osMutexRelease.
type Mutex struct {
	mu sync.Mutex
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	return m.mu.TryLock()
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	m.mu.Lock()
}

// Unlock releases the mutex. It must be called by the goroutine that
// acquired it.
func (m *Mutex) Unlock() {
	m.mu.Unlock()
}
