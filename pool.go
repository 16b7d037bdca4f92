package crt

import "github.com/crtgo/crt/kernel"

// Pool is a single mutex-protected cell of T. It uses a plain kernel.Mutex
// rather than the ordered Mutex: a pool only ever takes its own lock, so
// the lock-order discipline that guards against cross-mutex deadlocks does
// not apply here (crt_Pool.h's SimpleMutex).
type Pool[T any] struct {
	mu   kernel.Mutex
	data T
}

// NewPool returns a Pool holding T's zero value.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

// NewPoolWith returns a Pool holding initial.
func NewPoolWith[T any](initial T) *Pool[T] {
	return &Pool[T]{data: initial}
}

// Write overwrites the pool's contents.
func (p *Pool[T]) Write(v T) {
	p.mu.Lock()
	p.data = v
	p.mu.Unlock()
}

// Read returns a copy of the pool's contents.
func (p *Pool[T]) Read() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// AtomicUpdate applies op to the pool's contents under the pool's mutex.
func (p *Pool[T]) AtomicUpdate(op func(*T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op(&p.data)
}

// ReadAtomicUpdate applies op under the pool's mutex, then returns the
// resulting contents.
func (p *Pool[T]) ReadAtomicUpdate(op func(*T)) T {
	p.mu.Lock()
	defer p.mu.Unlock()
	op(&p.data)
	return p.data
}

// AtomicUpdateWithArg applies op(data, arg) under p's mutex. It is a
// package-level function, not a method, because Go methods cannot introduce
// a type parameter beyond the receiver's.
func AtomicUpdateWithArg[T, A any](p *Pool[T], op func(*T, A), arg A) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op(&p.data, arg)
}

// ReadAtomicUpdateWithArg applies op(data, arg) under p's mutex, then
// returns the resulting contents.
func ReadAtomicUpdateWithArg[T, A any](p *Pool[T], op func(*T, A), arg A) T {
	p.mu.Lock()
	defer p.mu.Unlock()
	op(&p.data, arg)
	return p.data
}
