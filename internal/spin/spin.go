// Package spin provides a spinlock for very short critical sections.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Lock is a test-and-set spinlock. The zero value is unlocked.
//
// Use it only where the protected work is a few map operations; waiting
// goroutines yield to the scheduler between attempts.
type Lock struct {
	state atomic.Uint32
}

// Lock acquires the lock, spinning until it is free.
func (l *Lock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock if it is free.
func (l *Lock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock.
func (l *Lock) Unlock() {
	l.state.Store(0)
}
