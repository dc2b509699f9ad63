// Package sleeplock provides the long-held exclusive lock guarding each
// buffer's payload. Unlike a plain mutex it is meant to be held across
// blocking device I/O, and it can report whether it is currently held so
// callers can enforce lock discipline.
package sleeplock

import "sync"

// Lock is an exclusive lock with exactly one holder at a time.
// Waiters are suspended (not spinning) until the holder releases.
// The zero value is an unlocked lock ready for use.
type Lock struct {
	mu   sync.Mutex
	cond *sync.Cond
	held bool
}

// Lock blocks the calling goroutine until the lock is obtained.
// There is no timeout and no cancellation; the cache's lock ordering
// guarantees the holder eventually releases.
func (l *Lock) Lock() {
	l.mu.Lock()
	if l.cond == nil {
		l.cond = sync.NewCond(&l.mu)
	}
	for l.held {
		l.cond.Wait()
	}
	l.held = true
	l.mu.Unlock()
}

// Unlock releases the lock and wakes one waiter.
// Unlocking a lock that is not held is a caller bug and panics.
func (l *Lock) Unlock() {
	l.mu.Lock()
	if !l.held {
		l.mu.Unlock()
		panic("sleeplock: unlock of unlocked lock")
	}
	l.held = false
	if l.cond != nil {
		l.cond.Signal()
	}
	l.mu.Unlock()
}

// Held reports whether the lock is currently held by someone.
// Goroutines carry no identity, so this cannot name the holder; it is
// still enough for the "must hold the buffer" checks on the write and
// release paths, where a false result always means a caller bug.
func (l *Lock) Held() bool {
	l.mu.Lock()
	h := l.held
	l.mu.Unlock()
	return h
}
