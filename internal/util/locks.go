package util

import (
	"sync"
)

// GuardedLock is a mutex which hands out guards, so that a function may
// release the lock in the middle of its body and still keep a single
// deferred UnlockIfLocked as the cleanup path.
type GuardedLock struct {
	lock sync.Mutex
}

func (l *GuardedLock) Lock() LockGuard {
	lock := LockGuard{lock: &l.lock}
	lock.Lock()
	return lock //nolint:govet
}

type LockGuard struct {
	lock   *sync.Mutex
	locked bool
}

func (l *LockGuard) Lock() {
	l.lock.Lock()
	l.locked = true
}

func (l *LockGuard) Unlock() {
	l.lock.Unlock()
	l.locked = false
}

func (l *LockGuard) UnlockIfLocked() {
	if l.locked {
		l.Unlock()
	}
}
