package services

import "sync"

// SessionLocks serializes work on one cart. Entries are dropped once no
// goroutine holds or waits for them.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until the cart is free and returns the matching unlock.
func (l *SessionLocks) Lock(cartID string) func() {
	l.mu.Lock()
	e, ok := l.locks[cartID]
	if !ok {
		e = &sessionLock{}
		l.locks[cartID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, cartID)
		}
		l.mu.Unlock()
	}
}

func (l *SessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
