package services

import "sync"

// UserLocker serialises mutations per user inside one process. Database row
// locks on progression_accounts cover the multi-process case.
type UserLocker struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[uint]*userLock)}
}

// Lock blocks until the user's critical section is free and returns the
// matching unlock. Entries are dropped once nobody holds or waits on them.
func (l *UserLocker) Lock(userID uint) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *UserLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
