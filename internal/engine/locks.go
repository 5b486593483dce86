package engine

import "sync"

// userLocks serializes all engine access to a single user's schedule
// state. The minute tick and the archival sweep both take the user's
// lock, so a reminder evaluation never races a date being archived away.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (u *userLocks) get(userID int64) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[userID] = l
	}
	return l
}
