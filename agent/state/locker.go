package state

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Locker serializes read-modify-write of one session's context. Different
// sessions never contend. Entries are reference counted and dropped once the
// last holder or waiter leaves, so the table only holds active sessions.
type Locker struct {
	locks *xsync.MapOf[string, *sessionLock]
}

type sessionLock struct {
	sem  chan struct{}
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: xsync.NewMapOf[string, *sessionLock]()}
}

// Lock blocks until the session is free or ctx is done. The returned function
// releases the lock and must be called exactly once.
func (l *Locker) Lock(ctx context.Context, sessionID string) (func(), error) {
	lock, _ := l.locks.Compute(sessionID, func(old *sessionLock, loaded bool) (*sessionLock, bool) {
		if !loaded {
			old = &sessionLock{sem: make(chan struct{}, 1)}
		}
		old.refs++
		return old, false
	})

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID)
		return nil, ctx.Err()
	}

	return func() {
		<-lock.sem
		l.release(sessionID)
	}, nil
}

func (l *Locker) release(sessionID string) {
	l.locks.Compute(sessionID, func(old *sessionLock, loaded bool) (*sessionLock, bool) {
		if !loaded {
			return old, true
		}
		old.refs--
		return old, old.refs <= 0
	})
}

// Active reports how many sessions currently hold or wait for a lock.
func (l *Locker) Active() int {
	return l.locks.Size()
}
