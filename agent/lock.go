package agent

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sessionLocks serializes commands per session id. Entries are dropped once
// no command holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

func (s *sessionLocks) lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sessionLock)
	}
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{sem: semaphore.NewWeighted(1)}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		s.release(id, l)
		return nil, err
	}
	return func() {
		l.sem.Release(1)
		s.release(id, l)
	}, nil
}

func (s *sessionLocks) release(id string, l *sessionLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}
