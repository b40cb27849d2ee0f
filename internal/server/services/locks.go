package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/secretsanta/internal/common"
)

// ListLocks hands out one exclusive lock per list id. Draws take it with
// TryAcquireDraw and fail fast; mutations queue on it with Acquire. Entries
// are reference counted and dropped once nobody holds or waits on them.
type ListLocks struct {
	mu    sync.Mutex
	locks map[string]*listLock
}

type listLock struct {
	sem  chan struct{}
	refs int
	// drawing is true while a draw holds sem. Guarded by ListLocks.mu.
	drawing bool
}

func NewListLocks() *ListLocks {
	return &ListLocks{locks: make(map[string]*listLock)}
}

func (l *ListLocks) ref(id string) *listLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[id]
	if !ok {
		lk = &listLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	return lk
}

func (l *ListLocks) unref(id string, lk *listLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *ListLocks) releaser(id string, lk *listLock) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// sem is held by us, so the receive never blocks.
			l.mu.Lock()
			lk.drawing = false
			<-lk.sem
			l.mu.Unlock()
			l.unref(id, lk)
		})
	}
}

// TryAcquire takes the lock of list id if it is free. The returned release
// func is safe to call more than once.
func (l *ListLocks) TryAcquire(id string) (release func(), ok bool) {
	release, _, ok = l.tryAcquire(id, false)
	return release, ok
}

// TryAcquireDraw takes the lock of list id for a draw. A busy lock yields
// common.ErrAlreadyInProgress when another draw holds it and
// common.ErrListBusy when a participant mutation does.
func (l *ListLocks) TryAcquireDraw(id string) (release func(), err error) {
	release, drawing, ok := l.tryAcquire(id, true)
	switch {
	case ok:
		return release, nil
	case drawing:
		return nil, common.ErrAlreadyInProgress
	default:
		return nil, common.ErrListBusy
	}
}

// tryAcquire attempts the lock and marks the holder kind under l.mu, so a
// failed attempt always sees who holds it.
func (l *ListLocks) tryAcquire(id string, draw bool) (release func(), drawing, ok bool) {
	l.mu.Lock()
	lk, found := l.locks[id]
	if !found {
		lk = &listLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	select {
	case lk.sem <- struct{}{}:
		lk.refs++
		lk.drawing = draw
		l.mu.Unlock()
		return l.releaser(id, lk), false, true
	default:
		drawing = lk.drawing
		l.mu.Unlock()
		return nil, drawing, false
	}
}

// Acquire blocks until the lock of list id is free or ctx is done.
func (l *ListLocks) Acquire(ctx context.Context, id string) (release func(), err error) {
	lk := l.ref(id)
	select {
	case lk.sem <- struct{}{}:
		return l.releaser(id, lk), nil
	case <-ctx.Done():
		l.unref(id, lk)
		return nil, ctx.Err()
	}
}

// Len reports how many list ids currently have a lock entry.
func (l *ListLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
