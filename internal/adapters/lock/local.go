package lock

import (
	"context"
	"fmt"
	"sync"

	"campusevents/internal/domain"
)

type localEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker serializes per-key work inside one process. Entries are dropped once no
// goroutine holds or waits on them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

// NewLocalLocker returns an in-process EventLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: make(map[string]*localEntry)}
}

var _ domain.EventLocker = (*LocalLocker)(nil)

// Lock blocks until eventID is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[eventID]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[eventID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(eventID, e)
		return nil, fmt.Errorf("wait for event lock: %w: %w", domain.ErrConflict, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(eventID, e)
		})
	}, nil
}

func (l *LocalLocker) release(eventID string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, eventID)
	}
}
