package runlock

import (
	"context"
	"fmt"
	"sync"
)

// implements Locker within a single process
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key)
		return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

// drops the slot once nobody holds or waits on it
func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		return
	}

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
