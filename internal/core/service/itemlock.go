package service

import (
	"context"
	"sync"
)

// itemLocks serializes work per key. Waiters are admitted in arrival order
// and give up when their context ends. Entries are dropped once unused.
type itemLocks struct {
	mu    sync.Mutex
	locks map[string]*itemLock
}

type itemLock struct {
	ch   chan struct{}
	refs int
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[string]*itemLock)}
}

func (l *itemLocks) acquire(ctx context.Context, key string) (release func(), err error) {
	l.mu.Lock()
	il, ok := l.locks[key]
	if !ok {
		il = &itemLock{ch: make(chan struct{}, 1)}
		l.locks[key] = il
	}
	il.refs++
	l.mu.Unlock()

	select {
	case il.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-il.ch
				l.drop(key, il)
			})
		}, nil
	case <-ctx.Done():
		l.drop(key, il)
		return nil, ctx.Err()
	}
}

func (l *itemLocks) drop(key string, il *itemLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	il.refs--
	if il.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *itemLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
