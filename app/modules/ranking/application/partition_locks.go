package rankingservice

import (
	"context"
	"slices"
	"sync"
)

// partitionLocks serializes writers to the same partition within this
// process. Cross-process exclusion comes from the advisory lock the
// repository takes inside each write transaction.
type partitionLocks struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newPartitionLocks() *partitionLocks {
	return &partitionLocks{slots: make(map[string]*lockSlot)}
}

// acquire blocks until key is free or ctx is done. A ctx that is already
// done never gets the lock, even when key is free.
func (l *partitionLocks) acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				l.release(key, s)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}
}

// acquireAll takes every key in sorted order so two multi-key callers can
// never wait on each other in a cycle.
func (l *partitionLocks) acquireAll(ctx context.Context, keys []string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, key := range sorted {
		release, err := l.acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func (l *partitionLocks) release(key string, s *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have holders or waiters.
func (l *partitionLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
