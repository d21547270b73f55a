package locker

import (
	"context"
	"sync"
)

// NewLocal returns an in-process locker. It serves single-node deployments
// and tests; multi-node setups need the redis locker.
func NewLocal() *localLocker {
	return &localLocker{held: make(map[string]struct{})}
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (l *localLocker) Acquire(_ context.Context, keys []string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		if _, busy := l.held[key]; busy {
			return nil, ErrNotAcquired
		}
	}

	for _, key := range keys {
		l.held[key] = struct{}{}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for _, key := range keys {
				delete(l.held, key)
			}
		})
	}, nil
}
