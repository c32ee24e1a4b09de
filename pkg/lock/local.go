package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process Locker for single-node deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	holds map[string]time.Time
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{holds: make(map[string]time.Time)}
}

// Acquire takes the named lock unless a live hold exists. Expired holds are
// reclaimed.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.holds[key]; held && time.Now().Before(expiry) {
		return nil, ErrNotAcquired
	}

	expiry := time.Now().Add(ttl)
	l.holds[key] = expiry

	release := func(_ context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		// Only release our own hold; a reclaimed lock belongs to someone else.
		if current, held := l.holds[key]; held && current.Equal(expiry) {
			delete(l.holds, key)
		}

		return nil
	}

	return release, nil
}
