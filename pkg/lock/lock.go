// Package lock provides mutual exclusion for instance traversals: at most
// one Execute call may drive a given instance at a time.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired means another holder currently owns the lock.
var ErrNotAcquired = errors.New("lock not acquired")

// Release frees an acquired lock. Releasing an expired lock is a no-op.
type Release func(ctx context.Context) error

// Locker acquires named locks with a bounded lifetime. The TTL caps how long
// a crashed holder can block others.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// InstanceKey is the lock key for one running instance.
func InstanceKey(instanceID string) string {
	return "workflow:instance:" + instanceID
}
