package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across multiple replicas.
// The session manager acquires the lock before touching a stored session.
type DistributedLocker interface {
	// Lock acquires a distributed lock for the given key (the session ID).
	// It blocks until the lock is acquired or the context is cancelled.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
