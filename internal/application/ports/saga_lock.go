// Package ports - SagaLock lets the coordinator cut down on wasted
// optimistic-concurrency retries when more than one dispatcher replica
// handles the same saga id concurrently. It is an optimization, not a
// correctness requirement - Save's version check is what actually
// prevents a lost update.
package ports

import "context"

// SagaLock acquires a short-lived advisory lock keyed by saga id. Unlock
// is always safe to call, including after the lock has expired.
type SagaLock interface {
	// TryLock attempts to acquire the lock for key. ok is false if another
	// holder currently has it; callers should proceed without the lock
	// rather than block, since Save's optimistic check is the real guard.
	TryLock(ctx context.Context, key string) (unlock func(context.Context), ok bool, err error)
}
