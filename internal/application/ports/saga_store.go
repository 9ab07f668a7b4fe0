// Package ports - SagaStore is the durable interface the saga
// coordinator depends on. The coordinator never imports a storage
// driver directly; Load/Save are the only shape it needs, whatever
// backs them (relational, a KV store, an embedded log).
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/wallethub/eventcore/internal/eventplane/saga"
)

// ErrSagaNotFound is returned by Load when no instance exists for a
// saga id yet.
var ErrSagaNotFound = errors.New("saga: instance not found")

// ErrVersionConflict is returned by Save when the stored version no
// longer matches expectedVersion - another writer mutated the instance
// concurrently. The coordinator retries its read-compute-write cycle on
// this error, up to a configured cap.
var ErrVersionConflict = errors.New("saga: version conflict")

// SagaStore persists saga.Instance state across process restarts.
type SagaStore interface {
	// Load returns the current instance for sagaID, or ErrSagaNotFound.
	Load(ctx context.Context, sagaID string) (*saga.Instance, error)

	// Save writes instance conditional on the stored version matching
	// expectedVersion, then advances it to instance.Version. A mismatch
	// returns ErrVersionConflict without writing.
	Save(ctx context.Context, instance *saga.Instance, expectedVersion int64) error

	// ListStale returns every non-terminal instance whose UpdatedAt is
	// older than cutoff, for the timeout reaper to force-fail.
	ListStale(ctx context.Context, cutoff time.Time) ([]*saga.Instance, error)
}
