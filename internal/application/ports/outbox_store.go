// Package ports - OutboxStore is the durable, transaction-participating
// record of pending events the dispatcher drains.
//
// SOLID Principles:
// - DIP: the application layer never imports pgx or any broker client
// - ISP: three narrow methods, one per lifecycle stage of a record
package ports

import (
	"context"
	"time"

	"github.com/wallethub/eventcore/internal/eventplane/outbox"
)

// OutboxStore persists OutboxRecords as part of the caller's enclosing
// transaction and lets the dispatcher drain them independently.
//
// Append must run inside the same transaction as the domain write it
// accompanies - callers reach it through a UnitOfWork-bound context so a
// storage failure rolls back the domain change with it. ListUnsent and
// MarkSent run outside any domain transaction, from the dispatcher's own
// scheduling loop.
type OutboxStore interface {
	// Append records a pending event. eventType must be non-empty.
	// correlationID may be empty when the event does not belong to a saga
	// workflow. Returns the assigned monotonic id.
	Append(ctx context.Context, eventType string, payload []byte, correlationID string) (int64, error)

	// ListUnsent returns up to limit unsent records ordered oldest-id
	// first. Implementations backed by a shared table must use row-level
	// reservation (e.g. SELECT ... FOR UPDATE SKIP LOCKED) so more than
	// one dispatcher process can drain concurrently without double-send.
	ListUnsent(ctx context.Context, limit int) ([]outbox.Record, error)

	// MarkSent flips a record's sent flag. Idempotent: calling it twice
	// for the same id is not an error.
	MarkSent(ctx context.Context, id int64) error

	// CleanupSent deletes sent records older than olderThan, returning the
	// number removed. Retention is an operational concern, not part of
	// the core drain loop; callers invoke this from a maintenance job.
	CleanupSent(ctx context.Context, olderThan time.Duration) (int64, error)
}
