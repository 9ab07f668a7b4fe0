// Package postgres - OutboxStore backed by a plain append-only table.
//
// Transactional outbox: Append runs inside the caller's enclosing
// transaction so a domain write and the event it produces commit or
// roll back together. ListUnsent/MarkSent run from the dispatcher's own
// connection, outside any domain transaction.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/domain/events"
	"github.com/wallethub/eventcore/internal/eventplane/outbox"
)

var _ ports.OutboxStore = (*OutboxRepository)(nil)
var _ ports.EventPublisher = (*OutboxRepository)(nil)

// OutboxRepository implements ports.OutboxStore over the `outbox` table,
// and ports.EventPublisher as a thin adapter over the same Append so
// existing use cases that publish through EventPublisher keep working
// unchanged.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository builds an OutboxRepository over pool.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Append inserts a pending record. Must be called with a context carrying
// the caller's transaction (see UnitOfWork) so the insert commits or
// rolls back with the domain write it accompanies.
func (r *OutboxRepository) Append(ctx context.Context, eventType string, payload []byte, correlationID string) (int64, error) {
	if eventType == "" {
		return 0, fmt.Errorf("outbox: event_type is required")
	}
	q := r.getQuerier(ctx)

	var corrID *string
	if correlationID != "" {
		corrID = &correlationID
	}

	const query = `
		INSERT INTO outbox (event_type, payload, correlation_id, created_at, sent)
		VALUES ($1, $2, $3, now(), false)
		RETURNING id
	`
	var id int64
	if err := q.QueryRow(ctx, query, eventType, payload, corrID).Scan(&id); err != nil {
		return 0, fmt.Errorf("outbox: append: %w", err)
	}
	return id, nil
}

// ListUnsent returns up to limit unsent records, oldest id first,
// reserving each returned row with FOR UPDATE SKIP LOCKED so concurrent
// dispatcher processes do not redundantly claim the same record.
func (r *OutboxRepository) ListUnsent(ctx context.Context, limit int) ([]outbox.Record, error) {
	q := r.getQuerier(ctx)

	const query = `
		SELECT id, event_type, payload, correlation_id, created_at, sent
		FROM outbox
		WHERE sent = false
		ORDER BY id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: list unsent: %w", err)
	}
	defer rows.Close()

	var records []outbox.Record
	for rows.Next() {
		var (
			rec    outbox.Record
			corrID *string
		)
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload, &corrID, &rec.CreatedAt, &rec.Sent); err != nil {
			return nil, fmt.Errorf("outbox: scan row: %w", err)
		}
		if corrID != nil {
			rec.CorrelationID = *corrID
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox: iterate rows: %w", err)
	}
	return records, nil
}

// MarkSent flips sent=true for id. Idempotent: a second call affects zero
// rows and returns no error.
func (r *OutboxRepository) MarkSent(ctx context.Context, id int64) error {
	q := r.getQuerier(ctx)

	const query = `UPDATE outbox SET sent = true WHERE id = $1 AND sent = false`
	if _, err := q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("outbox: mark sent %d: %w", id, err)
	}
	return nil
}

// CleanupSent deletes sent rows older than olderThan. The core never
// calls this on its own drain path; it exists for an operator-triggered
// or scheduled retention job.
func (r *OutboxRepository) CleanupSent(ctx context.Context, olderThan time.Duration) (int64, error) {
	q := r.getQuerier(ctx)

	cutoff := time.Now().Add(-olderThan)
	const query = `DELETE FROM outbox WHERE sent = true AND created_at < $1`
	result, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox: cleanup sent: %w", err)
	}
	return result.RowsAffected(), nil
}

// Publish adapts a single DomainEvent onto Append, preserving the
// EventPublisher contract use cases already call inside a UnitOfWork.
func (r *OutboxRepository) Publish(ctx context.Context, event events.DomainEvent) error {
	eventType, payload, correlationID, err := outbox.FromDomainEvent(event)
	if err != nil {
		return err
	}
	_, err = r.Append(ctx, eventType, payload, correlationID)
	return err
}

// PublishBatch appends each event in turn. If any append fails the
// caller's enclosing transaction rolls back the whole batch along with
// it - there is no separate batch atomicity to implement here.
func (r *OutboxRepository) PublishBatch(ctx context.Context, eventsList []events.DomainEvent) error {
	for _, event := range eventsList {
		if err := r.Publish(ctx, event); err != nil {
			return fmt.Errorf("outbox: publish batch, event %s: %w", event.EventType(), err)
		}
	}
	return nil
}
