// Package postgres - SagaStore backed by a single row per instance,
// guarded by an optimistic version column.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/saga"
)

var _ ports.SagaStore = (*SagaRepository)(nil)

// SagaRepository implements ports.SagaStore over the saga_instances table.
type SagaRepository struct {
	pool *pgxpool.Pool
}

// NewSagaRepository builds a SagaRepository over pool.
func NewSagaRepository(pool *pgxpool.Pool) *SagaRepository {
	return &SagaRepository{pool: pool}
}

func (r *SagaRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Load returns the current instance for sagaID, or ports.ErrSagaNotFound.
func (r *SagaRepository) Load(ctx context.Context, sagaID string) (*saga.Instance, error) {
	q := r.getQuerier(ctx)

	const query = `
		SELECT saga_id, state, version, started_at, updated_at, last_event_type,
		       processed_event_ids, history
		FROM saga_instances
		WHERE saga_id = $1
	`
	var (
		inst         saga.Instance
		processedRaw []byte
		historyRaw   []byte
	)
	err := q.QueryRow(ctx, query, sagaID).Scan(
		&inst.SagaID, &inst.State, &inst.Version, &inst.StartedAt, &inst.UpdatedAt,
		&inst.LastEventType, &processedRaw, &historyRaw,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrSagaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("saga: load %s: %w", sagaID, err)
	}

	var ids []string
	if err := json.Unmarshal(processedRaw, &ids); err != nil {
		return nil, fmt.Errorf("saga: decode processed_event_ids for %s: %w", sagaID, err)
	}
	// 0 asks NewProcessedIDs for its default bounded capacity rather than
	// sizing the LRU to however many ids happen to be persisted - using
	// len(ids) here would pin capacity at whatever was last saved (1,
	// after the very first reload) and start evicting on every Add.
	inst.ProcessedIDs = saga.NewProcessedIDs(0)
	for _, id := range ids {
		inst.ProcessedIDs.Add(id)
	}

	if err := json.Unmarshal(historyRaw, &inst.History); err != nil {
		return nil, fmt.Errorf("saga: decode history for %s: %w", sagaID, err)
	}

	return &inst, nil
}

// Save writes instance conditional on the stored version matching
// expectedVersion. A first-sight instance (expectedVersion == 0) is
// inserted; any other write is a conditional UPDATE that reports
// ports.ErrVersionConflict when it touches zero rows.
func (r *SagaRepository) Save(ctx context.Context, instance *saga.Instance, expectedVersion int64) error {
	q := r.getQuerier(ctx)

	processedRaw, err := json.Marshal(instance.ProcessedIDs.Slice())
	if err != nil {
		return fmt.Errorf("saga: encode processed_event_ids for %s: %w", instance.SagaID, err)
	}
	historyRaw, err := json.Marshal(instance.History)
	if err != nil {
		return fmt.Errorf("saga: encode history for %s: %w", instance.SagaID, err)
	}

	if expectedVersion == 0 {
		const insert = `
			INSERT INTO saga_instances
				(saga_id, state, version, started_at, updated_at, last_event_type, processed_event_ids, history)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (saga_id) DO NOTHING
		`
		tag, err := q.Exec(ctx, insert,
			instance.SagaID, instance.State, instance.Version, instance.StartedAt, instance.UpdatedAt,
			instance.LastEventType, processedRaw, historyRaw,
		)
		if err != nil {
			return fmt.Errorf("saga: insert %s: %w", instance.SagaID, err)
		}
		if tag.RowsAffected() == 0 {
			return ports.ErrVersionConflict
		}
		return nil
	}

	const update = `
		UPDATE saga_instances
		SET state = $1, version = $2, updated_at = $3, last_event_type = $4,
		    processed_event_ids = $5, history = $6
		WHERE saga_id = $7 AND version = $8
	`
	tag, err := q.Exec(ctx, update,
		instance.State, instance.Version, instance.UpdatedAt, instance.LastEventType,
		processedRaw, historyRaw, instance.SagaID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("saga: update %s: %w", instance.SagaID, err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrVersionConflict
	}
	return nil
}

// ListStale returns every non-terminal instance last updated before
// cutoff, for the timeout reaper.
func (r *SagaRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*saga.Instance, error) {
	q := r.getQuerier(ctx)

	const query = `
		SELECT saga_id, state, version, started_at, updated_at, last_event_type,
		       processed_event_ids, history
		FROM saga_instances
		WHERE state NOT IN ($1, $2) AND updated_at < $3
	`
	rows, err := q.Query(ctx, query, string(saga.StateCompleted), string(saga.StateFailed), cutoff)
	if err != nil {
		return nil, fmt.Errorf("saga: list stale: %w", err)
	}
	defer rows.Close()

	var out []*saga.Instance
	for rows.Next() {
		var (
			inst         saga.Instance
			processedRaw []byte
			historyRaw   []byte
		)
		if err := rows.Scan(
			&inst.SagaID, &inst.State, &inst.Version, &inst.StartedAt, &inst.UpdatedAt,
			&inst.LastEventType, &processedRaw, &historyRaw,
		); err != nil {
			return nil, fmt.Errorf("saga: scan stale row: %w", err)
		}

		var ids []string
		if err := json.Unmarshal(processedRaw, &ids); err != nil {
			return nil, fmt.Errorf("saga: decode processed_event_ids for %s: %w", inst.SagaID, err)
		}
		inst.ProcessedIDs = saga.NewProcessedIDs(0)
		for _, id := range ids {
			inst.ProcessedIDs.Add(id)
		}
		if err := json.Unmarshal(historyRaw, &inst.History); err != nil {
			return nil, fmt.Errorf("saga: decode history for %s: %w", inst.SagaID, err)
		}

		out = append(out, &inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("saga: iterate stale rows: %w", err)
	}
	return out, nil
}
