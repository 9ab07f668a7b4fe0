package saga

import (
	"context"
	"log/slog"
	"time"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/metrics"
)

// DefaultTimeout is how long a saga instance may sit in a non-terminal
// state before the reaper force-fails it.
const DefaultTimeout = 30 * time.Minute

// Reaper periodically force-fails saga instances stuck in a non-terminal
// state longer than Timeout.
type Reaper struct {
	store        ports.SagaStore
	coordinator  *Coordinator
	timeout      time.Duration
	tickInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewReaper builds a Reaper. A zero timeout falls back to DefaultTimeout;
// a zero tickInterval checks every minute.
func NewReaper(store ports.SagaStore, coordinator *Coordinator, timeout, tickInterval time.Duration, logger *slog.Logger) *Reaper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{
		store:        store,
		coordinator:  coordinator,
		timeout:      timeout,
		tickInterval: tickInterval,
		logger:       logger,
		now:          time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick force-fails every instance that has been non-terminal for longer
// than Timeout. Exported so tests and operator tooling can trigger a
// sweep without waiting on the ticker.
func (r *Reaper) Tick(ctx context.Context) {
	cutoff := r.now().Add(-r.timeout)
	stale, err := r.store.ListStale(ctx, cutoff)
	if err != nil {
		r.logger.Error("saga: reaper failed to list stale instances", "error", err)
		return
	}

	for _, instance := range stale {
		if err := r.coordinator.Handle(ctx, Command{
			SagaID:     instance.SagaID,
			Event:      EventSagaFailed,
			EnvelopeID: "reaper-" + instance.SagaID,
		}); err != nil {
			r.logger.Error("saga: reaper force-fail failed", "saga_id", instance.SagaID, "error", err)
			continue
		}
		metrics.RecordSagaTimeout(string(instance.State))
	}
}
