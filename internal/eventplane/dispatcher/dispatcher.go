// Package dispatcher implements the scheduled worker that drains unsent
// outbox records, wraps each in a standardized envelope, and publishes it
// to the bus.
package dispatcher

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/binding"
	"github.com/wallethub/eventcore/internal/eventplane/envelope"
	"github.com/wallethub/eventcore/internal/eventplane/metrics"
	"github.com/wallethub/eventcore/internal/eventplane/trace"
)

// Config controls the dispatcher's scheduling and envelope construction.
type Config struct {
	// TickInterval is how often the dispatcher drains the outbox.
	TickInterval time.Duration
	// BatchSize bounds how many records one tick fetches.
	BatchSize int
	// SourceURI is stamped as every envelope's `source` attribute.
	SourceURI string
}

// DefaultConfig matches the dispatcher cadence assumed throughout the
// design: a five second tick draining up to 100 records.
func DefaultConfig() Config {
	return Config{
		TickInterval: 5 * time.Second,
		BatchSize:    100,
		SourceURI:    "urn:wallethub:eventplane",
	}
}

// Dispatcher periodically drains ports.OutboxStore and publishes each
// record through ports.MessageBus. Exactly one instance is expected to
// run per process; running more than one against the same store is safe
// only because ListUnsent reserves rows it returns.
type Dispatcher struct {
	store      ports.OutboxStore
	bus        ports.MessageBus
	bindings   *binding.Registry
	propagator *trace.Propagator
	cfg        Config
	logger     *slog.Logger
	lastTick   atomic.Int64 // unix nanos of the last completed Tick
}

// New builds a Dispatcher. logger may be nil, in which case slog.Default
// is used.
func New(store ports.OutboxStore, bus ports.MessageBus, bindings *binding.Registry, propagator *trace.Propagator, cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:      store,
		bus:        bus,
		bindings:   bindings,
		propagator: propagator,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run ticks until ctx is cancelled. It never returns a non-nil error
// except ctx.Err() on cancellation - a failed tick is logged and retried
// on the next interval, never fatal to the worker.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs one drain cycle. It is exported so tests and operator tooling
// can trigger a cycle without waiting for the ticker.
func (d *Dispatcher) Tick(ctx context.Context) {
	defer d.lastTick.Store(time.Now().UnixNano())

	records, err := d.store.ListUnsent(ctx, d.cfg.BatchSize)
	if err != nil {
		d.logger.Error("outbox: list unsent failed", "error", err)
		return
	}
	metrics.SetOutboxUnsentCount(len(records))

	for _, rec := range records {
		d.processRecord(ctx, rec.ID, rec.EventType, rec.Payload, rec.CorrelationID, rec.CreatedAt)
	}
}

// LastTick returns when Tick last completed, and whether it has run at
// all yet. Used by the operational health surface to detect a wedged or
// crashed dispatcher goroutine.
func (d *Dispatcher) LastTick() (time.Time, bool) {
	nanos := d.lastTick.Load()
	if nanos == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func (d *Dispatcher) processRecord(ctx context.Context, id int64, eventType string, payload []byte, correlationID string, createdAt time.Time) {
	destination, err := d.bindings.Resolve(eventType)
	if err != nil {
		metrics.RecordOutboxUnknownType(eventType)
		d.logger.Warn("outbox: event type not bound to any destination", "event_type", eventType, "id", id)
		return
	}

	env, err := envelope.New(strconv.FormatInt(id, 10), eventType, d.cfg.SourceURI, payload)
	if err != nil {
		// A record with empty payload or type never should have been
		// appended; surfacing it as a send failure keeps the row around
		// for inspection instead of silently dropping it.
		metrics.RecordOutboxSendFailed(destination)
		d.logger.Error("outbox: refused to build envelope", "id", id, "error", err)
		return
	}
	env.Time = createdAt
	if correlationID != "" {
		env.SetExtension(envelope.ExtCorrelationID, correlationID)
	}
	d.propagator.Inject(ctx, env)

	if err := env.Validate(); err != nil {
		metrics.RecordOutboxSendFailed(destination)
		d.logger.Error("outbox: envelope failed validation", "id", id, "error", err)
		return
	}

	if err := d.bus.Publish(ctx, destination, env); err != nil {
		metrics.RecordOutboxSendFailed(destination)
		d.logger.Warn("outbox: publish failed, will retry next tick", "id", id, "destination", destination, "error", err)
		return
	}

	if err := d.store.MarkSent(ctx, id); err != nil {
		// The broker already has the envelope; failing to flip the flag
		// only risks a harmless duplicate publish on the next tick.
		d.logger.Error("outbox: mark sent failed after successful publish", "id", id, "error", err)
		return
	}
	metrics.RecordOutboxSent(destination)
}
