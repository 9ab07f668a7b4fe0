package saga

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/metrics"
)

// defaultOptimisticRetryCap bounds how many times Handle retries its
// read-compute-write cycle after a version conflict before escalating
// the instance to FAILED.
const defaultOptimisticRetryCap = 5

// compensationEventType maps a forward transition's event to the event
// type its compensation is published as. Only FUNDS_ADDED and
// FUNDS_WITHDRAWN have a compensating action; WALLET_CREATED and
// FUNDS_TRANSFERRED do not undo anything on their own.
var compensationEventType = map[Event]string{
	EventFundsAdded:     "wallet.credit.compensated",
	EventFundsWithdrawn: "wallet.debit.compensated",
}

// Command is what the inbound dispatcher submits to the coordinator for
// one delivered envelope.
type Command struct {
	SagaID     string
	Event      Event
	EnvelopeID string
}

// Coordinator applies inbound commands to saga instances: one durable
// read-compute-write cycle per command, with idempotent replay handling,
// optimistic concurrency, and compensation on entering FAILED.
type Coordinator struct {
	store              ports.SagaStore
	outbox             ports.OutboxStore
	lock               ports.SagaLock
	optimisticRetryCap int
	logger             *slog.Logger
	now                func() time.Time
}

// Option configures a Coordinator at construction.
type Option func(*Coordinator)

// WithOptimisticRetryCap overrides defaultOptimisticRetryCap.
func WithOptimisticRetryCap(cap int) Option {
	return func(c *Coordinator) {
		if cap > 0 {
			c.optimisticRetryCap = cap
		}
	}
}

// WithLock attaches an advisory lock that cuts down on wasted optimistic
// retries when more than one dispatcher replica handles the same saga id
// concurrently. It is never required for correctness - Save's version
// check is what actually prevents a lost update - so Handle proceeds
// without it whenever TryLock fails or is not configured.
func WithLock(lock ports.SagaLock) Option {
	return func(c *Coordinator) {
		c.lock = lock
	}
}

// New builds a Coordinator. logger may be nil, in which case
// slog.Default is used.
func New(store ports.SagaStore, outbox ports.OutboxStore, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		store:              store,
		outbox:             outbox,
		optimisticRetryCap: defaultOptimisticRetryCap,
		logger:             logger,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle applies cmd to the named saga instance, creating it on first
// sight. It returns an error only for storage failures the caller should
// treat as not-yet-acked; every other outcome - accepted transition,
// idempotent duplicate, invalid transition, or an exhausted-retry
// escalation to FAILED - is a handled outcome the caller acks positively.
func (c *Coordinator) Handle(ctx context.Context, cmd Command) error {
	if c.lock != nil {
		if unlock, ok, err := c.lock.TryLock(ctx, cmd.SagaID); err != nil {
			c.logger.Warn("saga: lock acquire failed, proceeding without it", "saga_id", cmd.SagaID, "error", err)
		} else if ok {
			defer unlock(ctx)
		}
	}

	for attempt := 0; attempt <= c.optimisticRetryCap; attempt++ {
		instance, err := c.store.Load(ctx, cmd.SagaID)
		if errors.Is(err, ports.ErrSagaNotFound) {
			instance = NewInstance(cmd.SagaID, c.now())
		} else if err != nil {
			return err
		}
		expectedVersion := instance.Version

		if instance.ProcessedIDs.Contains(cmd.EnvelopeID) {
			return nil
		}

		from := instance.State
		to, valid := Next(from, cmd.Event)
		if !valid {
			metrics.RecordSagaInvalidTransition(string(from), string(cmd.Event))
			c.logger.Warn("saga: invalid transition, ignoring",
				"saga_id", cmd.SagaID, "from", from, "event", cmd.Event)
			return nil
		}

		now := c.now()
		instance.History = append(instance.History, TransitionRecord{From: from, Event: cmd.Event, To: to, OccurredAt: now})
		instance.State = to
		instance.LastEventType = string(cmd.Event)
		instance.ProcessedIDs.Add(cmd.EnvelopeID)
		instance.Version = expectedVersion + 1
		instance.UpdatedAt = now
		if instance.StartedAt.IsZero() {
			instance.StartedAt = now
		}

		err = c.store.Save(ctx, instance, expectedVersion)
		if errors.Is(err, ports.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}

		metrics.RecordSagaTransition(string(from), string(to), string(cmd.Event))

		if to == StateFailed {
			c.compensate(ctx, instance)
			return nil
		}
		if to == StateFundsTransferred {
			// FUNDS_TRANSFERRED is the last externally driven step; the
			// coordinator advances to COMPLETED on its own rather than
			// waiting on a bus delivery that never arrives.
			return c.Handle(ctx, Command{SagaID: cmd.SagaID, Event: EventSagaCompleted, EnvelopeID: cmd.EnvelopeID + "-completed"})
		}
		return nil
	}

	return c.forceFail(ctx, cmd.SagaID, "optimistic concurrency retries exhausted")
}

// forceFail writes FAILED for sagaID regardless of its declared
// transition table - used only when Handle's own retry budget is
// exhausted, since normal SAGA_FAILED delivery already goes through
// Handle like any other command.
func (c *Coordinator) forceFail(ctx context.Context, sagaID, reason string) error {
	for attempt := 0; attempt <= c.optimisticRetryCap; attempt++ {
		instance, err := c.store.Load(ctx, sagaID)
		if errors.Is(err, ports.ErrSagaNotFound) {
			instance = NewInstance(sagaID, c.now())
		} else if err != nil {
			return err
		}
		if instance.State.Terminal() {
			return nil
		}
		expectedVersion := instance.Version
		from := instance.State
		now := c.now()
		instance.History = append(instance.History, TransitionRecord{From: from, Event: EventSagaFailed, To: StateFailed, OccurredAt: now})
		instance.State = StateFailed
		instance.LastEventType = string(EventSagaFailed)
		instance.Version = expectedVersion + 1
		instance.UpdatedAt = now

		err = c.store.Save(ctx, instance, expectedVersion)
		if errors.Is(err, ports.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return err
		}
		c.logger.Error("saga: force-failed", "saga_id", sagaID, "reason", reason)
		metrics.RecordSagaTransition(string(from), string(StateFailed), string(EventSagaFailed))
		c.compensate(ctx, instance)
		return nil
	}
	return errors.New("saga: force-fail could not settle version conflicts")
}

// compensate emits one compensation event per compensable step in
// instance's history, newest first. Each emitted event travels the
// outbox like any domain event, so compensation is exactly as durable as
// the forward path. A failed append is logged, not retried here - the
// next trigger into FAILED (there should be none, since FAILED is
// terminal) is not relied upon; operators re-run compensation manually
// if this ever fires for a storage outage.
func (c *Coordinator) compensate(ctx context.Context, instance *Instance) {
	metrics.RecordSagaCompensationStarted(instance.SagaID)

	for i := len(instance.History) - 1; i >= 0; i-- {
		rec := instance.History[i]
		eventType, ok := compensationEventType[rec.Event]
		if !ok {
			continue
		}
		payload, err := json.Marshal(compensationPayload{SagaID: instance.SagaID, Compensates: string(rec.Event)})
		if err != nil {
			c.logger.Error("saga: compensation payload marshal failed", "saga_id", instance.SagaID, "event", rec.Event, "error", err)
			continue
		}
		if _, err := c.outbox.Append(ctx, eventType, payload, instance.SagaID); err != nil {
			c.logger.Error("saga: compensation append failed", "saga_id", instance.SagaID, "event", rec.Event, "error", err)
		}
	}
}

type compensationPayload struct {
	SagaID      string `json:"saga_id"`
	Compensates string `json:"compensates"`
}
