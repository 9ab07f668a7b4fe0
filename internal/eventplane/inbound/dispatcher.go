// Package inbound routes bus-delivered envelopes into the saga
// coordinator: correlation-id validation, payload sanity checking, event
// type mapping, and ack/nak decisions driven by how the coordinator
// handles the resulting command.
package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallethub/eventcore/internal/eventplane/envelope"
	"github.com/wallethub/eventcore/internal/eventplane/metrics"
	"github.com/wallethub/eventcore/internal/eventplane/saga"
	"github.com/wallethub/eventcore/internal/eventplane/trace"
)

// eventTypeMapping is the closed set of wire event types this dispatcher
// understands, and the saga event each one drives.
// "transaction.completed" is raised by every transaction type (deposit,
// withdraw, payout, fee, refund, adjustment), not only transfers, so it is
// deliberately absent here - mapping it to EventFundsTransferred would
// misroute a plain credit or debit straight into a transition the FSM only
// allows from FUNDS_WITHDRAWN. Only a wallet-to-wallet transfer's distinct
// "transaction.transfer_completed" type represents that step.
var eventTypeMapping = map[string]saga.Event{
	"wallet.created":                 saga.EventWalletCreated,
	"wallet.credited":                saga.EventFundsAdded,
	"wallet.debited":                 saga.EventFundsWithdrawn,
	"transaction.transfer_completed": saga.EventFundsTransferred,
}

// mapTypeToSagaEvent resolves an envelope's CloudEvents type to the saga
// event it represents.
func mapTypeToSagaEvent(eventType string) (saga.Event, bool) {
	ev, ok := eventTypeMapping[eventType]
	return ev, ok
}

// Coordinator is the subset of *saga.Coordinator the dispatcher depends
// on, narrowed so this package can be tested without the full saga store.
type Coordinator interface {
	Handle(ctx context.Context, cmd saga.Command) error
}

// Dispatcher routes envelopes delivered by the message bus to the saga
// coordinator. Its Handle method is a ports.MessageHandler.
type Dispatcher struct {
	coordinator Coordinator
	propagator  *trace.Propagator
	logger      *slog.Logger
}

// New builds a Dispatcher. logger may be nil, in which case slog.Default
// is used.
func New(coordinator Coordinator, propagator *trace.Propagator, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{coordinator: coordinator, propagator: propagator, logger: logger}
}

// Handle implements ports.MessageHandler. A nil return acks the envelope
// positively; any other return signals the bus to redeliver.
func (d *Dispatcher) Handle(ctx context.Context, env *envelope.Envelope) error {
	result := d.propagator.Extract(ctx, env)
	ctx = result.Context
	metrics.ObserveConsumerLag(env.Source, time.Duration(result.LagMillis)*time.Millisecond)

	correlationID := env.CorrelationID()
	if correlationID == "" {
		// No saga instance is created for an empty id - the delivery has
		// been handled (there is nothing more to do for this workflow),
		// it simply never reached the coordinator.
		metrics.RecordInboundMissingCorrelationID(env.Type)
		d.logger.Warn("inbound: envelope missing correlationid, dropping", "envelope_id", env.ID, "type", env.Type)
		return nil
	}

	if !json.Valid(env.Data) {
		metrics.RecordInboundDeserializeFailed(env.Type)
		d.logger.Error("inbound: envelope payload is not valid JSON", "envelope_id", env.ID, "type", env.Type)
		return fmt.Errorf("inbound: envelope %s: payload is not valid JSON", env.ID)
	}

	sagaEvent, ok := mapTypeToSagaEvent(env.Type)
	if !ok {
		// An unmapped type is not a transient failure - redelivery will
		// never resolve it. Ack positively after counting it so the bus
		// does not spin forever on a delivery nobody can route.
		metrics.RecordInboundUnmappedEventType(env.Type)
		d.logger.Warn("inbound: envelope type has no saga event mapping, dropping", "envelope_id", env.ID, "type", env.Type)
		return nil
	}

	return d.coordinator.Handle(ctx, saga.Command{
		SagaID:     correlationID,
		Event:      sagaEvent,
		EnvelopeID: env.ID,
	})
}
