// Package binding implements the closed event-type to destination mapping
// the dispatcher resolves against before publishing. The registry is
// read-mostly: it is constructed once at startup and never mutated
// afterwards.
package binding

import "fmt"

// Binding pairs an event type with the destination it publishes to.
type Binding struct {
	EventType   string
	Destination string
}

// Registry is a closed, read-only mapping from event type to destination.
// An event type with no binding is a fatal configuration error at
// construction time - not something the dispatcher discovers and skips
// one record at a time.
type Registry struct {
	byType map[string]string
}

// New builds a Registry from the given bindings. Duplicate event types or
// an empty registry are configuration errors.
func New(bindings ...Binding) (*Registry, error) {
	if len(bindings) == 0 {
		return nil, fmt.Errorf("binding: registry must declare at least one binding")
	}
	r := &Registry{byType: make(map[string]string, len(bindings))}
	for _, b := range bindings {
		if b.EventType == "" || b.Destination == "" {
			return nil, fmt.Errorf("binding: event type and destination must be non-empty")
		}
		if _, exists := r.byType[b.EventType]; exists {
			return nil, fmt.Errorf("binding: duplicate binding for event type %q", b.EventType)
		}
		r.byType[b.EventType] = b.Destination
	}
	return r, nil
}

// ErrNotBound is returned by Resolve when an event type has no binding.
// The dispatcher treats this as a non-retriable skip: it increments a
// metric and logs a warning, but must not crash the worker nor delete
// the outbox record.
var ErrNotBound = fmt.Errorf("binding: event type not bound to any destination")

// Resolve returns the destination for an event type, or ErrNotBound.
func (r *Registry) Resolve(eventType string) (string, error) {
	dest, ok := r.byType[eventType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotBound, eventType)
	}
	return dest, nil
}

// EventTypes returns the closed set of event types this registry knows
// about, in no particular order. Useful for diagnostics and tests.
func (r *Registry) EventTypes() []string {
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	return types
}

// Default destination names for the wallethub domain events. Additional
// bindings are added here at build time - the channel-name convention
// `eventType + "-out-0"` some legacy code paths imply is explicitly not
// the authoritative path.
const (
	DestinationWalletCreated    = "wallet-created"
	DestinationFundsAdded       = "funds-added"
	DestinationFundsWithdrawn   = "funds-withdrawn"
	DestinationFundsTransferred = "funds-transferred"
)

// NewDefault builds the registry with the minimum closed enumeration of
// domain event types, plus the compensation event types the saga
// coordinator emits when a workflow fails.
func NewDefault() (*Registry, error) {
	return New(
		Binding{EventType: "wallet.created", Destination: DestinationWalletCreated},
		Binding{EventType: "wallet.credited", Destination: DestinationFundsAdded},
		Binding{EventType: "wallet.debited", Destination: DestinationFundsWithdrawn},
		// "transaction.completed" is raised by every transaction type, not
		// only transfers - it still reaches this destination so any future
		// non-saga consumer can see it, but only the distinct
		// "transaction.transfer_completed" type actually drives the saga
		// (see internal/eventplane/inbound's eventTypeMapping).
		Binding{EventType: "transaction.completed", Destination: DestinationFundsTransferred},
		Binding{EventType: "transaction.transfer_completed", Destination: DestinationFundsTransferred},
		Binding{EventType: "wallet.credit.compensated", Destination: DestinationFundsWithdrawn},
		Binding{EventType: "wallet.debit.compensated", Destination: DestinationFundsAdded},
	)
}
