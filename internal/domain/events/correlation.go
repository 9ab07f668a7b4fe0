package events

// CorrelatedEvent is a DomainEvent that also carries a correlation id
// tying it to a saga instance or an originating request. Most events
// never need this; only events participating in a saga-driven workflow
// are wrapped with Correlate before they reach the outbox.
type CorrelatedEvent interface {
	DomainEvent
	CorrelationID() string
}

// WithCorrelation wraps an existing DomainEvent with a correlation id
// without requiring any change to the wrapped event's own constructor.
type WithCorrelation struct {
	DomainEvent
	correlationID string
}

// Correlate attaches a correlation id to an event. The returned value
// still satisfies DomainEvent (via embedding) and additionally satisfies
// CorrelatedEvent, so existing handlers that only know about DomainEvent
// keep working unchanged.
func Correlate(event DomainEvent, correlationID string) *WithCorrelation {
	return &WithCorrelation{DomainEvent: event, correlationID: correlationID}
}

// CorrelationID returns the attached correlation id.
func (w *WithCorrelation) CorrelationID() string {
	return w.correlationID
}

// CorrelationIDOf extracts the correlation id from an event if it carries
// one, returning "" otherwise. Call sites that build outbox records use
// this rather than type-asserting directly.
func CorrelationIDOf(event DomainEvent) string {
	if ce, ok := event.(CorrelatedEvent); ok {
		return ce.CorrelationID()
	}
	return ""
}
