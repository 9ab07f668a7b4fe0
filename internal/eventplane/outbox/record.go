// Package outbox defines the durable record the transactional outbox
// persists alongside a domain write, and the helpers that turn a domain
// event into one.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wallethub/eventcore/internal/domain/events"
)

// Record is a row in the outbox table. It is append-only from the
// perspective of the domain transaction that created it; only the
// dispatcher ever flips Sent.
type Record struct {
	ID            int64
	EventType     string
	Payload       []byte
	CorrelationID string
	CreatedAt     time.Time
	Sent          bool
}

// FromDomainEvent serializes a domain event into the (eventType, payload,
// correlationID) triple Append expects. If the event was wrapped with
// events.Correlate, its correlation id travels with it; otherwise
// CorrelationID is empty.
func FromDomainEvent(event events.DomainEvent) (eventType string, payload []byte, correlationID string, err error) {
	payload, err = json.Marshal(event)
	if err != nil {
		return "", nil, "", fmt.Errorf("outbox: marshal event %s: %w", event.EventType(), err)
	}
	return event.EventType(), payload, events.CorrelationIDOf(event), nil
}
