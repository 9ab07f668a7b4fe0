package saga

import "time"

// defaultProcessedIDsCap bounds how many envelope ids an instance
// remembers for idempotency checks. Workflows in this domain pass
// through at most a handful of events, so this comfortably covers
// legitimate retries without the set growing unbounded.
const defaultProcessedIDsCap = 64

// TransitionRecord is one accepted (non-rejected) transition, kept so
// compensation can walk the non-terminal history in reverse.
type TransitionRecord struct {
	From       State
	Event      Event
	To         State
	OccurredAt time.Time
}

// ProcessedIDs is a bounded, insertion-ordered set of envelope ids. Once
// full, adding a new id evicts the oldest - correctness only requires
// remembering ids recent enough for realistic redelivery windows, not
// every id for the life of the instance.
type ProcessedIDs struct {
	ids []string
	cap int
}

// NewProcessedIDs builds an empty set with the given capacity. A
// non-positive capacity falls back to defaultProcessedIDsCap.
func NewProcessedIDs(capacity int) *ProcessedIDs {
	if capacity <= 0 {
		capacity = defaultProcessedIDsCap
	}
	return &ProcessedIDs{cap: capacity}
}

// Contains reports whether id has already been recorded.
func (p *ProcessedIDs) Contains(id string) bool {
	for _, existing := range p.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Add records id, evicting the oldest entry if the set is at capacity.
// Adding an id already present is a no-op.
func (p *ProcessedIDs) Add(id string) {
	if p.Contains(id) {
		return
	}
	p.ids = append(p.ids, id)
	if len(p.ids) > p.cap {
		p.ids = p.ids[len(p.ids)-p.cap:]
	}
}

// Slice returns the ids currently tracked, oldest first.
func (p *ProcessedIDs) Slice() []string {
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Instance is one saga's durable state.
type Instance struct {
	SagaID        string
	State         State
	Version       int64
	StartedAt     time.Time
	UpdatedAt     time.Time
	LastEventType string
	ProcessedIDs  *ProcessedIDs
	History       []TransitionRecord
}

// NewInstance creates the INITIAL instance for a freshly seen saga id.
func NewInstance(sagaID string, now time.Time) *Instance {
	return &Instance{
		SagaID:       sagaID,
		State:        StateInitial,
		Version:      0,
		StartedAt:    now,
		UpdatedAt:    now,
		ProcessedIDs: NewProcessedIDs(defaultProcessedIDsCap),
	}
}
