package saga

import (
	"testing"
	"time"
)

func TestNewInstanceStartsAtInitial(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inst := NewInstance("saga-1", now)

	if inst.State != StateInitial {
		t.Errorf("State = %s, want INITIAL", inst.State)
	}
	if inst.Version != 0 {
		t.Errorf("Version = %d, want 0", inst.Version)
	}
	if !inst.StartedAt.Equal(now) || !inst.UpdatedAt.Equal(now) {
		t.Error("StartedAt/UpdatedAt should be seeded with now")
	}
}

func TestProcessedIDsContainsAndAdd(t *testing.T) {
	p := NewProcessedIDs(3)

	if p.Contains("a") {
		t.Error("empty set should not contain anything")
	}

	p.Add("a")
	if !p.Contains("a") {
		t.Error("expected set to contain added id")
	}
}

func TestProcessedIDsAddIsIdempotent(t *testing.T) {
	p := NewProcessedIDs(3)
	p.Add("a")
	p.Add("a")
	p.Add("a")

	if got := len(p.Slice()); got != 1 {
		t.Errorf("len(Slice()) = %d, want 1", got)
	}
}

func TestProcessedIDsEvictsOldestBeyondCapacity(t *testing.T) {
	p := NewProcessedIDs(2)
	p.Add("a")
	p.Add("b")
	p.Add("c")

	if p.Contains("a") {
		t.Error("expected oldest id to be evicted")
	}
	if !p.Contains("b") || !p.Contains("c") {
		t.Error("expected the two most recent ids to remain")
	}
	if got := len(p.Slice()); got != 2 {
		t.Errorf("len(Slice()) = %d, want 2", got)
	}
}

func TestNewProcessedIDsNonPositiveCapacityFallsBack(t *testing.T) {
	p := NewProcessedIDs(0)
	for i := 0; i < defaultProcessedIDsCap+1; i++ {
		p.Add(string(rune('a' + i%26)))
	}
	if len(p.Slice()) > defaultProcessedIDsCap {
		t.Errorf("len(Slice()) = %d exceeds default cap %d", len(p.Slice()), defaultProcessedIDsCap)
	}
}
