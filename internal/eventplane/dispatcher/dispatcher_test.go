package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/binding"
	"github.com/wallethub/eventcore/internal/eventplane/envelope"
	"github.com/wallethub/eventcore/internal/eventplane/outbox"
	"github.com/wallethub/eventcore/internal/eventplane/trace"
)

type fakeStore struct {
	mu      sync.Mutex
	records []outbox.Record
	sent    map[int64]bool
}

func newFakeStore(records ...outbox.Record) *fakeStore {
	return &fakeStore{records: records, sent: make(map[int64]bool)}
}

func (f *fakeStore) Append(ctx context.Context, eventType string, payload []byte, correlationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(len(f.records) + 1)
	f.records = append(f.records, outbox.Record{ID: id, EventType: eventType, Payload: payload, CorrelationID: correlationID})
	return id, nil
}

func (f *fakeStore) ListUnsent(ctx context.Context, limit int) ([]outbox.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []outbox.Record
	for _, r := range f.records {
		if !f.sent[r.ID] {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSent(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[id] = true
	return nil
}

func (f *fakeStore) CleanupSent(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeStore) isSent(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[id]
}

type publishResult struct {
	destination string
	envelope    *envelope.Envelope
}

type fakeBus struct {
	mu        sync.Mutex
	published []publishResult
	failFor   map[string]bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{failFor: make(map[string]bool)}
}

func (b *fakeBus) Publish(ctx context.Context, destination string, env *envelope.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failFor[destination] {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, publishResult{destination: destination, envelope: env})
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, destination, group string, handler ports.MessageHandler) error {
	return nil
}

func testRegistry(t *testing.T) *binding.Registry {
	t.Helper()
	r, err := binding.New(binding.Binding{EventType: "wallet.created", Destination: "wallet-created"})
	require.NoError(t, err)
	return r
}

func TestTickPublishesAndMarksSent(t *testing.T) {
	store := newFakeStore(outbox.Record{ID: 1, EventType: "wallet.created", Payload: []byte(`{"a":1}`), CreatedAt: time.Now()})
	bus := newFakeBus()
	d := New(store, bus, testRegistry(t), trace.New(), DefaultConfig(), nil)

	d.Tick(context.Background())

	assert.True(t, store.isSent(1))
	require.Len(t, bus.published, 1)
	assert.Equal(t, "wallet-created", bus.published[0].destination)
	assert.Equal(t, "1", bus.published[0].envelope.ID)
}

func TestTickSkipsUnboundEventTypeWithoutMarkingSent(t *testing.T) {
	store := newFakeStore(outbox.Record{ID: 1, EventType: "unbound.type", Payload: []byte(`{}`), CreatedAt: time.Now()})
	bus := newFakeBus()
	d := New(store, bus, testRegistry(t), trace.New(), DefaultConfig(), nil)

	d.Tick(context.Background())

	assert.False(t, store.isSent(1))
	assert.Empty(t, bus.published)
}

func TestTickLeavesRecordUnsentOnPublishFailure(t *testing.T) {
	store := newFakeStore(outbox.Record{ID: 1, EventType: "wallet.created", Payload: []byte(`{}`), CreatedAt: time.Now()})
	bus := newFakeBus()
	bus.failFor["wallet-created"] = true
	d := New(store, bus, testRegistry(t), trace.New(), DefaultConfig(), nil)

	d.Tick(context.Background())

	assert.False(t, store.isSent(1))
	assert.Empty(t, bus.published)
}

func TestTickContinuesAcrossRecordsAfterAFailure(t *testing.T) {
	store := newFakeStore(
		outbox.Record{ID: 1, EventType: "wallet.created", Payload: []byte(`{}`), CreatedAt: time.Now()},
		outbox.Record{ID: 2, EventType: "wallet.created", Payload: []byte(`{}`), CreatedAt: time.Now()},
	)
	bus := newFakeBus()
	d := New(store, bus, testRegistry(t), trace.New(), DefaultConfig(), nil)

	d.Tick(context.Background())

	assert.True(t, store.isSent(1))
	assert.True(t, store.isSent(2))
	assert.Len(t, bus.published, 2)
}

func TestMarkSentIsIdempotentAcrossTicks(t *testing.T) {
	store := newFakeStore(outbox.Record{ID: 1, EventType: "wallet.created", Payload: []byte(`{}`), CreatedAt: time.Now()})
	bus := newFakeBus()
	d := New(store, bus, testRegistry(t), trace.New(), DefaultConfig(), nil)

	d.Tick(context.Background())
	d.Tick(context.Background())

	assert.Len(t, bus.published, 1, "second tick must not find the already-sent record")
}
