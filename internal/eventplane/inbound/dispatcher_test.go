package inbound

import (
	"context"
	"errors"
	"testing"

	"github.com/wallethub/eventcore/internal/eventplane/envelope"
	"github.com/wallethub/eventcore/internal/eventplane/saga"
	"github.com/wallethub/eventcore/internal/eventplane/trace"
)

type fakeCoordinator struct {
	calls []saga.Command
	err   error
}

func (f *fakeCoordinator) Handle(ctx context.Context, cmd saga.Command) error {
	f.calls = append(f.calls, cmd)
	return f.err
}

func mustEnvelope(t *testing.T, id, typ string, data []byte, correlationID string) *envelope.Envelope {
	t.Helper()
	env, err := envelope.New(id, typ, "urn:test:source", data)
	if err != nil {
		t.Fatalf("envelope.New: %v", err)
	}
	if correlationID != "" {
		env.SetExtension(envelope.ExtCorrelationID, correlationID)
	}
	return env
}

func TestHandleRoutesMappedTypeToCoordinator(t *testing.T) {
	coord := &fakeCoordinator{}
	d := New(coord, trace.New(), nil)
	env := mustEnvelope(t, "env-1", "wallet.created", []byte(`{"wallet_id":"w-1"}`), "corr-1")

	if err := d.Handle(context.Background(), env); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(coord.calls) != 1 {
		t.Fatalf("expected 1 coordinator call, got %d", len(coord.calls))
	}
	cmd := coord.calls[0]
	if cmd.SagaID != "corr-1" || cmd.Event != saga.EventWalletCreated || cmd.EnvelopeID != "env-1" {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestHandleWithoutCorrelationIDDoesNotCallCoordinator(t *testing.T) {
	coord := &fakeCoordinator{}
	d := New(coord, trace.New(), nil)
	env := mustEnvelope(t, "env-2", "wallet.created", []byte(`{}`), "")

	if err := d.Handle(context.Background(), env); err != nil {
		t.Fatalf("expected positive ack (nil error), got %v", err)
	}
	if len(coord.calls) != 0 {
		t.Errorf("expected coordinator not to be called, got %d calls", len(coord.calls))
	}
}

func TestHandleWithMalformedPayloadNegativeAcks(t *testing.T) {
	coord := &fakeCoordinator{}
	d := New(coord, trace.New(), nil)
	env := mustEnvelope(t, "env-3", "wallet.created", []byte(`not-json`), "corr-1")

	err := d.Handle(context.Background(), env)
	if err == nil {
		t.Fatal("expected negative ack (non-nil error) for malformed payload")
	}
	if len(coord.calls) != 0 {
		t.Errorf("expected coordinator not to be called for malformed payload, got %d calls", len(coord.calls))
	}
}

func TestHandleWithUnmappedTypePositiveAcksWithoutCoordinator(t *testing.T) {
	coord := &fakeCoordinator{}
	d := New(coord, trace.New(), nil)
	env := mustEnvelope(t, "env-4", "some.unknown.type", []byte(`{}`), "corr-1")

	if err := d.Handle(context.Background(), env); err != nil {
		t.Fatalf("expected positive ack, got %v", err)
	}
	if len(coord.calls) != 0 {
		t.Errorf("expected coordinator not to be called for unmapped type, got %d calls", len(coord.calls))
	}
}

func TestHandlePropagatesCoordinatorErrorAsNegativeAck(t *testing.T) {
	coord := &fakeCoordinator{err: errors.New("storage unavailable")}
	d := New(coord, trace.New(), nil)
	env := mustEnvelope(t, "env-5", "wallet.credited", []byte(`{}`), "corr-1")

	if err := d.Handle(context.Background(), env); err == nil {
		t.Fatal("expected negative ack when coordinator returns an error")
	}
}
