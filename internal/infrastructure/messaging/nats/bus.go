// Package nats adapts ports.MessageBus onto NATS JetStream: a durable
// stream backs every destination, and a pull consumer per (destination,
// group) gives queue-group-style work sharing - multiple subscribers in
// the same group divide deliveries, distinct groups each see every
// message.
package nats

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/wallethub/eventcore/internal/application/ports"
	"github.com/wallethub/eventcore/internal/eventplane/envelope"
)

var _ ports.MessageBus = (*Bus)(nil)

// Bus publishes and subscribes envelopes over a single JetStream stream
// whose subjects are namespaced under subjectPrefix. Every destination
// is one subject under that prefix; consumers filter to it.
type Bus struct {
	js            jetstream.JetStream
	streamName    string
	subjectPrefix string
	dlqAttemptCap int
}

// Config controls how the stream backing the bus is provisioned.
type Config struct {
	StreamName    string
	SubjectPrefix string
	// DLQAttemptCap is the number of delivery attempts before a message
	// is routed to "<destination>.dlq" instead of being redelivered.
	// Zero disables the cap (unbounded redelivery).
	DLQAttemptCap int
}

// New ensures the backing stream exists and returns a Bus over it.
func New(ctx context.Context, js jetstream.JetStream, cfg Config) (*Bus, error) {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("nats bus: provision stream %s: %w", cfg.StreamName, err)
	}
	return &Bus{
		js:            js,
		streamName:    cfg.StreamName,
		subjectPrefix: cfg.SubjectPrefix,
		dlqAttemptCap: cfg.DLQAttemptCap,
	}, nil
}

func (b *Bus) subject(destination string) string {
	return b.subjectPrefix + "." + destination
}

func (b *Bus) dlqSubject(destination string) string {
	return b.subject(destination) + ".dlq"
}

// Publish blocks until JetStream has durably stored env, returning its
// error verbatim on failure - the dispatcher treats any error here as a
// transient send failure and leaves the record unsent.
func (b *Bus) Publish(ctx context.Context, destination string, env *envelope.Envelope) error {
	data, err := env.MarshalJSON()
	if err != nil {
		return fmt.Errorf("nats bus: marshal envelope %s: %w", env.ID, err)
	}
	if _, err := b.js.Publish(ctx, b.subject(destination), data); err != nil {
		return fmt.Errorf("nats bus: publish to %s: %w", destination, err)
	}
	return nil
}

// Subscribe creates (or reattaches to) a durable pull consumer named
// after (destination, group) and starts delivering to handler in the
// background. Subscribe returns once the consumer is registered;
// delivery continues until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, destination, group string, handler ports.MessageHandler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.streamName, jetstream.ConsumerConfig{
		Durable:       consumerName(destination, group),
		FilterSubject: b.subject(destination),
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    maxDeliver(b.dlqAttemptCap),
	})
	if err != nil {
		return fmt.Errorf("nats bus: create consumer for %s/%s: %w", destination, group, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		b.deliver(ctx, destination, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("nats bus: consume %s/%s: %w", destination, group, err)
	}
	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()
	return nil
}

func (b *Bus) deliver(ctx context.Context, destination string, msg jetstream.Msg, handler ports.MessageHandler) {
	var env envelope.Envelope
	if err := env.UnmarshalJSON(msg.Data()); err != nil {
		// Malformed envelope: not retriable, terminate redelivery.
		_ = msg.Term()
		return
	}

	if err := handler(ctx, &env); err == nil {
		_ = msg.Ack()
		return
	}

	if b.dlqAttemptCap > 0 {
		if meta, err := msg.Metadata(); err == nil && meta.NumDelivered >= uint64(b.dlqAttemptCap) {
			if _, pubErr := b.js.Publish(ctx, b.dlqSubject(destination), msg.Data()); pubErr == nil {
				_ = msg.Term()
				return
			}
		}
	}
	_ = msg.Nak()
}

func maxDeliver(cap int) int {
	if cap <= 0 {
		return -1 // JetStream: unlimited redelivery
	}
	return cap
}

// consumerName derives a durable consumer name JetStream accepts (no
// dots) from a destination and group pair.
func consumerName(destination, group string) string {
	sanitized := strings.ReplaceAll(destination, ".", "_")
	return fmt.Sprintf("%s-%s", sanitized, group)
}
