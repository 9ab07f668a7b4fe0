// Package ports - MessageBus is the abstract duplex capability the
// dispatcher publishes through and the inbound side subscribes through.
// The application layer depends only on this interface; it never
// imports a broker client directly.
package ports

import (
	"context"

	"github.com/wallethub/eventcore/internal/eventplane/envelope"
)

// MessageHandler processes one delivered envelope. Returning nil
// acknowledges the message; returning an error triggers redelivery
// (negative ack) up to the adapter's configured attempt cap, after which
// the adapter routes the envelope to a dead-letter destination.
type MessageHandler func(ctx context.Context, env *envelope.Envelope) error

// MessageBus is a publish/subscribe capability over named destinations.
//
// Publish is synchronous from the caller's perspective: it does not
// return until the broker has durably accepted the envelope (or
// reports failure). Subscribe delivers at-least-once; within a single
// (destination, group) pair delivery order matches publish order, and
// multiple subscribers sharing a group divide the work, while distinct
// groups each receive every message independently.
type MessageBus interface {
	// Publish sends env to destination and blocks until the broker acks
	// or the call fails.
	Publish(ctx context.Context, destination string, env *envelope.Envelope) error

	// Subscribe registers handler for destination under group. It returns
	// once the subscription is established; delivery happens on
	// background goroutines until ctx is cancelled.
	Subscribe(ctx context.Context, destination, group string, handler MessageHandler) error
}
