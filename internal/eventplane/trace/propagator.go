// Package trace bridges in-process OpenTelemetry spans to the envelope
// extensions the outbox dispatcher and inbound dispatcher exchange over
// the bus. It is stateless: all state lives in the context and the
// envelope passed to each call.
package trace

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/wallethub/eventcore/internal/eventplane/envelope"
)

// Propagator injects the active trace context into an envelope on publish
// and extracts it on receive, using the W3C Trace Context propagator
// (traceparent/tracestate) registered with the global otel TextMapPropagator.
type Propagator struct {
	prop propagation.TextMapPropagator
	now  func() time.Time
}

// New builds a Propagator using otel's globally configured propagator. If
// none has been set, it falls back to propagation.TraceContext - the same
// default contrib instrumentations (otelgin, otelgrpc) rely on.
func New() *Propagator {
	p := otel.GetTextMapPropagator()
	if p == nil {
		p = propagation.TraceContext{}
	}
	return &Propagator{prop: p, now: time.Now}
}

// envelopeCarrier adapts Envelope.Extensions to propagation.TextMapCarrier.
type envelopeCarrier struct {
	env *envelope.Envelope
}

func (c envelopeCarrier) Get(key string) string {
	v, _ := c.env.Extension(key)
	return v
}

func (c envelopeCarrier) Set(key, value string) {
	c.env.SetExtension(key, value)
}

func (c envelopeCarrier) Keys() []string {
	keys := make([]string, 0, len(c.env.Extensions))
	for k := range c.env.Extensions {
		keys = append(keys, k)
	}
	return keys
}

// Inject writes the active span context from ctx into the envelope's
// traceparent/tracestate extensions, and always stamps sendtimestamp. If
// ctx carries no active span, injection of the trace extensions is a
// no-op but sendtimestamp is still written.
func (p *Propagator) Inject(ctx context.Context, env *envelope.Envelope) {
	if oteltrace.SpanContextFromContext(ctx).IsValid() {
		p.prop.Inject(ctx, envelopeCarrier{env: env})
	}
	env.SetExtension(envelope.ExtSendTimestamp, fmt.Sprintf("%d", p.now().UnixMilli()))
}

// ExtractResult is the outcome of extracting trace context from an
// inbound envelope.
type ExtractResult struct {
	// Context is ctx augmented with the continuation span context, ready
	// for the caller to start a child span from. Equal to the input ctx
	// when no (valid) traceparent was present.
	Context context.Context
	// LagMillis is now() - sendtimestamp, or -1 when sendtimestamp was
	// absent - lag is unknown rather than zero in that case.
	LagMillis int64
}

// Extract reads traceparent/tracestate from the envelope and returns a
// context carrying the continuation span, plus the observed publish-to-
// receive lag. A malformed traceparent is ignored, not an error - the
// returned context is simply the input context unchanged.
func (p *Propagator) Extract(ctx context.Context, env *envelope.Envelope) ExtractResult {
	extracted := p.prop.Extract(ctx, envelopeCarrier{env: env})

	lag := int64(-1)
	if ts, ok := env.Extension(envelope.ExtSendTimestamp); ok {
		var millis int64
		if _, err := fmt.Sscanf(ts, "%d", &millis); err == nil {
			lag = p.now().UnixMilli() - millis
		}
	}

	return ExtractResult{Context: extracted, LagMillis: lag}
}
