// Package metrics defines the Prometheus instrumentation the outbox
// dispatcher, the saga coordinator and the inbound dispatcher emit,
// following the same promauto registration style as the HTTP layer's
// middleware metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outboxSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "outbox_sent_total",
			Help:      "Outbox records successfully published, by destination",
		},
		[]string{"destination"},
	)

	outboxSendFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "outbox_send_failed_total",
			Help:      "Outbox publish attempts that failed, by destination",
		},
		[]string{"destination"},
	)

	outboxUnknownType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "outbox_unknown_type_total",
			Help:      "Outbox records skipped because their event type has no binding",
		},
		[]string{"event_type"},
	)

	outboxUnsentCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "outbox_unsent_count",
			Help:      "Unsent outbox records observed on the last dispatcher tick",
		},
	)

	sagaTransition = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "saga_transition_total",
			Help:      "Accepted saga state transitions",
		},
		[]string{"from", "to", "event"},
	)

	sagaInvalidTransition = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "saga_invalid_transition_total",
			Help:      "Inbound events rejected because they named an undeclared transition",
		},
		[]string{"from", "event"},
	)

	sagaCompensationStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "saga_compensation_started_total",
			Help:      "Compensation sequences started after a saga entered FAILED",
		},
		[]string{"saga_id"},
	)

	sagaTimeout = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "saga_timeout_total",
			Help:      "Saga instances force-failed by the reaper for exceeding their timeout",
		},
		[]string{"state"},
	)

	messagingConsumerLag = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "messaging_consumer_lag_ms",
			Help:      "Milliseconds between envelope send and receive",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"destination"},
	)

	inboundMissingCorrelationID = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "inbound_missing_correlation_id_total",
			Help:      "Inbound envelopes delivered without a correlationid extension",
		},
		[]string{"event_type"},
	)

	inboundDeserializeFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "inbound_deserialize_failed_total",
			Help:      "Inbound envelopes whose payload failed to deserialize for their declared type",
		},
		[]string{"event_type"},
	)

	inboundUnmappedEventType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paybridge",
			Subsystem: "eventplane",
			Name:      "inbound_unmapped_event_type_total",
			Help:      "Inbound envelopes whose type has no saga event mapping",
		},
		[]string{"event_type"},
	)
)

// RecordOutboxSent increments the sent counter for a destination.
func RecordOutboxSent(destination string) {
	outboxSent.WithLabelValues(destination).Inc()
}

// RecordOutboxSendFailed increments the send-failure counter for a destination.
func RecordOutboxSendFailed(destination string) {
	outboxSendFailed.WithLabelValues(destination).Inc()
}

// RecordOutboxUnknownType increments the unknown-binding skip counter.
func RecordOutboxUnknownType(eventType string) {
	outboxUnknownType.WithLabelValues(eventType).Inc()
}

// SetOutboxUnsentCount reports the unsent backlog observed this tick.
func SetOutboxUnsentCount(count int) {
	outboxUnsentCount.Set(float64(count))
}

// RecordSagaTransition increments the accepted-transition counter.
func RecordSagaTransition(from, to, event string) {
	sagaTransition.WithLabelValues(from, to, event).Inc()
}

// RecordSagaInvalidTransition increments the invalid-transition counter.
func RecordSagaInvalidTransition(from, event string) {
	sagaInvalidTransition.WithLabelValues(from, event).Inc()
}

// RecordSagaCompensationStarted increments the compensation-started counter.
func RecordSagaCompensationStarted(sagaID string) {
	sagaCompensationStarted.WithLabelValues(sagaID).Inc()
}

// RecordSagaTimeout increments the reaper-forced-failure counter.
func RecordSagaTimeout(state string) {
	sagaTimeout.WithLabelValues(state).Inc()
}

// ObserveConsumerLag records publish-to-receive lag in milliseconds. A
// negative lag (unknown sendtimestamp) is not recorded.
func ObserveConsumerLag(destination string, lag time.Duration) {
	if lag < 0 {
		return
	}
	messagingConsumerLag.WithLabelValues(destination).Observe(float64(lag.Milliseconds()))
}

// RecordInboundMissingCorrelationID increments the missing-correlationid counter.
func RecordInboundMissingCorrelationID(eventType string) {
	inboundMissingCorrelationID.WithLabelValues(eventType).Inc()
}

// RecordInboundDeserializeFailed increments the payload-deserialize-failure counter.
func RecordInboundDeserializeFailed(eventType string) {
	inboundDeserializeFailed.WithLabelValues(eventType).Inc()
}

// RecordInboundUnmappedEventType increments the unmapped-event-type counter.
func RecordInboundUnmappedEventType(eventType string) {
	inboundUnmappedEventType.WithLabelValues(eventType).Inc()
}
