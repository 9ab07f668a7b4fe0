// Package envelope implements the standardized CloudEvents-shaped wire
// format shared by the outbox dispatcher, the message bus and the inbound
// dispatcher.
//
// SOLID Principles:
// - SRP: Envelope only knows how to carry and (de)serialize itself
// - OCP: new extensions can be added without touching existing consumers
//
// Pattern: Value Object - immutable once built, compared by value.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SpecVersion is the CloudEvents spec version this envelope implements.
const SpecVersion = "1.0"

// DataContentType is the only content type the core produces.
const DataContentType = "application/json"

// Recognized extension keys.
const (
	ExtCorrelationID = "correlationid"
	ExtTraceParent   = "traceparent"
	ExtTraceState    = "tracestate"
	ExtSendTimestamp = "sendtimestamp"
)

// Envelope is the in-flight, standardized event envelope. It is a value
// object: the dispatcher produces it, the bus transfers it, the inbound
// dispatcher consumes it. No long-lived reference crosses a thread boundary.
type Envelope struct {
	ID              string
	Type            string
	Source          string
	DataContentType string
	Time            time.Time
	Data            json.RawMessage
	Extensions      map[string]string
}

// wireEnvelope is the JSON-on-the-wire shape. Extensions are
// flattened to top-level keys so unrecognized ones round-trip unchanged,
// per "Unknown extensions must be forwarded unchanged".
type wireEnvelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	DataContentType string          `json:"datacontenttype"`
	Time            string          `json:"time,omitempty"`
	CorrelationID   string          `json:"correlationid,omitempty"`
	TraceParent     string          `json:"traceparent,omitempty"`
	TraceState      string          `json:"tracestate,omitempty"`
	SendTimestamp   int64           `json:"sendtimestamp,omitempty"`
	Data            json.RawMessage `json:"data"`
}

// New builds an envelope for a record about to be published. id, typ,
// source and data must all be non-empty; extensions are optional.
func New(id, typ, source string, data []byte) (*Envelope, error) {
	if id == "" || typ == "" || source == "" || len(data) == 0 {
		return nil, errors.New("envelope: id, type, source and data are required")
	}
	return &Envelope{
		ID:              id,
		Type:            typ,
		Source:          source,
		DataContentType: DataContentType,
		Data:            append(json.RawMessage(nil), data...),
		Extensions:      make(map[string]string),
	}, nil
}

// SetExtension sets (or overwrites) an extension value. An empty value
// removes the key, mirroring how optional extensions are absent on the wire.
func (e *Envelope) SetExtension(key, value string) {
	if e.Extensions == nil {
		e.Extensions = make(map[string]string)
	}
	if value == "" {
		delete(e.Extensions, key)
		return
	}
	e.Extensions[key] = value
}

// Extension returns an extension value and whether it was present.
func (e *Envelope) Extension(key string) (string, bool) {
	if e.Extensions == nil {
		return "", false
	}
	v, ok := e.Extensions[key]
	return v, ok
}

// CorrelationID is a convenience accessor for the correlationid extension.
func (e *Envelope) CorrelationID() string {
	v, _ := e.Extension(ExtCorrelationID)
	return v
}

// Validate checks that every published envelope has non-empty id, type,
// source, data and sendtimestamp.
func (e *Envelope) Validate() error {
	if e.ID == "" {
		return errors.New("envelope: id is required")
	}
	if e.Type == "" {
		return errors.New("envelope: type is required")
	}
	if e.Source == "" {
		return errors.New("envelope: source is required")
	}
	if len(e.Data) == 0 {
		return errors.New("envelope: data is required")
	}
	if _, ok := e.Extension(ExtSendTimestamp); !ok {
		return errors.New("envelope: sendtimestamp is required")
	}
	return nil
}

// MarshalJSON renders the CloudEvents structured-content wire form.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	w := wireEnvelope{
		SpecVersion:     SpecVersion,
		ID:              e.ID,
		Type:            e.Type,
		Source:          e.Source,
		DataContentType: DataContentType,
		Data:            e.Data,
	}
	if !e.Time.IsZero() {
		w.Time = e.Time.UTC().Format(time.RFC3339Nano)
	}
	w.CorrelationID = e.Extensions[ExtCorrelationID]
	w.TraceParent = e.Extensions[ExtTraceParent]
	w.TraceState = e.Extensions[ExtTraceState]
	if ts, ok := e.Extension(ExtSendTimestamp); ok {
		if _, err := fmt.Sscanf(ts, "%d", &w.SendTimestamp); err != nil {
			return nil, fmt.Errorf("envelope: invalid sendtimestamp %q: %w", ts, err)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses a CloudEvents structured-content envelope. Unknown
// top-level fields are not preserved individually (this core only reads
// the header and extensions it recognizes), but round-tripping the fields
// this core reads is stable across marshal/unmarshal.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("envelope: decode: %w", err)
	}
	e.ID = w.ID
	e.Type = w.Type
	e.Source = w.Source
	e.DataContentType = w.DataContentType
	e.Data = w.Data
	e.Extensions = make(map[string]string)
	if w.Time != "" {
		if t, err := time.Parse(time.RFC3339Nano, w.Time); err == nil {
			e.Time = t
		}
	}
	if w.CorrelationID != "" {
		e.Extensions[ExtCorrelationID] = w.CorrelationID
	}
	if w.TraceParent != "" {
		e.Extensions[ExtTraceParent] = w.TraceParent
	}
	if w.TraceState != "" {
		e.Extensions[ExtTraceState] = w.TraceState
	}
	if w.SendTimestamp != 0 {
		e.Extensions[ExtSendTimestamp] = fmt.Sprintf("%d", w.SendTimestamp)
	}
	return nil
}
