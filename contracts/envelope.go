package contracts

import (
	"encoding/json"
	"time"
)

// Envelope wraps messages for transport
type Envelope struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Timestamp     string                 `json:"timestamp"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	ReplyTo       string                 `json:"replyTo,omitempty"`
	Headers       map[string]interface{} `json:"headers,omitempty"`
	Body          json.RawMessage        `json:"body"`
}

// GetID returns the envelope ID
func (e *Envelope) GetID() string {
	return e.ID
}

// GetType returns the message type carried by the envelope
func (e *Envelope) GetType() string {
	return e.Type
}

// GetCorrelationID returns the correlation ID
func (e *Envelope) GetCorrelationID() string {
	return e.CorrelationID
}

// SetTimestamp stores t in RFC 3339 form. Zero times are ignored.
func (e *Envelope) SetTimestamp(t time.Time) {
	if t.IsZero() {
		return
	}
	e.Timestamp = t.UTC().Format(time.RFC3339Nano)
}

// RawBody converts a transport payload into an envelope body. Payloads that
// are not valid JSON are carried as a JSON string.
func RawBody(payload []byte) json.RawMessage {
	if len(payload) == 0 {
		return nil
	}
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		return nil
	}
	return encoded
}

// DecodeEnvelope decodes payload as an Envelope when it looks like one.
// It reports false for payloads that are not JSON objects or carry no type.
func DecodeEnvelope(payload []byte) (*Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}
	if env.Type == "" {
		return nil, false
	}
	return &env, true
}
