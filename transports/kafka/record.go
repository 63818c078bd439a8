package kafka

import (
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/glimte/reqlog-go/contracts"
)

// Header names consulted for the message type and correlation id, in order.
var (
	TypeHeaders        = []string{"type", "ce_type"}
	CorrelationHeaders = []string{"correlation-id", "x-correlation-id"}
)

// EnvelopeFromRecord converts a Kafka record into an envelope. Values that
// already are envelopes are used as is.
func EnvelopeFromRecord(record *kgo.Record) *contracts.Envelope {
	headers := make(map[string]interface{}, len(record.Headers))
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}

	id := fmt.Sprintf("%s/%d/%d", record.Topic, record.Partition, record.Offset)

	if env, ok := contracts.DecodeEnvelope(record.Value); ok {
		if env.ID == "" {
			env.ID = id
		}
		if env.CorrelationID == "" {
			env.CorrelationID = correlationID(record, headers)
		}
		return env
	}

	env := &contracts.Envelope{
		ID:            id,
		Type:          firstHeader(headers, TypeHeaders),
		CorrelationID: correlationID(record, headers),
		Body:          contracts.RawBody(record.Value),
	}
	if len(headers) > 0 {
		env.Headers = headers
	}
	env.SetTimestamp(record.Timestamp)

	return env
}

func correlationID(record *kgo.Record, headers map[string]interface{}) string {
	if id := firstHeader(headers, CorrelationHeaders); id != "" {
		return id
	}
	return string(record.Key)
}

func firstHeader(headers map[string]interface{}, names []string) string {
	for _, name := range names {
		if v, ok := headers[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
