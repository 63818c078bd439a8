package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/reqlog-go/contracts"
)

// TypeHeader is the header consulted when a delivery carries no AMQP type property
const TypeHeader = "x-message-type"

// EnvelopeFromDelivery converts an AMQP delivery into an envelope
func EnvelopeFromDelivery(d amqp.Delivery) *contracts.Envelope {
	if env, ok := contracts.DecodeEnvelope(d.Body); ok {
		if env.ID == "" {
			env.ID = d.MessageId
		}
		if env.CorrelationID == "" {
			env.CorrelationID = d.CorrelationId
		}
		if env.ReplyTo == "" {
			env.ReplyTo = d.ReplyTo
		}
		return env
	}

	env := &contracts.Envelope{
		ID:            d.MessageId,
		Type:          d.Type,
		CorrelationID: d.CorrelationId,
		ReplyTo:       d.ReplyTo,
		Body:          contracts.RawBody(d.Body),
	}
	if env.Type == "" {
		if v, ok := d.Headers[TypeHeader].(string); ok {
			env.Type = v
		}
	}
	if len(d.Headers) > 0 {
		env.Headers = make(map[string]interface{}, len(d.Headers))
		for k, v := range d.Headers {
			env.Headers[k] = v
		}
	}
	env.SetTimestamp(d.Timestamp)

	return env
}
