package cloudevents

import (
	"context"
	"fmt"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/cloudevents/sdk-go/v2/protocol"
	"github.com/google/uuid"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/interceptors"
	"github.com/glimte/reqlog-go/messaging"
)

const (
	// CorrelationExtension carries the correlation id between request and reply
	CorrelationExtension = "correlationid"
	// ReplySuffix is appended to the request type to form the reply type
	ReplySuffix = ".reply"
)

// ReceiverFunc is the signature accepted by client.StartReceiver
type ReceiverFunc func(ctx context.Context, e event.Event) (*event.Event, protocol.Result)

// EnvelopeFromEvent converts a CloudEvent into an envelope
func EnvelopeFromEvent(e event.Event) *contracts.Envelope {
	env := &contracts.Envelope{
		ID:            e.ID(),
		Type:          e.Type(),
		CorrelationID: correlationID(e),
		Body:          contracts.RawBody(e.Data()),
		Headers: map[string]interface{}{
			"source": e.Source(),
		},
	}
	if subject := e.Subject(); subject != "" {
		env.Headers["subject"] = subject
	}
	if ct := e.DataContentType(); ct != "" {
		env.Headers["datacontenttype"] = ct
	}
	env.SetTimestamp(e.Time())
	return env
}

// Receiver intercepts every event and replies with the handler result.
// A handler failure is returned as the protocol result unchanged.
func Receiver(interceptor interceptors.Interceptor, handler messaging.MessageHandler) ReceiverFunc {
	return func(ctx context.Context, e event.Event) (*event.Event, protocol.Result) {
		env := EnvelopeFromEvent(e)

		result, err := interceptor.Intercept(ctx, interceptors.NewMessageInvocation(env),
			interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
				return handler.Handle(ctx, env)
			}))
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, protocol.ResultACK
		}

		reply, err := newReply(e, env.CorrelationID, result)
		if err != nil {
			return nil, err
		}
		return reply, protocol.ResultACK
	}
}

func newReply(request event.Event, correlation string, result any) (*event.Event, error) {
	reply := event.New()
	reply.SetID(uuid.NewString())
	reply.SetType(request.Type() + ReplySuffix)
	reply.SetSource(request.Source())
	reply.SetExtension(CorrelationExtension, correlation)
	if err := reply.SetData(event.ApplicationJSON, result); err != nil {
		return nil, fmt.Errorf("failed to encode reply data: %w", err)
	}
	return &reply, nil
}

func correlationID(e event.Event) string {
	if v, ok := e.Extensions()[CorrelationExtension].(string); ok && v != "" {
		return v
	}
	return e.ID()
}
