package grpc

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/interceptors"
)

// Metadata keys consulted for the correlation id, in order.
var CorrelationKeys = []string{"x-correlation-id", "x-request-id"}

// UnaryServerInterceptor runs every unary call through interceptor. The full
// method name is the message type.
func UnaryServerInterceptor(interceptor interceptors.Interceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		env := envelopeFromCall(ctx, req, info.FullMethod)
		return interceptor.Intercept(ctx, interceptors.NewMessageInvocation(env),
			interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
				return handler(ctx, req)
			}))
	}
}

func envelopeFromCall(ctx context.Context, req any, method string) *contracts.Envelope {
	env := &contracts.Envelope{
		ID:   uuid.NewString(),
		Type: method,
		Body: encodeBody(req),
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return env
	}

	env.Headers = make(map[string]interface{}, len(md))
	for k, v := range md {
		if len(v) > 0 {
			env.Headers[k] = v[0]
		}
	}
	for _, key := range CorrelationKeys {
		if v := md.Get(key); len(v) > 0 && v[0] != "" {
			env.CorrelationID = v[0]
			break
		}
	}
	return env
}

func encodeBody(req any) json.RawMessage {
	if req == nil {
		return nil
	}
	if msg, ok := req.(proto.Message); ok {
		b, err := protojson.Marshal(msg)
		if err != nil {
			return nil
		}
		return b
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil
	}
	return b
}
