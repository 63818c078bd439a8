package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/glimte/reqlog-go/interceptors"
	"github.com/glimte/reqlog-go/logsink"
)

func TestUnaryServerInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/orders.v1.Orders/Create"}

	t.Run("logs the call and returns the reply unchanged", func(t *testing.T) {
		rec := logsink.NewRecorder()
		unary := UnaryServerInterceptor(interceptors.NewLoggingInterceptor(nil, interceptors.WithSink(rec)))
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"x-correlation-id", "p-1",
			"authorization", "Bearer x",
		))
		reply := wrapperspb.String("created")

		result, err := unary(ctx, wrapperspb.String("A1"), info, func(ctx context.Context, req any) (any, error) {
			return reply, nil
		})

		require.NoError(t, err)
		assert.Same(t, reply, result)

		entries := rec.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "Request: Of type: /orders.v1.Orders/Create with process id p-1", entries[0].Message)
		assert.Equal(t, "Response: Of type: /orders.v1.Orders/Create with process id p-1", entries[1].Message)
	})

	t.Run("encodes proto requests with protojson", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "r-9"))

		env := envelopeFromCall(ctx, wrapperspb.Int64(42), info.FullMethod)

		assert.Equal(t, "r-9", env.GetCorrelationID())
		assert.Equal(t, "/orders.v1.Orders/Create", env.GetType())
		assert.NotEmpty(t, env.GetID())
		assert.JSONEq(t, `"42"`, string(env.Body))
		assert.Equal(t, "r-9", env.Headers["x-request-id"])
	})

	t.Run("encodes plain requests as JSON", func(t *testing.T) {
		env := envelopeFromCall(context.Background(), map[string]any{"sku": "A1"}, info.FullMethod)

		assert.JSONEq(t, `{"sku":"A1"}`, string(env.Body))
		assert.Empty(t, env.GetCorrelationID())
		assert.Nil(t, env.Headers)
	})

	t.Run("returns handler errors unchanged", func(t *testing.T) {
		rec := logsink.NewRecorder()
		unary := UnaryServerInterceptor(interceptors.NewLoggingInterceptor(nil, interceptors.WithSink(rec)))
		failure := status.Error(codes.NotFound, "order not found")

		_, err := unary(context.Background(), wrapperspb.String("A1"), info, func(ctx context.Context, req any) (any, error) {
			return nil, failure
		})

		assert.True(t, errors.Is(err, failure))
		assert.Equal(t, codes.NotFound, status.Code(err))
		entries := rec.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, interceptors.LevelError, entries[1].Level)
	})
}
