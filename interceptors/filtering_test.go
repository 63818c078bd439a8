package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/glimte/reqlog-go/contracts"
)

// Mock filter for testing
type mockFilter struct {
	mock.Mock
}

func (m *mockFilter) ShouldProcess(ctx context.Context, inv Invocation) bool {
	args := m.Called(ctx, inv)
	return args.Bool(0)
}

func httpInvocation(path, url string) Invocation {
	return NewHTTPInvocation(HTTPCall{Request: &HTTPRequest{Method: "GET", Path: path, URL: url}})
}

func TestConditionalInterceptor(t *testing.T) {
	t.Run("runs the interceptor when the condition holds", func(t *testing.T) {
		rec := &recordingSink{}
		filter := new(mockFilter)
		inv := NewMessageInvocation(contracts.NewJob("CREATE_ORDER", "p-1"))
		filter.On("ShouldProcess", mock.Anything, inv).Return(true)

		ic := NewConditionalInterceptor(filter, NewLoggingInterceptor(nil, WithSink(rec)))
		handler := new(mockHandler)
		handler.On("Handle", mock.Anything).Return("ok", nil)

		result, err := ic.Intercept(context.Background(), inv, handler)

		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Len(t, rec.all(), 2)
		filter.AssertExpectations(t)
		handler.AssertExpectations(t)
	})

	t.Run("skips the interceptor otherwise", func(t *testing.T) {
		rec := &recordingSink{}
		filter := new(mockFilter)
		inv := httpInvocation("/healthz", "/healthz")
		filter.On("ShouldProcess", mock.Anything, inv).Return(false)

		ic := NewConditionalInterceptor(filter, NewLoggingInterceptor(nil, WithSink(rec)))
		handler := new(mockHandler)
		handler.On("Handle", mock.Anything).Return("ok", nil)

		result, err := ic.Intercept(context.Background(), inv, handler)

		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Empty(t, rec.all())
		assert.Equal(t, "ConditionalInterceptor[LoggingInterceptor]", ic.Name())
	})
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	always := InvocationFilterFunc(func(context.Context, Invocation) bool { return true })
	never := InvocationFilterFunc(func(context.Context, Invocation) bool { return false })
	inv := NewOtherInvocation("cron")

	t.Run("composite and or", func(t *testing.T) {
		assert.True(t, NewCompositeFilter(always, always).ShouldProcess(ctx, inv))
		assert.False(t, NewCompositeFilter(always, never).ShouldProcess(ctx, inv))
		assert.True(t, NewCompositeFilter().ShouldProcess(ctx, inv))

		assert.True(t, NewOrFilter(never, always).ShouldProcess(ctx, inv))
		assert.False(t, NewOrFilter(never).ShouldProcess(ctx, inv))

		assert.False(t, Not(always).ShouldProcess(ctx, inv))
	})

	t.Run("message type", func(t *testing.T) {
		filter := NewMessageTypeFilter("CREATE_ORDER")

		assert.True(t, filter.ShouldProcess(ctx, NewMessageInvocation(contracts.NewJob("CREATE_ORDER", "p"))))
		assert.False(t, filter.ShouldProcess(ctx, NewMessageInvocation(contracts.NewJob("CHARGE", "p"))))
		assert.False(t, filter.ShouldProcess(ctx, httpInvocation("/orders", "/orders")))
	})

	t.Run("path", func(t *testing.T) {
		filter := NewPathFilter("/healthz", "/internal/*")

		assert.True(t, filter.ShouldProcess(ctx, httpInvocation("/healthz", "/healthz?verbose=1")))
		assert.True(t, filter.ShouldProcess(ctx, httpInvocation("/internal/{name}", "/internal/metrics")))
		assert.False(t, filter.ShouldProcess(ctx, httpInvocation("/internal", "/internal")))
		assert.False(t, filter.ShouldProcess(ctx, httpInvocation("/orders/{id}", "/orders/42")))
		assert.False(t, filter.ShouldProcess(ctx, NewMessageInvocation(contracts.NewJob("X", "p"))))
	})
}
