package interceptors

import (
	"context"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// InvocationContextKey is the key for storing the current invocation
	InvocationContextKey contextKey = "reqlog:interceptor:invocation"
)

// WithInvocation adds the invocation to the context
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, InvocationContextKey, inv)
}

// InvocationFromContext retrieves the invocation stored by an InterceptorChain
func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(InvocationContextKey).(Invocation)
	return inv, ok
}
