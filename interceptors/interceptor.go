package interceptors

import (
	"context"
	"log/slog"
)

// Handler represents the rest of the pipeline after an interceptor.
// It is invoked at most once per call.
type Handler interface {
	Handle(ctx context.Context) (any, error)
}

// HandlerFunc is a function adapter for Handler
type HandlerFunc func(ctx context.Context) (any, error)

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context) (any, error) {
	return f(ctx)
}

// Interceptor observes an invocation and calls the next handler in the chain
type Interceptor interface {
	// Intercept processes an invocation and calls next exactly once
	Intercept(ctx context.Context, inv Invocation, next Handler) (any, error)

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, inv Invocation, next Handler) (any, error)
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(ctx context.Context, inv Invocation, next Handler) (any, error)) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(ctx context.Context, inv Invocation, next Handler) (any, error) {
	return i.fn(ctx, inv, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// InterceptorChain manages a chain of interceptors
type InterceptorChain struct {
	interceptors []Interceptor
	logger       *slog.Logger
}

// NewInterceptorChain creates a new interceptor chain
func NewInterceptorChain(logger *slog.Logger) *InterceptorChain {
	if logger == nil {
		logger = slog.Default()
	}

	return &InterceptorChain{
		interceptors: make([]Interceptor, 0),
		logger:       logger,
	}
}

// Add adds an interceptor to the chain
func (c *InterceptorChain) Add(interceptor Interceptor) *InterceptorChain {
	c.interceptors = append(c.interceptors, interceptor)
	return c
}

// Len returns the number of interceptors in the chain
func (c *InterceptorChain) Len() int {
	return len(c.interceptors)
}

// Execute runs the invocation through the chain and then finalHandler.
// The first interceptor added is the outermost. The invocation is available
// to every stage through InvocationFromContext.
func (c *InterceptorChain) Execute(ctx context.Context, inv Invocation, finalHandler Handler) (any, error) {
	ctx = WithInvocation(ctx, inv)

	if len(c.interceptors) == 0 {
		return finalHandler.Handle(ctx)
	}

	c.logger.Debug("executing interceptor chain",
		"kind", inv.Kind().String(),
		"interceptors", len(c.interceptors),
	)

	// Build the chain in reverse order
	handler := finalHandler
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		interceptor := c.interceptors[i]
		currentHandler := handler
		handler = HandlerFunc(func(ctx context.Context) (any, error) {
			return interceptor.Intercept(ctx, inv, currentHandler)
		})
	}

	return handler.Handle(ctx)
}

// Intercept implements Interceptor so a chain can be handed to a transport
func (c *InterceptorChain) Intercept(ctx context.Context, inv Invocation, next Handler) (any, error) {
	return c.Execute(ctx, inv, next)
}

// Name implements Interceptor
func (c *InterceptorChain) Name() string {
	return "InterceptorChain"
}

// DefaultInterceptorChainBuilder builds a common interceptor chain
type DefaultInterceptorChainBuilder struct {
	chain  *InterceptorChain
	logger *slog.Logger
}

// NewDefaultInterceptorChainBuilder creates a new builder
func NewDefaultInterceptorChainBuilder(logger *slog.Logger) *DefaultInterceptorChainBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultInterceptorChainBuilder{
		chain:  NewInterceptorChain(logger),
		logger: logger,
	}
}

// WithLogging adds a logging interceptor writing to the builder's logger
func (b *DefaultInterceptorChainBuilder) WithLogging(options ...LoggingOption) *DefaultInterceptorChainBuilder {
	b.chain.Add(NewLoggingInterceptor(b.logger, options...))
	return b
}

// WithCustom adds a custom interceptor
func (b *DefaultInterceptorChainBuilder) WithCustom(interceptor Interceptor) *DefaultInterceptorChainBuilder {
	b.chain.Add(interceptor)
	return b
}

// Build returns the built interceptor chain
func (b *DefaultInterceptorChainBuilder) Build() *InterceptorChain {
	return b.chain
}
