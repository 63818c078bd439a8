// Package interceptors observes inbound calls and logs them before and after they are handled.
//
// An Invocation is a tagged variant over the supported call kinds:
//   - KindHTTP: a synchronous HTTP request/response cycle
//   - KindMessage: a message, event or workflow job
//   - KindOther: anything else; passed through without logging
//
// Transports build invocations with NewHTTPInvocation or NewMessageInvocation,
// so the interceptors never inspect arbitrary objects at runtime.
//
// LoggingInterceptor writes up to two entries per call: an info "Request"
// entry before the handler runs, then either an info "Response" entry or an
// error "Error Response" entry. Payloads are masked with a masking.Masker;
// the value and error returned to the caller are never altered.
//
// Example usage:
//
//	logging := interceptors.NewLoggingInterceptor(logger,
//		interceptors.WithMaskedFields("headers.authorization", "password"),
//	)
//
//	chain := interceptors.NewDefaultInterceptorChainBuilder(logger).
//		WithCustom(logging).
//		Build()
//
//	result, err := chain.Execute(ctx, interceptors.NewMessageInvocation(job), handler)
//
// Handlers that can emit several values over time are reduced to a single
// outcome with StreamHandler: the first value or error wins.
package interceptors
