package interceptors

import (
	"context"
)

// Result is one emission of a handler that can produce several values over time
type Result struct {
	Value any
	Err   error
}

// StreamFunc starts a producer and returns its emissions. The producer must
// stop when ctx is cancelled.
type StreamFunc func(ctx context.Context) <-chan Result

// FirstSettled reduces a stream to a single outcome: the first emission wins,
// whether it is a value or an error. A stream that closes without emitting
// settles as (nil, nil).
func FirstSettled(ctx context.Context, results <-chan Result) (any, error) {
	select {
	case r, ok := <-results:
		if !ok {
			return nil, nil
		}
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StreamHandler adapts a multi-valued producer to request/response semantics.
// The producer's context is cancelled as soon as the first emission settles,
// so later emissions are dropped.
func StreamHandler(fn StreamFunc) Handler {
	return HandlerFunc(func(ctx context.Context) (any, error) {
		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		return FirstSettled(streamCtx, fn(streamCtx))
	})
}
