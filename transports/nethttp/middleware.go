package nethttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/interceptors"
)

// DefaultMaxBodyBytes bounds how much of a request or response body is logged
const DefaultMaxBodyBytes int64 = 1 << 20

// EndpointFunc handles a request and returns the value to encode as the
// response body, or an error.
type EndpointFunc func(r *http.Request, reply *Reply) (any, error)

// PanicError carries a panic recovered from a wrapped handler
type PanicError struct {
	Value any
}

// Error implements error
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Middleware runs HTTP handlers through an interceptor
type Middleware struct {
	interceptor  interceptors.Interceptor
	maxBodyBytes int64
	logger       *slog.Logger
}

// Option configures the middleware
type Option func(*Middleware)

// WithMaxBodyBytes sets how much of each body is captured for logging
func WithMaxBodyBytes(n int64) Option {
	return func(m *Middleware) {
		if n > 0 {
			m.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for response encoding failures
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// New creates a middleware around interceptor
func New(interceptor interceptors.Interceptor, options ...Option) *Middleware {
	m := &Middleware{
		interceptor:  interceptor,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// Endpoint serves fn through the interceptor
func (m *Middleware) Endpoint(fn EndpointFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := newReply(w)
		inv := interceptors.NewHTTPInvocation(interceptors.HTTPCall{
			Request:  newHTTPRequest(r, m.maxBodyBytes),
			Response: reply,
		})

		var encoded []byte
		result, err := m.interceptor.Intercept(r.Context(), inv, interceptors.HandlerFunc(func(ctx context.Context) (any, error) {
			result, err := fn(r.WithContext(ctx), reply)
			if err != nil {
				return nil, err
			}
			// Encode before the outcome is logged so an unencodable result is
			// logged as the failure the client receives.
			if encoded, err = encodeResult(result); err != nil {
				return nil, &contracts.StatusError{
					Status:  http.StatusInternalServerError,
					Message: "failed to encode response",
					Err:     err,
				}
			}
			return result, nil
		}))
		if err != nil {
			m.writeError(w, err)
			return
		}

		m.writeResult(w, reply, result, encoded)
	})
}

// Wrap serves next through the interceptor
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newResponseRecorder(w, m.maxBodyBytes)
		inv := interceptors.NewHTTPInvocation(interceptors.HTTPCall{
			Request:  newHTTPRequest(r, m.maxBodyBytes),
			Response: rec,
		})

		_, err := m.interceptor.Intercept(r.Context(), inv, interceptors.HandlerFunc(func(ctx context.Context) (result any, err error) {
			defer func() {
				if v := recover(); v != nil {
					err = &PanicError{Value: v}
				}
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
			return decodeBody(rec.body.Bytes(), rec.contentType()), nil
		}))

		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			panic(panicErr.Value)
		}
		if err != nil && !rec.wrote {
			m.writeError(w, err)
		}
	})
}

// encodeResult returns the JSON body for results that are not written as is
func encodeResult(result any) ([]byte, error) {
	switch result.(type) {
	case nil, []byte, string:
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (m *Middleware) writeResult(w http.ResponseWriter, reply *Reply, result any, encoded []byte) {
	switch v := result.(type) {
	case nil:
		w.WriteHeader(reply.status)
	case []byte:
		w.WriteHeader(reply.status)
		m.write(w, v)
	case string:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.WriteHeader(reply.status)
		m.write(w, []byte(v))
	default:
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(reply.status)
		m.write(w, encoded)
	}
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (m *Middleware) writeError(w http.ResponseWriter, err error) {
	body := errorBody{StatusCode: http.StatusInternalServerError, Message: err.Error()}

	var coder contracts.StatusCoder
	if errors.As(err, &coder) {
		body.StatusCode = coder.StatusCode()
	}
	var statusErr *contracts.StatusError
	if errors.As(err, &statusErr) {
		body.Message = statusErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.Error("failed to encode error response", "error", err)
	}
}

func (m *Middleware) write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		m.logger.Debug("failed to write response", "error", err)
	}
}
