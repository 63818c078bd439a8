package interceptors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/masking"
)

var (
	// ErrRawRequestMissing is returned when an HTTP invocation carries no request
	ErrRawRequestMissing = errors.New("http invocation carries no raw request")
	// ErrMessageMissing is returned when a message invocation carries no message
	ErrMessageMissing = errors.New("message invocation carries no message")
)

// LoggingInterceptor logs every HTTP and message invocation before it is
// handled and logs its outcome afterwards. It never changes the outcome.
type LoggingInterceptor struct {
	sink   Sink
	masker *masking.Masker
}

// LoggingOption configures a LoggingInterceptor
type LoggingOption func(*LoggingInterceptor)

// WithSink replaces the slog sink
func WithSink(sink Sink) LoggingOption {
	return func(i *LoggingInterceptor) {
		if sink != nil {
			i.sink = sink
		}
	}
}

// WithMasker sets the masker applied to every logged payload
func WithMasker(masker *masking.Masker) LoggingOption {
	return func(i *LoggingInterceptor) {
		i.masker = masker
	}
}

// WithMaskedFields masks the given field selectors with the default marker
func WithMaskedFields(fields ...string) LoggingOption {
	return WithMasker(masking.New(fields))
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger, options ...LoggingOption) *LoggingInterceptor {
	i := &LoggingInterceptor{sink: NewSlogSink(logger)}

	for _, opt := range options {
		opt(i)
	}

	return i
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(ctx context.Context, inv Invocation, next Handler) (any, error) {
	switch inv.Kind() {
	case KindHTTP:
		call, _ := inv.HTTP()
		return i.interceptHTTP(ctx, call, next)
	case KindMessage:
		msg, _ := inv.Message()
		return i.interceptMessage(ctx, msg, next)
	default:
		// Other kinds are not logged.
		return next.Handle(ctx)
	}
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

func (i *LoggingInterceptor) interceptHTTP(ctx context.Context, call HTTPCall, next Handler) (any, error) {
	req := call.Request
	if req == nil {
		return nil, ErrRawRequestMissing
	}

	route := fmt.Sprintf("To path: %s (%s) with method %s", req.Path, req.URL, req.Method)
	i.write(ctx, LevelInfo, "Request: "+route, requestPayload(req))

	result, err := next.Handle(ctx)

	statusCode, headers := responseState(call.Response)
	if err != nil {
		// The outgoing status may still be the default here; a status carried
		// by the failure takes precedence.
		if status, ok := statusOf(err); ok {
			statusCode = status
		}
		i.write(ctx, LevelError, fmt.Sprintf("Error Response: %s, status code: %d", route, statusCode), map[string]any{
			"response": map[string]any{
				"headers":    headers,
				"statusCode": statusCode,
				"error":      describeError(err),
			},
			"request": requestPayload(req),
		})
		return result, err
	}

	i.write(ctx, LevelInfo, fmt.Sprintf("Response: %s, status code: %d", route, statusCode), map[string]any{
		"response": map[string]any{
			"headers":    headers,
			"statusCode": statusCode,
			"body":       result,
		},
		"request": requestPayload(req),
	})
	return result, nil
}

func (i *LoggingInterceptor) interceptMessage(ctx context.Context, msg contracts.Message, next Handler) (any, error) {
	if isNilMessage(msg) {
		return nil, ErrMessageMissing
	}

	subject := fmt.Sprintf("Of type: %s with process id %s", msg.GetType(), msg.GetCorrelationID())
	i.write(ctx, LevelInfo, "Request: "+subject, msg)

	result, err := next.Handle(ctx)
	if err != nil {
		i.write(ctx, LevelError, "Error Response: "+subject, map[string]any{
			"request": msg,
			"error":   describeError(err),
		})
		return result, err
	}

	i.write(ctx, LevelInfo, "Response: "+subject, map[string]any{
		"request":  msg,
		"response": result,
	})
	return result, nil
}

func (i *LoggingInterceptor) write(ctx context.Context, level Level, message string, payload any) {
	i.sink.Write(ctx, Entry{
		Level:   level,
		Message: message,
		Payload: i.masker.Apply(payload),
	})
}

func requestPayload(req *HTTPRequest) map[string]any {
	return map[string]any{
		"body":    req.Body,
		"params":  req.Params,
		"query":   req.Query,
		"headers": req.Headers,
		"method":  req.Method,
		"url":     req.URL,
		"path":    req.Path,
	}
}

func responseState(resp ResponseState) (int, map[string]any) {
	if resp == nil {
		return 0, nil
	}
	return resp.StatusCode(), resp.Headers()
}

func statusOf(err error) (int, bool) {
	var coder contracts.StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode(), true
	}
	return 0, false
}

func describeError(err error) map[string]any {
	desc := map[string]any{
		"message": err.Error(),
		"type":    fmt.Sprintf("%T", err),
	}
	if status, ok := statusOf(err); ok {
		desc["status"] = status
	}
	return desc
}

// isNilMessage also catches typed nil pointers such as (*contracts.Job)(nil).
func isNilMessage(msg contracts.Message) bool {
	if msg == nil {
		return true
	}
	v := reflect.ValueOf(msg)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
