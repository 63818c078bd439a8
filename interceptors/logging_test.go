package interceptors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/masking"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []Entry
}

func (s *recordingSink) Write(_ context.Context, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *recordingSink) all() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

type fixedResponse struct {
	status  int
	headers map[string]any
}

func (r fixedResponse) StatusCode() int         { return r.status }
func (r fixedResponse) Headers() map[string]any { return r.headers }

func ordersRequest() *HTTPRequest {
	return &HTTPRequest{
		Method: "GET",
		URL:    "/orders/42?expand=items",
		Path:   "/orders/{id}",
		Headers: map[string]any{
			"authorization": "Bearer secret",
			"accept":        "application/json",
		},
		Query:  map[string]any{"expand": "items"},
		Params: map[string]any{"id": "42"},
		Body:   map[string]any{"note": "none"},
	}
}

func ordersCall() HTTPCall {
	return HTTPCall{
		Request: ordersRequest(),
		Response: fixedResponse{
			status:  200,
			headers: map[string]any{"content-type": "application/json"},
		},
	}
}

func payloadMap(t *testing.T, entry Entry) map[string]any {
	t.Helper()
	payload, ok := entry.Payload.(map[string]any)
	require.True(t, ok, "payload is %T", entry.Payload)
	return payload
}

func TestLoggingInterceptor(t *testing.T) {
	t.Run("NewLoggingInterceptor creates interceptor", func(t *testing.T) {
		interceptor := NewLoggingInterceptor(slog.Default())

		assert.NotNil(t, interceptor)
		assert.IsType(t, &SlogSink{}, interceptor.sink)
		assert.Equal(t, "LoggingInterceptor", interceptor.Name())
	})

	t.Run("nil sink keeps the slog sink", func(t *testing.T) {
		interceptor := NewLoggingInterceptor(nil, WithSink(nil))
		assert.IsType(t, &SlogSink{}, interceptor.sink)
	})
}

func TestLoggingInterceptorHTTP(t *testing.T) {
	t.Run("success logs request then response", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		handler := &mockHandler{}
		body := map[string]any{"id": 42}
		handler.On("Handle", mock.Anything).Return(body, nil).Once()

		result, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(ordersCall()), handler)

		require.NoError(t, err)
		assert.Equal(t, body, result)
		handler.AssertNumberOfCalls(t, "Handle", 1)

		entries := sink.all()
		require.Len(t, entries, 2)
		assert.Equal(t, LevelInfo, entries[0].Level)
		assert.Equal(t, "Request: To path: /orders/{id} (/orders/42?expand=items) with method GET", entries[0].Message)
		assert.Equal(t, LevelInfo, entries[1].Level)
		assert.Equal(t, "Response: To path: /orders/{id} (/orders/42?expand=items) with method GET, status code: 200", entries[1].Message)

		req := payloadMap(t, entries[0])
		assert.Equal(t, "GET", req["method"])
		assert.Equal(t, "/orders/{id}", req["path"])
		assert.Equal(t, map[string]any{"id": "42"}, req["params"])

		resp := payloadMap(t, entries[1])
		response := resp["response"].(map[string]any)
		assert.Equal(t, 200, response["statusCode"])
		assert.Equal(t, body, response["body"])
		assert.Equal(t, map[string]any{"content-type": "application/json"}, response["headers"])
		assert.Equal(t, req, resp["request"])
	})

	t.Run("authorization header is masked and the rest untouched", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink), WithMaskedFields("headers.authorization"))
		call := ordersCall()

		_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(call), HandlerFunc(func(ctx context.Context) (any, error) {
			return "ok", nil
		}))
		require.NoError(t, err)

		entries := sink.all()
		require.Len(t, entries, 2)

		req := payloadMap(t, entries[0])
		headers := req["headers"].(map[string]any)
		assert.Equal(t, masking.DefaultMarker, headers["authorization"])
		assert.Equal(t, "application/json", headers["accept"])
		assert.Equal(t, map[string]any{"id": "42"}, req["params"])
		assert.Equal(t, map[string]any{"expand": "items"}, req["query"])
		assert.Equal(t, map[string]any{"note": "none"}, req["body"])

		resp := payloadMap(t, entries[1])
		reqAgain := resp["request"].(map[string]any)
		assert.Equal(t, masking.DefaultMarker, reqAgain["headers"].(map[string]any)["authorization"])

		// The caller's request is not touched.
		assert.Equal(t, "Bearer secret", call.Request.Headers["authorization"])
	})

	t.Run("failure with status logs error response and returns the same error", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		failure := contracts.NotFound("not found")

		result, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(ordersCall()), HandlerFunc(func(ctx context.Context) (any, error) {
			return nil, failure
		}))

		assert.Nil(t, result)
		assert.Same(t, failure, err)

		entries := sink.all()
		require.Len(t, entries, 2)
		assert.Equal(t, LevelInfo, entries[0].Level)
		assert.Equal(t, LevelError, entries[1].Level)
		assert.Equal(t, "Error Response: To path: /orders/{id} (/orders/42?expand=items) with method GET, status code: 404", entries[1].Message)

		response := payloadMap(t, entries[1])["response"].(map[string]any)
		assert.Equal(t, 404, response["statusCode"])
		assert.Equal(t, map[string]any{
			"message": "404 not found",
			"type":    "*contracts.StatusError",
			"status":  404,
		}, response["error"])

		// The error value itself is not changed by logging.
		assert.Equal(t, 404, failure.Status)
		assert.Equal(t, "not found", failure.Message)
	})

	t.Run("failure without status falls back to the outgoing status", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		failure := errors.New("boom")

		_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(ordersCall()), HandlerFunc(func(ctx context.Context) (any, error) {
			return nil, failure
		}))

		assert.Same(t, failure, err)
		entries := sink.all()
		require.Len(t, entries, 2)
		assert.Contains(t, entries[1].Message, "status code: 200")
		response := payloadMap(t, entries[1])["response"].(map[string]any)
		assert.Equal(t, 200, response["statusCode"])
	})

	t.Run("wrapped status error is found", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		failure := errors.Join(errors.New("lookup"), contracts.NewStatusError(409, "conflict"))

		_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(ordersCall()), HandlerFunc(func(ctx context.Context) (any, error) {
			return nil, failure
		}))

		assert.Same(t, failure, err)
		assert.Contains(t, sink.all()[1].Message, "status code: 409")
	})

	t.Run("missing raw request fails fast", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		handler := &mockHandler{}

		_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(HTTPCall{}), handler)

		assert.ErrorIs(t, err, ErrRawRequestMissing)
		assert.Empty(t, sink.all())
		handler.AssertNotCalled(t, "Handle", mock.Anything)
	})

	t.Run("missing response state logs zero status", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))

		_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(HTTPCall{Request: ordersRequest()}), HandlerFunc(func(ctx context.Context) (any, error) {
			return nil, nil
		}))

		require.NoError(t, err)
		assert.Contains(t, sink.all()[1].Message, "status code: 0")
	})
}

func TestLoggingInterceptorMessage(t *testing.T) {
	t.Run("success logs request then response", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		job := &contracts.Job{Key: "1", Type: "CREATE_ORDER", BpmnProcessID: "p-1"}
		reply := map[string]any{"orderId": 99}

		result, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), HandlerFunc(func(ctx context.Context) (any, error) {
			return reply, nil
		}))

		require.NoError(t, err)
		assert.Equal(t, reply, result)

		entries := sink.all()
		require.Len(t, entries, 2)
		assert.Equal(t, LevelInfo, entries[0].Level)
		assert.Equal(t, "Request: Of type: CREATE_ORDER with process id p-1", entries[0].Message)
		assert.Equal(t, job, entries[0].Payload)

		assert.Equal(t, LevelInfo, entries[1].Level)
		assert.Equal(t, "Response: Of type: CREATE_ORDER with process id p-1", entries[1].Message)
		assert.Equal(t, map[string]any{"request": job, "response": reply}, entries[1].Payload)
	})

	t.Run("failure logs one error response and returns the same error", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		job := contracts.NewJob("CREATE_ORDER", "p-1")
		failure := errors.New("payment declined")

		_, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), HandlerFunc(func(ctx context.Context) (any, error) {
			return nil, failure
		}))

		assert.Same(t, failure, err)
		entries := sink.all()
		require.Len(t, entries, 2)
		assert.Equal(t, LevelError, entries[1].Level)
		assert.Equal(t, "Error Response: Of type: CREATE_ORDER with process id p-1", entries[1].Message)
		payload := payloadMap(t, entries[1])
		assert.Equal(t, job, payload["request"])
		assert.Equal(t, "payment declined", payload["error"].(map[string]any)["message"])
	})

	t.Run("masks message fields", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink), WithMaskedFields("variables.cardNumber"))
		job := contracts.NewJob("CHARGE", "p-2")
		job.Variables = map[string]any{"cardNumber": "4111", "amount": 10}

		_, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), HandlerFunc(func(ctx context.Context) (any, error) {
			return map[string]any{"charged": true}, nil
		}))
		require.NoError(t, err)

		req := payloadMap(t, sink.all()[0])
		vars := req["variables"].(map[string]any)
		assert.Equal(t, masking.DefaultMarker, vars["cardNumber"])
		assert.Equal(t, json.Number("10"), vars["amount"])
		assert.Equal(t, "4111", job.Variables["cardNumber"])
	})

	t.Run("stream handler settles once", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		job := contracts.NewJob("CREATE_ORDER", "p-1")

		result, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), StreamHandler(func(ctx context.Context) <-chan Result {
			results := make(chan Result, 3)
			results <- Result{Value: "first"}
			results <- Result{Value: "second"}
			results <- Result{Err: errors.New("late")}
			close(results)
			return results
		}))

		require.NoError(t, err)
		assert.Equal(t, "first", result)
		assert.Len(t, sink.all(), 2)
	})

	t.Run("missing message fails fast", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))

		_, err := interceptor.Intercept(context.Background(), NewMessageInvocation(nil), HandlerFunc(func(ctx context.Context) (any, error) {
			t.Fatal("handler must not run")
			return nil, nil
		}))

		assert.ErrorIs(t, err, ErrMessageMissing)
		assert.Empty(t, sink.all())
	})

	t.Run("typed nil message fails fast", func(t *testing.T) {
		sink := &recordingSink{}
		interceptor := NewLoggingInterceptor(nil, WithSink(sink))
		handler := &mockHandler{}

		var job *contracts.Job
		_, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), handler)

		assert.ErrorIs(t, err, ErrMessageMissing)
		assert.Empty(t, sink.all())
		handler.AssertNotCalled(t, "Handle", mock.Anything)
	})
}

func TestLoggingInterceptorOtherKind(t *testing.T) {
	sink := &recordingSink{}
	interceptor := NewLoggingInterceptor(nil, WithSink(sink))
	handler := &mockHandler{}
	handler.On("Handle", mock.Anything).Return(7, nil).Once()

	result, err := interceptor.Intercept(context.Background(), NewOtherInvocation("websocket"), handler)

	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Empty(t, sink.all())
	handler.AssertExpectations(t)
}

func TestLoggingInterceptorSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	interceptor := NewLoggingInterceptor(logger, WithMaskedFields("headers.authorization"))

	_, err := interceptor.Intercept(context.Background(), NewHTTPInvocation(ordersCall()), HandlerFunc(func(ctx context.Context) (any, error) {
		return nil, contracts.NotFound("not found")
	}))
	require.Error(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var request, failure map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &request))
	require.NoError(t, json.Unmarshal(lines[1], &failure))

	assert.Equal(t, "INFO", request["level"])
	assert.Equal(t, "ERROR", failure["level"])
	headers := request["payload"].(map[string]any)["headers"].(map[string]any)
	assert.Equal(t, masking.DefaultMarker, headers["authorization"])
	response := failure["payload"].(map[string]any)["response"].(map[string]any)
	assert.Equal(t, float64(404), response["statusCode"])
}

func TestLoggingInterceptorConcurrent(t *testing.T) {
	sink := &recordingSink{}
	interceptor := NewLoggingInterceptor(nil, WithSink(sink), WithMaskedFields("password"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			job := contracts.NewJob("PING", "p")
			result, err := interceptor.Intercept(context.Background(), NewMessageInvocation(job), HandlerFunc(func(ctx context.Context) (any, error) {
				return n, nil
			}))
			assert.NoError(t, err)
			assert.Equal(t, n, result)
		}(i)
	}
	wg.Wait()

	assert.Len(t, sink.all(), 40)
}
