package nethttp

import (
	"bytes"
	"net/http"
	"strings"
)

// Reply is the outgoing response of an Endpoint. Headers set on it are
// written to the client; the status defaults to 200.
type Reply struct {
	status int
	header http.Header
}

func newReply(w http.ResponseWriter) *Reply {
	return &Reply{status: http.StatusOK, header: w.Header()}
}

// SetStatus sets the status code written for a successful result
func (r *Reply) SetStatus(status int) {
	r.status = status
}

// Header returns the response headers
func (r *Reply) Header() http.Header {
	return r.header
}

// StatusCode implements interceptors.ResponseState
func (r *Reply) StatusCode() int {
	return r.status
}

// Headers implements interceptors.ResponseState
func (r *Reply) Headers() map[string]any {
	return headerMap(r.header)
}

// responseRecorder passes writes through and keeps the status and a bounded
// copy of the body for logging.
type responseRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
	body   bytes.Buffer
	limit  int64
}

func newResponseRecorder(w http.ResponseWriter, limit int64) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, limit: limit}
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.status = status
	r.wrote = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wrote {
		r.WriteHeader(http.StatusOK)
	}
	if remaining := r.limit - int64(r.body.Len()); remaining > 0 {
		if int64(len(p)) > remaining {
			r.body.Write(p[:remaining])
		} else {
			r.body.Write(p)
		}
	}
	return r.ResponseWriter.Write(p)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// StatusCode implements interceptors.ResponseState
func (r *responseRecorder) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Headers implements interceptors.ResponseState
func (r *responseRecorder) Headers() map[string]any {
	return headerMap(r.Header())
}

func (r *responseRecorder) contentType() string {
	return strings.TrimSpace(r.Header().Get("Content-Type"))
}
