package interceptors

import (
	"github.com/glimte/reqlog-go/contracts"
)

// Kind classifies an inbound call
type Kind int

const (
	// KindOther is any call reqlog does not log
	KindOther Kind = iota
	// KindHTTP is a synchronous HTTP request/response cycle
	KindHTTP
	// KindMessage is a message or job delivered by a broker or workflow engine
	KindMessage
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindMessage:
		return "message"
	default:
		return "other"
	}
}

// HTTPRequest is the loggable view of an inbound HTTP request
type HTTPRequest struct {
	Method  string
	URL     string
	Path    string // route pattern, e.g. /orders/{id}
	Headers map[string]any
	Query   map[string]any
	Params  map[string]any
	Body    any
}

// ResponseState exposes the outgoing response as it stands when the handler settles
type ResponseState interface {
	StatusCode() int
	Headers() map[string]any
}

// HTTPCall carries the accessors for an HTTP invocation
type HTTPCall struct {
	// Request is the raw inbound request. A nil Request is an integration error.
	Request *HTTPRequest
	// Response is read after the handler settles. It may be nil.
	Response ResponseState
}

// Invocation is one inbound call, tagged with its kind. Only the accessor
// matching the kind returns a value.
type Invocation struct {
	kind    Kind
	name    string
	http    HTTPCall
	message contracts.Message
}

// NewHTTPInvocation creates an HTTP invocation
func NewHTTPInvocation(call HTTPCall) Invocation {
	return Invocation{kind: KindHTTP, name: "http", http: call}
}

// NewMessageInvocation creates a message invocation
func NewMessageInvocation(msg contracts.Message) Invocation {
	return Invocation{kind: KindMessage, name: "message", message: msg}
}

// NewOtherInvocation creates an invocation of a kind reqlog does not log
func NewOtherInvocation(name string) Invocation {
	return Invocation{kind: KindOther, name: name}
}

// Kind returns the invocation kind
func (i Invocation) Kind() Kind {
	return i.kind
}

// Name returns a short description of the invocation source
func (i Invocation) Name() string {
	return i.name
}

// HTTP returns the HTTP accessors
func (i Invocation) HTTP() (HTTPCall, bool) {
	return i.http, i.kind == KindHTTP
}

// Message returns the message payload
func (i Invocation) Message() (contracts.Message, bool) {
	return i.message, i.kind == KindMessage
}
