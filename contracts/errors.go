package contracts

import (
	"fmt"
	"net/http"
)

// StatusError is a handler failure that carries a status code
type StatusError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewStatusError creates a new status error
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// NotFound creates a 404 status error
func NotFound(message string) *StatusError {
	return NewStatusError(http.StatusNotFound, message)
}

// Error implements error
func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// StatusCode implements StatusCoder
func (e *StatusError) StatusCode() int {
	return e.Status
}

// Unwrap returns the underlying error
func (e *StatusError) Unwrap() error {
	return e.Err
}
