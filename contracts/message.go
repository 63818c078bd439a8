package contracts

import (
	"time"
)

// Message is the base interface for all messages
type Message interface {
	GetID() string
	GetType() string
	GetCorrelationID() string
}

// TimestampedMessage is a message that records when it was created
type TimestampedMessage interface {
	Message
	GetTimestamp() time.Time
}

// StatusCoder is implemented by failures that carry a status code
type StatusCoder interface {
	StatusCode() int
}
