package interceptors

import (
	"context"
	"log/slog"
)

// Level is the severity of a log entry
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// String returns the level name
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Entry is a single request, response or error response log record.
// Entries are built once and never modified after they are written.
type Entry struct {
	Level   Level
	Message string
	Payload any
}

// Sink receives log entries. Implementations must not block the call path
// and must be safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, entry Entry)
}

// SinkFunc is a function adapter for Sink
type SinkFunc func(ctx context.Context, entry Entry)

// Write implements Sink
func (f SinkFunc) Write(ctx context.Context, entry Entry) {
	f(ctx, entry)
}

// PayloadKey is the attribute key the slog sink stores payloads under
const PayloadKey = "payload"

// SlogSink writes entries to a slog.Logger
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink backed by logger
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogSink{logger: logger}
}

// Write implements Sink
func (s *SlogSink) Write(ctx context.Context, entry Entry) {
	level := slog.LevelInfo
	if entry.Level == LevelError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(ctx, level, entry.Message, slog.Any(PayloadKey, entry.Payload))
}
