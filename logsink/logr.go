package logsink

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/glimte/reqlog-go/interceptors"
)

// LogrSink writes entries to a logr.Logger
type LogrSink struct {
	logger logr.Logger
}

// Logr creates a sink backed by logger
func Logr(logger logr.Logger) *LogrSink {
	return &LogrSink{logger: logger}
}

// Write implements interceptors.Sink. Error entries are written with a nil
// error; the failure is already part of the payload.
func (s *LogrSink) Write(_ context.Context, entry interceptors.Entry) {
	if entry.Level == interceptors.LevelError {
		s.logger.Error(nil, entry.Message, interceptors.PayloadKey, entry.Payload)
		return
	}
	s.logger.Info(entry.Message, interceptors.PayloadKey, entry.Payload)
}
