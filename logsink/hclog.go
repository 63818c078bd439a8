package logsink

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/glimte/reqlog-go/interceptors"
)

// HclogSink writes entries to an hclog.Logger
type HclogSink struct {
	logger hclog.Logger
}

// Hclog creates a sink backed by logger
func Hclog(logger hclog.Logger) *HclogSink {
	if logger == nil {
		logger = hclog.Default()
	}

	return &HclogSink{logger: logger}
}

// Write implements interceptors.Sink
func (s *HclogSink) Write(_ context.Context, entry interceptors.Entry) {
	if entry.Level == interceptors.LevelError {
		s.logger.Error(entry.Message, interceptors.PayloadKey, entry.Payload)
		return
	}
	s.logger.Info(entry.Message, interceptors.PayloadKey, entry.Payload)
}
