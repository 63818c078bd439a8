// Package logsink adapts logging backends to interceptors.Sink.
//
// The interceptors package writes to log/slog by default. This package adds
// sinks for go-logr/logr and hashicorp/go-hclog, and an in-memory Recorder
// for tests and dry runs.
package logsink
