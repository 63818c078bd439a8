// Package contracts provides the message shapes and failure types that flow through reqlog.
//
// This package defines:
//   - Message: Base interface for anything delivered to a message handler
//   - BaseMessage: Common id, type, timestamp and correlation fields
//   - Job: A unit of work activated by a workflow engine, correlated by process id
//   - Envelope: The transport envelope used by the broker adapters
//   - StatusError: A handler failure carrying a status code
//
// Any error implementing StatusCoder is treated as carrying a status code when
// an HTTP failure is logged.
package contracts
