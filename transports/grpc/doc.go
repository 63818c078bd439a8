// Package grpc logs unary gRPC calls as message invocations.
package grpc
