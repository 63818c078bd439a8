// Package kafka consumes Kafka records through an interceptor using franz-go.
package kafka
