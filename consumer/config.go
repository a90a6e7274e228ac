// Package consumer provides the Redis Streams consumer for hn-pulse.
package consumer

import (
	"time"

	"hn-pulse/domain"
)

// Config holds consumer configuration.
type Config struct {
	// RedisURL is the Redis connection URL.
	RedisURL string
	// GroupName is the consumer group name.
	GroupName string
	// ConsumerName is this consumer's name within the group.
	ConsumerName string
	// StreamKey is the Redis Stream key to consume from.
	StreamKey string
	// BatchSize is the number of messages to read at once.
	BatchSize int64
	// BlockTimeout is how long to block waiting for messages.
	BlockTimeout time.Duration
}

// DefaultConfig returns a default consumer configuration.
func DefaultConfig() Config {
	return Config{
		RedisURL:     "redis://localhost:6379",
		GroupName:    domain.ConsumerGroupAggregator.String(),
		ConsumerName: "hn-pulse-aggregator-1",
		StreamKey:    domain.StreamKeyStories.String(),
		BatchSize:    10,
		BlockTimeout: 5 * time.Second,
	}
}
