// Package port defines interfaces for external dependencies.
package port

import (
	"context"

	"hn-pulse/domain"
)

// StreamPort defines the interface for Redis Streams operations.
type StreamPort interface {
	// Publish publishes an event to a stream and returns the message ID.
	Publish(ctx context.Context, stream domain.StreamKey, event *domain.Event) (string, error)

	// CreateConsumerGroup creates a consumer group for a stream.
	// startID can be "0" for beginning or "$" for new messages only.
	CreateConsumerGroup(ctx context.Context, stream domain.StreamKey, group domain.ConsumerGroup, startID string) error

	// GetStreamInfo returns information about a stream.
	GetStreamInfo(ctx context.Context, stream domain.StreamKey) (*domain.StreamInfo, error)

	// Ping checks if Redis is available.
	Ping(ctx context.Context) error
}

// StoryPublisher is what the fetcher needs from the publishing side of
// the pipeline.
type StoryPublisher interface {
	// PublishStory emits a normalized story event toward the broker.
	PublishStory(ctx context.Context, story domain.StoryEvent) error
}

// StoryAcceptor is the aggregator's single-writer entry point, called by
// the consumer for each event in arrival order.
type StoryAcceptor interface {
	// Ingest applies one story event to the windowed aggregation state.
	Ingest(story domain.StoryEvent)
}
