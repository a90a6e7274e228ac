// Package gateway provides anti-corruption layer implementations.
package gateway

import (
	"context"
	"log/slog"

	"hn-pulse/domain"
	"hn-pulse/port"
)

// StreamGateway implements StreamPort using a driver.
type StreamGateway struct {
	driver port.StreamPort
}

// NewStreamGateway creates a new StreamGateway.
func NewStreamGateway(driver port.StreamPort) *StreamGateway {
	return &StreamGateway{driver: driver}
}

// Publish publishes an event to a stream.
func (g *StreamGateway) Publish(ctx context.Context, stream domain.StreamKey, event *domain.Event) (string, error) {
	// Warn on unknown stream keys but allow for flexibility
	if !stream.IsValid() {
		slog.WarnContext(ctx, "publishing to unknown stream key",
			"stream", stream.String(),
		)
	}

	if event != nil {
		if err := event.Validate(); err != nil {
			return "", err
		}
	}

	return g.driver.Publish(ctx, stream, event)
}

// CreateConsumerGroup creates a consumer group for a stream.
func (g *StreamGateway) CreateConsumerGroup(ctx context.Context, stream domain.StreamKey, group domain.ConsumerGroup, startID string) error {
	return g.driver.CreateConsumerGroup(ctx, stream, group, startID)
}

// GetStreamInfo returns information about a stream.
func (g *StreamGateway) GetStreamInfo(ctx context.Context, stream domain.StreamKey) (*domain.StreamInfo, error) {
	return g.driver.GetStreamInfo(ctx, stream)
}

// Ping checks if Redis is available.
func (g *StreamGateway) Ping(ctx context.Context) error {
	return g.driver.Ping(ctx)
}
