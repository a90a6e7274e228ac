// Package usecase contains business logic for hn-pulse.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"hn-pulse/domain"
	"hn-pulse/metrics"
	"hn-pulse/port"
	"hn-pulse/retry"
)

// Source identifies this service in stream envelopes.
const Source = "hn-pulse-fetcher"

// HealthStatus contains the health status of the service.
type HealthStatus struct {
	Healthy       bool
	RedisStatus   string
	StreamLength  int64
	UptimeSeconds int64
}

// PublishStoryUsecase wraps story events in stream envelopes and publishes
// them with bounded retry. Events that still fail after the retry ceiling
// are dropped and counted; this is a best-effort analytics pipeline, not a
// ledger.
type PublishStoryUsecase struct {
	streamPort port.StreamPort
	stream     domain.StreamKey
	retrier    *retry.Retrier
	logger     *slog.Logger
	startTime  time.Time
}

// NewPublishStoryUsecase creates a new PublishStoryUsecase.
func NewPublishStoryUsecase(streamPort port.StreamPort, stream domain.StreamKey, retrier *retry.Retrier, logger *slog.Logger) *PublishStoryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishStoryUsecase{
		streamPort: streamPort,
		stream:     stream,
		retrier:    retrier,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// PublishStory publishes one story event. A nil error means the event is
// in the stream; a non-nil error means it was dropped after retries.
func (u *PublishStoryUsecase) PublishStory(ctx context.Context, story domain.StoryEvent) error {
	event, err := domain.NewStoryEvent(Source, story)
	if err != nil {
		metrics.RecordPublish("invalid")
		return err
	}

	err = u.retrier.Do(ctx, func() error {
		_, publishErr := u.streamPort.Publish(ctx, u.stream, event)
		return publishErr
	})
	if err != nil {
		metrics.RecordPublish("error")
		metrics.StoriesDropped.Inc()
		u.logger.Error("story dropped after publish retries",
			"story_id", story.ID,
			"event_id", event.EventID,
			"error", err,
		)
		return err
	}

	metrics.RecordPublish("ok")
	return nil
}

// EnsureConsumerGroup creates the aggregator's consumer group from the
// earliest offset so a fresh consumer starts from the stream beginning.
func (u *PublishStoryUsecase) EnsureConsumerGroup(ctx context.Context, group domain.ConsumerGroup) error {
	return u.streamPort.CreateConsumerGroup(ctx, u.stream, group, "0")
}

// HealthCheck checks the health of the broker connection.
func (u *PublishStoryUsecase) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		UptimeSeconds: int64(time.Since(u.startTime).Seconds()),
	}

	if err := u.streamPort.Ping(ctx); err != nil {
		metrics.SetRedisDisconnected()
		status.Healthy = false
		status.RedisStatus = err.Error()
		return status
	}

	metrics.SetRedisConnected()
	status.Healthy = true
	status.RedisStatus = "connected"

	if info, err := u.streamPort.GetStreamInfo(ctx, u.stream); err == nil {
		status.StreamLength = info.Length
	}

	return status
}
