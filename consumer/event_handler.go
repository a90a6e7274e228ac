package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"hn-pulse/domain"
	"hn-pulse/metrics"
	"hn-pulse/port"
)

// StoryEventHandler feeds StoryDiscovered events into the aggregator.
//
// Malformed payloads are acknowledged and skipped rather than left
// pending; redelivering them can never succeed.
type StoryEventHandler struct {
	acceptor port.StoryAcceptor
	logger   *slog.Logger
}

// NewStoryEventHandler creates a new StoryEventHandler.
func NewStoryEventHandler(acceptor port.StoryAcceptor, logger *slog.Logger) *StoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryEventHandler{
		acceptor: acceptor,
		logger:   logger,
	}
}

// HandleEvent processes a single event from the stream.
func (h *StoryEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case string(domain.EventTypeStoryDiscovered):
		return h.handleStoryDiscovered(ctx, event)
	default:
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}
}

func (h *StoryEventHandler) handleStoryDiscovered(_ context.Context, event Event) error {
	var story domain.StoryEvent
	if err := json.Unmarshal(event.Payload, &story); err != nil {
		metrics.RecordConsumeError("malformed_payload")
		h.logger.Error("failed to unmarshal story payload, skipping",
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}
	if err := story.Validate(); err != nil {
		metrics.RecordConsumeError("invalid_story")
		h.logger.Error("invalid story payload, skipping",
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}

	h.acceptor.Ingest(story)
	return nil
}
