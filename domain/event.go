// Package domain contains core domain types for hn-pulse.
package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of stream event.
type EventType string

const (
	// EventTypeStoryDiscovered is emitted when the fetcher sees a new story.
	EventTypeStoryDiscovered EventType = "StoryDiscovered"
)

// Event is the stream envelope wrapping a StoryEvent payload on its way
// through Redis Streams.
type Event struct {
	// EventID is the unique identifier for this event (UUID v4).
	EventID string
	// EventType identifies what kind of event this is.
	EventType EventType
	// Source identifies the component that produced this event.
	Source string
	// CreatedAt is when the event was created.
	CreatedAt time.Time
	// Payload contains the event-specific data as JSON.
	Payload []byte
	// Metadata contains additional context.
	Metadata map[string]string
}

// NewStoryEvent wraps a StoryEvent in a stream envelope with a generated
// UUID and current timestamp.
func NewStoryEvent(source string, story StoryEvent) (*Event, error) {
	if err := story.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(story)
	if err != nil {
		return nil, err
	}

	event := &Event{
		EventID:   uuid.New().String(),
		EventType: EventTypeStoryDiscovered,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the event has all required fields.
func (e *Event) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.EventType == "" {
		return errors.New("event_type is required")
	}
	if e.Source == "" {
		return errors.New("source is required")
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}

// Story unmarshals the envelope payload into a StoryEvent.
func (e *Event) Story() (StoryEvent, error) {
	var story StoryEvent
	if err := json.Unmarshal(e.Payload, &story); err != nil {
		return StoryEvent{}, err
	}
	if err := story.Validate(); err != nil {
		return StoryEvent{}, err
	}
	return story, nil
}
