package domain

// StreamKey represents a Redis Stream key.
type StreamKey string

const (
	// StreamKeyStories is the stream carrying discovered story events.
	StreamKeyStories StreamKey = "hnpulse:events:stories"
)

// validStreamKeys contains all valid stream keys.
var validStreamKeys = map[StreamKey]bool{
	StreamKeyStories: true,
}

// IsValid returns true if the stream key is a known valid key.
func (s StreamKey) IsValid() bool {
	return validStreamKeys[s]
}

// String returns the string representation of the stream key.
func (s StreamKey) String() string {
	return string(s)
}

// ConsumerGroup represents a Redis consumer group name.
type ConsumerGroup string

const (
	// ConsumerGroupAggregator is the group for the window aggregator.
	ConsumerGroupAggregator ConsumerGroup = "aggregator-group"
)

// validConsumerGroups contains all valid consumer groups.
var validConsumerGroups = map[ConsumerGroup]bool{
	ConsumerGroupAggregator: true,
}

// IsValid returns true if the consumer group is a known valid group.
func (c ConsumerGroup) IsValid() bool {
	return validConsumerGroups[c]
}

// String returns the string representation of the consumer group.
func (c ConsumerGroup) String() string {
	return string(c)
}

// StreamInfo contains metadata about a Redis Stream.
type StreamInfo struct {
	// Length is the number of entries in the stream.
	Length int64
	// FirstEntryID is the ID of the first entry.
	FirstEntryID string
	// LastEntryID is the ID of the last entry.
	LastEntryID string
	// Groups contains information about consumer groups.
	Groups []ConsumerGroupInfo
}

// ConsumerGroupInfo contains metadata about a consumer group.
type ConsumerGroupInfo struct {
	// Name is the consumer group name.
	Name string
	// Consumers is the number of consumers in the group.
	Consumers int64
	// Pending is the number of pending messages.
	Pending int64
	// LastDeliveredID is the ID of the last delivered message.
	LastDeliveredID string
}
