package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hn-pulse/domain"
)

// MockStreamPort is a mock implementation of port.StreamPort.
type MockStreamPort struct {
	mock.Mock
}

func (m *MockStreamPort) Publish(ctx context.Context, stream domain.StreamKey, event *domain.Event) (string, error) {
	args := m.Called(ctx, stream, event)
	return args.String(0), args.Error(1)
}

func (m *MockStreamPort) CreateConsumerGroup(ctx context.Context, stream domain.StreamKey, group domain.ConsumerGroup, startID string) error {
	args := m.Called(ctx, stream, group, startID)
	return args.Error(0)
}

func (m *MockStreamPort) GetStreamInfo(ctx context.Context, stream domain.StreamKey) (*domain.StreamInfo, error) {
	args := m.Called(ctx, stream)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreamInfo), args.Error(1)
}

func (m *MockStreamPort) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func validEvent() *domain.Event {
	return &domain.Event{
		EventID:   "test-1",
		EventType: domain.EventTypeStoryDiscovered,
		Source:    "fetcher",
		CreatedAt: time.Now(),
		Payload:   []byte(`{"id": 1}`),
	}
}

func TestStreamGateway_Publish(t *testing.T) {
	t.Run("delegates valid event to driver", func(t *testing.T) {
		mockPort := new(MockStreamPort)
		g := NewStreamGateway(mockPort)

		ctx := context.Background()
		event := validEvent()
		mockPort.On("Publish", ctx, domain.StreamKeyStories, event).Return("123-0", nil)

		id, err := g.Publish(ctx, domain.StreamKeyStories, event)

		require.NoError(t, err)
		assert.Equal(t, "123-0", id)
		mockPort.AssertExpectations(t)
	})

	t.Run("rejects invalid event before hitting the driver", func(t *testing.T) {
		mockPort := new(MockStreamPort)
		g := NewStreamGateway(mockPort)

		event := validEvent()
		event.Source = ""

		_, err := g.Publish(context.Background(), domain.StreamKeyStories, event)

		require.Error(t, err)
		mockPort.AssertNotCalled(t, "Publish")
	})

	t.Run("allows unknown stream keys", func(t *testing.T) {
		mockPort := new(MockStreamPort)
		g := NewStreamGateway(mockPort)

		ctx := context.Background()
		event := validEvent()
		unknown := domain.StreamKey("hnpulse:events:other")
		mockPort.On("Publish", ctx, unknown, event).Return("5-0", nil)

		id, err := g.Publish(ctx, unknown, event)

		require.NoError(t, err)
		assert.Equal(t, "5-0", id)
	})
}

func TestStreamGateway_CreateConsumerGroup(t *testing.T) {
	mockPort := new(MockStreamPort)
	g := NewStreamGateway(mockPort)

	ctx := context.Background()
	mockPort.On("CreateConsumerGroup", ctx, domain.StreamKeyStories, domain.ConsumerGroupAggregator, "0").
		Return(nil)

	err := g.CreateConsumerGroup(ctx, domain.StreamKeyStories, domain.ConsumerGroupAggregator, "0")

	require.NoError(t, err)
	mockPort.AssertExpectations(t)
}

func TestStreamGateway_Ping(t *testing.T) {
	mockPort := new(MockStreamPort)
	g := NewStreamGateway(mockPort)

	ctx := context.Background()
	mockPort.On("Ping", ctx).Return(nil)

	require.NoError(t, g.Ping(ctx))
	mockPort.AssertExpectations(t)
}
