package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
)

// MockNATSClient mocks the nats client operations we need
type MockNATSClient struct {
	PublishedSubject string
	PublishedID      string
	PublishedData    any
	PublishError     error
}

func (m *MockNATSClient) Publish(_ context.Context, subject, msgID string, data any) error {
	m.PublishedSubject = subject
	m.PublishedID = msgID
	m.PublishedData = data
	return m.PublishError
}

func TestNATSPublisher_PublishFetchCompleted(t *testing.T) {
	mock := &MockNATSClient{}
	pub := NewNATSPublisher(mock)

	event := dashboard.FetchEvent{
		SessionID:  "7b0e7c4e-3f0b-4d59-a7f4-5b7c8c0d2e11",
		View:       dashboard.ViewStats,
		State:      dashboard.StateReady,
		Generation: 3,
		DurationMS: 42,
		At:         time.Now(),
	}

	err := pub.PublishFetchCompleted(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, "dashboard.fetch.completed", mock.PublishedSubject)
	assert.Equal(t, "7b0e7c4e-3f0b-4d59-a7f4-5b7c8c0d2e11:stats:3", mock.PublishedID)
	assert.Equal(t, event, mock.PublishedData)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	mock := &MockNATSClient{PublishError: errors.New("no responders")}
	pub := NewNATSPublisher(mock)

	err := pub.PublishFetchCompleted(context.Background(), dashboard.FetchEvent{View: dashboard.ViewTeams})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event")
	assert.ErrorIs(t, err, mock.PublishError)
}
