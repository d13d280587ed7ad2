// Package publisher sends dashboard events to NATS.
package publisher

import (
	"context"
	"fmt"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
)

// SubjectFetchCompleted is the subject of resolved view fetches.
const SubjectFetchCompleted = "dashboard.fetch.completed"

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(ctx context.Context, subject, msgID string, data any) error
}

// NATSPublisher implements dashboard.EventPublisher
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(client NATSClient) *NATSPublisher {
	return &NATSPublisher{js: client}
}

// PublishFetchCompleted publishes a fetch completion event. A view resolves
// once per generation, so session, view and generation identify the event.
func (p *NATSPublisher) PublishFetchCompleted(ctx context.Context, event dashboard.FetchEvent) error {
	if err := p.js.Publish(ctx, SubjectFetchCompleted, messageID(event), event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func messageID(e dashboard.FetchEvent) string {
	return fmt.Sprintf("%s:%s:%d", e.SessionID, e.View, e.Generation)
}
