package dashboard

import (
	"context"
	"time"
)

// FetchEvent is published when a view fetch resolves.
type FetchEvent struct {
	SessionID  string    `json:"session_id"`
	View       string    `json:"view"`
	State      State     `json:"state"`
	Generation uint64    `json:"generation"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// EventPublisher publishes fetch completions to an external bus.
type EventPublisher interface {
	PublishFetchCompleted(ctx context.Context, event FetchEvent) error
}

func newFetchEvent(sessionID string, ch Change) FetchEvent {
	return FetchEvent{
		SessionID:  sessionID,
		View:       ch.View,
		State:      ch.State,
		Generation: ch.Generation,
		Error:      ch.Error,
		DurationMS: ch.Took.Milliseconds(),
		At:         time.Now().UTC(),
	}
}

// Resolved reports whether the change ends a fetch.
func (ch Change) Resolved() bool {
	return ch.State == StateReady || ch.State == StateFailed
}
