package web

import (
	"encoding/json"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
)

// WebSocket event types
const (
	EventViewUpdated = "view.updated"
)

// WSEvent represents a structured WebSocket message
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ViewUpdatedPayload is the payload for EventViewUpdated
type ViewUpdatedPayload struct {
	View       string          `json:"view"`
	State      dashboard.State `json:"state"`
	Generation uint64          `json:"generation"`
	Error      string          `json:"error,omitempty"`
}

// ViewUpdatedEvent creates a JSON message telling the browser to refresh a
// view partial. The client script dispatches it as the DOM event
// "view-updated-<view>" which the partial listens for with hx-trigger.
func ViewUpdatedEvent(ch dashboard.Change) []byte {
	evt := WSEvent{
		Type: EventViewUpdated,
		Payload: ViewUpdatedPayload{
			View:       ch.View,
			State:      ch.State,
			Generation: ch.Generation,
			Error:      ch.Error,
		},
	}
	b, _ := json.Marshal(evt)
	return b
}

// NotifySession returns a dashboard change hook that pushes resolved view
// changes to the browser tabs of the session.
func NotifySession(hub *Hub) dashboard.ChangeHook {
	return func(sessionID string, ch dashboard.Change) {
		if !ch.Resolved() {
			return
		}
		hub.SendTo(sessionID, ViewUpdatedEvent(ch))
	}
}
