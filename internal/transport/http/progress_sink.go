package http

import (
	"tableone/internal/pipeline"
	"tableone/internal/websocket"
	"tableone/pkg/contracts/events"
)

// HubSink forwards pipeline stage transitions to connected websocket
// clients. Failed stages broadcast as pipeline:error, a privacy pause as
// pipeline:paused, everything else as pipeline:progress; the completed
// transform stage additionally signals pipeline:complete.
type HubSink struct {
	hub *websocket.Hub
}

// NewHubSink creates a sink publishing to the given hub.
func NewHubSink(hub *websocket.Hub) *HubSink {
	return &HubSink{hub: hub}
}

// Publish implements pipeline.ProgressSink.
func (s *HubSink) Publish(event pipeline.ProgressEvent) {
	payload := events.ProgressPayload{
		RunID:    event.RunID,
		StageID:  event.Stage.ID,
		Stage:    event.Stage.Name,
		Status:   string(event.Stage.Status),
		Progress: event.Stage.Progress,
		Message:  event.Stage.Message,
		Error:    event.Stage.Error,
	}

	switch {
	case event.Paused:
		s.hub.Broadcast(events.TypePaused, payload)
	case event.Stage.Status == pipeline.StageStatusFailed:
		s.hub.Broadcast(events.TypeError, payload)
	default:
		s.hub.Broadcast(events.TypeProgress, payload)
	}

	if event.Stage.ID == pipeline.StageTransform && event.Stage.Status == pipeline.StageStatusCompleted {
		s.hub.Broadcast(events.TypeComplete, payload)
	}
}
