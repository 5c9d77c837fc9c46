// Package events names the websocket message types and payloads broadcast
// to connected clients while a pipeline run progresses.
package events

import "time"

// Message types.
const (
	TypeConnection = "connection"
	TypeProgress   = "pipeline:progress"
	TypePaused     = "pipeline:paused"
	TypeComplete   = "pipeline:complete"
	TypeError      = "pipeline:error"
	TypeSession    = "session:update"
)

// Envelope wraps every broadcast message.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressPayload is the data of a TypeProgress/TypePaused message.
type ProgressPayload struct {
	RunID    string  `json:"run_id"`
	StageID  string  `json:"stage_id"`
	Stage    string  `json:"stage"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
}
