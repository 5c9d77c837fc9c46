package pipeline

import "time"

// ProgressEvent is one stage transition broadcast to observers.
type ProgressEvent struct {
	RunID     string        `json:"run_id"`
	Stage     StageSnapshot `json:"stage"`
	Paused    bool          `json:"paused,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ProgressSink receives stage transitions. The websocket hub implements
// this on the HTTP surface; the CLI uses NoopSink.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// NoopSink discards events.
type NoopSink struct{}

func (NoopSink) Publish(ProgressEvent) {}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(ProgressEvent)

func (f SinkFunc) Publish(event ProgressEvent) { f(event) }
