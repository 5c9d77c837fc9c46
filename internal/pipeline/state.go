package pipeline

import (
	"sync"
	"time"
)

// StageStatus is the lifecycle state of one pipeline stage.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageState is the runtime state of one stage within a run.
type StageState struct {
	mu sync.RWMutex

	id        string
	name      string
	status    StageStatus
	startTime *time.Time
	endTime   *time.Time
	progress  float64
	message   string
	err       error
}

// NewStageState creates a pending state for the given stage.
func NewStageState(id, name string) *StageState {
	return &StageState{id: id, name: name, status: StageStatusPending}
}

// Start marks the stage active.
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.startTime = &now
	s.status = StageStatusActive
	s.progress = 0
}

// Complete marks the stage finished.
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StageStatusCompleted
	s.progress = 100
}

// Fail marks the stage failed with err.
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StageStatusFailed
	s.err = err
}

// Skip marks the stage skipped with an explanatory message.
func (s *StageState) Skip(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.endTime = &now
	s.status = StageStatusSkipped
	s.message = message
	s.progress = 100
}

// SetProgress updates the progress fraction (0-100) and message.
func (s *StageState) SetProgress(progress float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	s.progress = progress
	s.message = message
}

// Status returns the current lifecycle status.
func (s *StageState) Status() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Duration returns how long the stage ran, zero while pending.
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime == nil {
		return 0
	}
	if s.endTime == nil {
		return time.Since(*s.startTime)
	}
	return s.endTime.Sub(*s.startTime)
}

// StageSnapshot is an immutable copy of a StageState for broadcasting.
type StageSnapshot struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Progress float64     `json:"progress"`
	Message  string      `json:"message,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Snapshot copies the state under the read lock.
func (s *StageState) Snapshot() StageSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := StageSnapshot{
		ID:       s.id,
		Name:     s.name,
		Status:   s.status,
		Progress: s.progress,
		Message:  s.message,
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}
