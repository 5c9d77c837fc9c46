package v1

import (
	"tableone/pkg/contracts/domain"
)

// ErrorResponse is the uniform error envelope, mirroring the AppError
// taxonomy so clients can branch on code and retry-ability.
type ErrorResponse struct {
	Code          string         `json:"code"`
	Context       string         `json:"context"`
	Message       string         `json:"message"`
	UserMessage   string         `json:"user_message,omitempty"`
	Action        string         `json:"action,omitempty"`
	Severity      string         `json:"severity,omitempty"`
	CanRetry      bool           `json:"can_retry"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// AnalyzeResponse reports the outcome of a pipeline run. When the run
// pauses behind the privacy gate, Paused is true and Privacy describes the
// pending confirmation.
type AnalyzeResponse struct {
	RunID    string           `json:"run_id"`
	Paused   bool             `json:"paused,omitempty"`
	Privacy  *PrivacyPrompt   `json:"privacy,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Result   *AnalysisPayload `json:"result,omitempty"`
}

// PrivacyPrompt is the confirmation request shown when sensitive columns
// were detected.
type PrivacyPrompt struct {
	Filename         string   `json:"filename"`
	SensitiveColumns []string `json:"sensitive_columns"`
	Suggestions      []string `json:"suggestions"`
}

// AnalysisPayload carries the completed analysis result.
type AnalysisPayload struct {
	Table         []domain.TableRow           `json:"table"`
	GroupCounts   domain.GroupCounts          `json:"group_counts,omitempty"`
	ProcessingLog []domain.ProcessingLogEntry `json:"processing_log,omitempty"`
}

// SummaryResponse carries the generated narrative summary of the result
// table.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// SessionResponse is the read view of the current session.
type SessionResponse struct {
	File           *FileInfo                     `json:"file,omitempty"`
	Columns        []string                      `json:"columns,omitempty"`
	RowCount       int                           `json:"row_count"`
	Classification domain.VariableClassification `json:"classification"`
	FillNA         bool                          `json:"fill_na"`
	Method         string                        `json:"method,omitempty"`
	AutoMode       bool                          `json:"auto_mode"`
	AIModel        string                        `json:"ai_model,omitempty"`
	HasResult      bool                          `json:"has_result"`
	ProcessingLog  []domain.ProcessingLogEntry   `json:"processing_log,omitempty"`
	Dirty          bool                          `json:"dirty"`
}

// FileInfo describes the uploaded file in session views.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// HealthResponse is the liveness view.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
