// Package pipeline orchestrates the analysis run: validation, parsing,
// the privacy gate, variable classification, optional imputation, the
// table analysis and the result transformation. Stages execute
// sequentially against the shared session store; the privacy stage can
// pause the run until the user confirms or cancels, and stage transitions
// are broadcast through a ProgressSink.
package pipeline

import (
	"context"

	apperrors "tableone/internal/errors"
	"tableone/internal/report"
	"tableone/internal/transform"
	"tableone/pkg/contracts/domain"
)

// Stage IDs in execution order.
const (
	StageValidate  = "validate"
	StageParse     = "parse"
	StagePrivacy   = "privacy"
	StageClassify  = "classify"
	StageImpute    = "impute"
	StageAnalyze   = "analyze"
	StageTransform = "transform"
)

// Stage is one unit of the run. Run mutates the shared run context and
// the session store; a non-nil error terminates the pipeline. A stage
// that mints a fresh AppError reports it through run.Report before
// returning it; AppErrors passed up from collaborators were already
// reported where they were created and must not be reported again.
type Stage interface {
	ID() string
	Name() string
	Run(ctx context.Context, run *Run, state *StageState) *apperrors.AppError
}

// Input is everything one pipeline execution needs from the caller.
type Input struct {
	Filename string
	Content  []byte

	GroupVar string
	AutoMode bool
	AIModel  string

	// Manual classification, used when AutoMode is false.
	Classification domain.VariableClassification

	FillNA bool
	Method domain.ImputationMethod

	// Presentation inputs for the transformation stage. All optional;
	// ExportColumns defaults to the result table's own columns.
	DisplayNames   map[string]string
	GroupLabels    map[string]string
	BinaryMappings map[string]domain.BinaryMapping
	ExportColumns  []string
}

// Run is the mutable context of one pipeline execution, shared by all
// stages of that execution.
type Run struct {
	ID       string
	Input    Input
	Warnings []string

	// ExportTable is the transformation stage's output.
	ExportTable *transform.ExportTable

	// paused is set by the privacy stage when user confirmation is
	// required before the run may continue.
	paused bool

	reporter report.Reporter
}

// Pause marks the run as waiting on the privacy gate.
func (r *Run) Pause() { r.paused = true }

// Report delivers a freshly minted terminal error exactly once.
func (r *Run) Report(ctx context.Context, appErr *apperrors.AppError, meta report.Metadata) *apperrors.AppError {
	if r.reporter != nil {
		r.reporter.Report(ctx, appErr, meta)
	}
	return appErr
}
