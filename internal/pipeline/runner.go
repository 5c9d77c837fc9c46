package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tableone/internal/analysis"
	"tableone/internal/config"
	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/infrastructure"
	"tableone/internal/privacy"
	"tableone/internal/report"
	"tableone/internal/session"
	"tableone/internal/transform"
	"tableone/internal/validation"
)

// Outcome is the result of starting or resuming a run.
type Outcome struct {
	RunID  string
	Paused bool
	Err    *apperrors.AppError

	// ExportTable and Warnings are set on a completed run.
	ExportTable *transform.ExportTable
	Warnings    []string
}

// Deps are the collaborators a Runner needs.
type Deps struct {
	Config   *config.Config
	Session  *session.Store
	Service  *analysis.Service
	Tokens   analysis.TokenSource
	Detector *privacy.Detector
	Gate     *privacy.Gate
	Reporter report.Reporter
	Sink     ProgressSink
	Metrics  *infrastructure.Metrics
	Logger   *slog.Logger
}

// Runner executes the stages sequentially against the shared session.
// Runs are not deduplicated: a re-triggered run reuses the same session
// and the last writer wins. The privacy stage may pause a run; Resume
// continues it after Gate.Confirm, Cancel aborts it.
type Runner struct {
	stages   []Stage
	session  *session.Store
	gate     *privacy.Gate
	reporter report.Reporter
	sink     ProgressSink
	metrics  *infrastructure.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	run      *Run
	states   []*StageState
	resumeIx int
}

// NewRunner wires the standard stage sequence.
func NewRunner(deps Deps) *Runner {
	if deps.Sink == nil {
		deps.Sink = NoopSink{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	limits := dataset.Limits{
		MaxRows:    deps.Config.Limits.MaxRows,
		MaxColumns: deps.Config.Limits.MaxColumns,
	}
	stages := []Stage{
		&validateStage{validator: validation.New(deps.Config.Limits), session: deps.Session},
		&parseStage{limits: limits, session: deps.Session, metrics: deps.Metrics},
		&privacyStage{detector: deps.Detector, gate: deps.Gate, session: deps.Session},
		&classifyStage{service: deps.Service, tokens: deps.Tokens, session: deps.Session},
		&imputeStage{service: deps.Service, tokens: deps.Tokens, session: deps.Session},
		&analyzeStage{service: deps.Service, tokens: deps.Tokens, session: deps.Session},
		&transformStage{session: deps.Session},
	}

	return &Runner{
		stages:   stages,
		session:  deps.Session,
		gate:     deps.Gate,
		reporter: deps.Reporter,
		sink:     deps.Sink,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Start begins a fresh run, replacing any previous one. The session keeps
// its file and parsed data only through the run's own stages; results of
// an earlier run are cleared.
func (r *Runner) Start(ctx context.Context, input Input) *Outcome {
	r.mu.Lock()
	runID := infrastructure.GenerateCorrelationID()
	run := &Run{ID: runID, Input: input, reporter: r.reporter}
	states := make([]*StageState, len(r.stages))
	for i, stage := range r.stages {
		states[i] = NewStageState(stage.ID(), stage.Name())
	}
	r.run = run
	r.states = states
	r.resumeIx = 0
	r.gate.Reset()
	r.mu.Unlock()

	r.session.ResetForNewAnalysis()
	return r.execute(ctx, 0)
}

// Resume continues a paused run after the privacy gate was confirmed.
func (r *Runner) Resume(ctx context.Context) *Outcome {
	r.mu.Lock()
	run := r.run
	ix := r.resumeIx
	r.mu.Unlock()

	if run == nil || ix == 0 {
		return &Outcome{Err: apperrors.New(apperrors.CodeValidationError, apperrors.ContextPrivacyCheck, "",
			apperrors.WithMessage("no paused run to resume"))}
	}
	if !r.gate.Confirmed() {
		return &Outcome{RunID: run.ID, Err: apperrors.New(apperrors.CodePrivacyError, apperrors.ContextPrivacyCheck, "",
			apperrors.WithMessage("privacy gate has not been confirmed"),
			apperrors.WithCorrelationID(run.ID))}
	}

	// The paused privacy stage completes on confirmation.
	state := r.states[ix-1]
	state.Complete()
	r.publish(run, state, false)
	return r.execute(ctx, ix)
}

// Cancel aborts a paused run: the gate clears its pending file and the
// session is wiped so no sensitive data survives the rejection.
func (r *Runner) Cancel() *Outcome {
	r.mu.Lock()
	run := r.run
	ix := r.resumeIx
	r.mu.Unlock()

	if run == nil || ix == 0 {
		return &Outcome{Err: apperrors.New(apperrors.CodeValidationError, apperrors.ContextPrivacyCheck, "",
			apperrors.WithMessage("no paused run to cancel"))}
	}

	r.gate.Cancel()
	r.session.ResetAll()
	if r.metrics != nil {
		r.metrics.PrivacyRejects.Inc()
		r.metrics.PipelineRuns.WithLabelValues("cancelled").Inc()
	}

	state := r.states[ix-1]
	appErr := apperrors.SensitiveDataDetected(nil)
	state.Fail(appErr)
	r.publish(run, state, false)

	r.mu.Lock()
	r.run = nil
	r.resumeIx = 0
	r.mu.Unlock()

	r.logger.Info("run cancelled at privacy gate", slog.String("run_id", run.ID))
	return &Outcome{RunID: run.ID, Err: appErr}
}

// States returns snapshots of the current run's stages.
func (r *Runner) States() []StageSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageSnapshot, len(r.states))
	for i, s := range r.states {
		out[i] = s.Snapshot()
	}
	return out
}

func (r *Runner) execute(ctx context.Context, from int) *Outcome {
	r.mu.Lock()
	run := r.run
	states := r.states
	r.mu.Unlock()

	ctx = infrastructure.WithCorrelationID(ctx, run.ID)
	if r.metrics != nil {
		r.metrics.ActiveOperations.Inc()
		defer r.metrics.ActiveOperations.Dec()
	}

	for i := from; i < len(r.stages); i++ {
		stage := r.stages[i]
		state := states[i]

		state.Start()
		r.publish(run, state, false)

		start := time.Now()
		appErr := stage.Run(ctx, run, state)
		if r.metrics != nil {
			r.metrics.StageDuration.WithLabelValues(stage.ID()).Observe(time.Since(start).Seconds())
		}

		if appErr != nil {
			state.Fail(appErr)
			r.publish(run, state, false)
			if r.metrics != nil {
				r.metrics.StageFailures.WithLabelValues(stage.ID(), string(appErr.Code)).Inc()
				r.metrics.PipelineRuns.WithLabelValues("failed").Inc()
			}
			r.logger.ErrorContext(ctx, "pipeline stage failed",
				slog.String("stage", stage.ID()),
				slog.String("code", string(appErr.Code)),
				slog.String("message", appErr.Message))
			return &Outcome{RunID: run.ID, Err: appErr}
		}

		if run.paused {
			r.mu.Lock()
			r.resumeIx = i + 1
			r.mu.Unlock()
			run.paused = false
			r.publish(run, state, true)
			r.logger.InfoContext(ctx, "pipeline paused at privacy gate",
				slog.String("stage", stage.ID()))
			return &Outcome{RunID: run.ID, Paused: true}
		}

		if state.Status() == StageStatusActive {
			state.Complete()
		}
		r.publish(run, state, false)
	}

	if r.metrics != nil {
		r.metrics.PipelineRuns.WithLabelValues("completed").Inc()
	}
	r.logger.InfoContext(ctx, "pipeline run complete", slog.String("run_id", run.ID))
	return &Outcome{RunID: run.ID, ExportTable: run.ExportTable, Warnings: run.Warnings}
}

func (r *Runner) publish(run *Run, state *StageState, paused bool) {
	r.sink.Publish(ProgressEvent{
		RunID:     run.ID,
		Stage:     state.Snapshot(),
		Paused:    paused,
		Timestamp: time.Now(),
	})
}
