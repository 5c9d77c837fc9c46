package pipeline

import (
	"bytes"
	"context"
	"sort"

	"tableone/internal/analysis"
	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/infrastructure"
	"tableone/internal/privacy"
	"tableone/internal/report"
	"tableone/internal/session"
	"tableone/internal/transform"
	"tableone/internal/validation"
	"tableone/pkg/contracts/domain"
)

// validateStage checks the uploaded file before any parsing.
type validateStage struct {
	validator *validation.Validator
	session   *session.Store
}

func (s *validateStage) ID() string   { return StageValidate }
func (s *validateStage) Name() string { return "File Validation" }

func (s *validateStage) Run(ctx context.Context, run *Run, _ *StageState) *apperrors.AppError {
	result := s.validator.ValidateFile(run.Input.Filename, int64(len(run.Input.Content)))
	if result.Error != nil {
		return run.Report(ctx, result.Error, report.Metadata{
			"action":   "file_validation",
			"filename": run.Input.Filename,
			"size":     len(run.Input.Content),
		})
	}
	run.Warnings = append(run.Warnings[:0], result.Warnings...)
	s.session.SetFile(session.FileMeta{Name: run.Input.Filename, Size: int64(len(run.Input.Content))})
	return nil
}

// parseStage reads the file into the session's parsed dataset.
type parseStage struct {
	limits  dataset.Limits
	session *session.Store
	metrics *infrastructure.Metrics
}

func (s *parseStage) ID() string   { return StageParse }
func (s *parseStage) Name() string { return "File Parsing" }

func (s *parseStage) Run(ctx context.Context, run *Run, _ *StageState) *apperrors.AppError {
	ds, appErr := dataset.Parse(bytes.NewReader(run.Input.Content), run.Input.Filename, s.limits)
	if appErr != nil {
		return run.Report(ctx, appErr, report.Metadata{
			"action":   "file_parsing",
			"filename": run.Input.Filename,
		})
	}
	run.Warnings = append(run.Warnings, ds.Warnings...)
	s.session.SetParsedData(ds)
	if s.metrics != nil {
		s.metrics.DatasetRows.Observe(float64(len(ds.Rows)))
	}
	return nil
}

// privacyStage scans column names and pauses the run behind the gate when
// sensitive columns are found.
type privacyStage struct {
	detector *privacy.Detector
	gate     *privacy.Gate
	session  *session.Store
}

func (s *privacyStage) ID() string   { return StagePrivacy }
func (s *privacyStage) Name() string { return "Privacy Check" }

func (s *privacyStage) Run(_ context.Context, run *Run, state *StageState) *apperrors.AppError {
	parsed := s.session.ParsedData()
	if parsed == nil {
		return apperrors.New(apperrors.CodeValidationError, apperrors.ContextPrivacyCheck, "",
			apperrors.WithMessage("no parsed dataset for privacy check"),
			apperrors.WithCorrelationID(run.ID))
	}

	result := s.detector.DetectColumns(parsed.Columns)
	if !result.HasSensitiveData {
		return nil
	}

	file := s.session.File()
	info := privacy.FileInfo{}
	if file != nil {
		info = privacy.FileInfo{Name: file.Name, Size: file.Size}
	}
	s.gate.Arm(info, result)
	s.gate.SetDialogVisible(true)
	state.SetProgress(50, "awaiting privacy confirmation")
	run.Pause()
	return nil
}

// classifyStage fills the variable classification, either through the
// remote auto-analysis or from the caller's manual selection.
type classifyStage struct {
	service *analysis.Service
	tokens  analysis.TokenSource
	session *session.Store
}

func (s *classifyStage) ID() string   { return StageClassify }
func (s *classifyStage) Name() string { return "Variable Classification" }

func (s *classifyStage) Run(ctx context.Context, run *Run, _ *StageState) *apperrors.AppError {
	s.session.SetAutoMode(run.Input.AutoMode, run.Input.AIModel)
	s.session.SetFillNA(run.Input.FillNA, run.Input.Method)

	if !run.Input.AutoMode {
		if !run.Input.Classification.HasVariables() {
			return run.Report(ctx, apperrors.NoVariablesSelected(run.ID), report.Metadata{
				"action": "manual_classification",
			})
		}
		s.session.SetClassification(run.Input.Classification)
		return nil
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return run.Report(ctx, apperrors.Wrap(err, apperrors.CodeAuthError, apperrors.ContextAuthentication, run.ID),
			report.Metadata{"action": "auto_analysis"})
	}

	parsed := s.session.ParsedData()
	var rows []dataset.DataRow
	if parsed != nil {
		rows = parsed.Rows
	}

	result, appErr := s.service.PerformAutoAnalysis(ctx, rows, run.Input.FillNA, token, run.Input.GroupVar, run.ID)
	if appErr != nil {
		return appErr
	}
	s.session.SetAutoResult(result)
	s.session.SetClassification(domain.VariableClassification{
		GroupVar: result.GroupVar,
		CatVars:  result.CatVars,
		ContVars: result.ContVars,
	})
	return nil
}

// imputeStage optionally fills missing values. It can never fail the run:
// any failure keeps the original working dataset and the pipeline
// continues to the analysis stage.
type imputeStage struct {
	service *analysis.Service
	tokens  analysis.TokenSource
	session *session.Store
}

func (s *imputeStage) ID() string   { return StageImpute }
func (s *imputeStage) Name() string { return "Missing Value Imputation" }

func (s *imputeStage) Run(ctx context.Context, run *Run, state *StageState) *apperrors.AppError {
	if !run.Input.FillNA {
		state.Skip("imputation disabled")
		return nil
	}

	working := s.session.WorkingData()
	if working == nil || len(working.Rows) == 0 {
		state.Skip("no data to impute")
		return nil
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		// Best-effort stage: a credential failure here downgrades to a
		// skip rather than halting the run.
		state.Skip("credentials unavailable for imputation")
		return nil
	}

	profiles := s.session.ColumnProfiles()
	if len(profiles) == 0 {
		profiles = s.service.AnalyzeColumnProfiles(ctx, working.Rows, token, run.ID)
		s.session.SetColumnProfiles(profiles)
	}

	cls := s.session.Classification()
	outcome := s.service.FillMissingValues(ctx, analysis.ImputationRequest{
		Data:     working.Rows,
		Columns:  profiles,
		CatVars:  cls.CatVars,
		ContVars: cls.ContVars,
		GroupCol: cls.GroupVar,
	}, token, run.ID)
	if outcome == nil {
		state.SetProgress(100, "imputation unavailable, original dataset kept")
		return nil
	}

	columns, rows := dataset.Normalize(outcome.Rows, working.Columns)
	s.session.SetWorkingData(&dataset.Dataset{Columns: columns, Rows: rows})
	s.session.AppendProcessingLog(outcome.Log...)
	return nil
}

// analyzeStage runs the summary-table analysis on the working dataset.
type analyzeStage struct {
	service *analysis.Service
	tokens  analysis.TokenSource
	session *session.Store
}

func (s *analyzeStage) ID() string   { return StageAnalyze }
func (s *analyzeStage) Name() string { return "Table Analysis" }

func (s *analyzeStage) Run(ctx context.Context, run *Run, _ *StageState) *apperrors.AppError {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return run.Report(ctx, apperrors.Wrap(err, apperrors.CodeAuthError, apperrors.ContextAuthentication, run.ID),
			report.Metadata{"action": "table_analysis"})
	}

	var rows []dataset.DataRow
	if working := s.session.WorkingData(); working != nil {
		rows = working.Rows
	}

	cls := s.session.Classification()
	result, appErr := s.service.AnalyzeTable(ctx, analysis.TableRequest{
		Data:     rows,
		GroupCol: cls.GroupVar,
		CatVars:  cls.CatVars,
		ContVars: cls.ContVars,
		FillNA:   run.Input.FillNA,
	}, token, run.ID)
	if appErr != nil {
		return appErr
	}

	run.Warnings = append(run.Warnings, result.Warnings...)
	s.session.SetResult(result.Table, result.GroupCounts)
	return nil
}

// transformStage renders the raw result table into the export shape.
type transformStage struct {
	session *session.Store
}

func (s *transformStage) ID() string   { return StageTransform }
func (s *transformStage) Name() string { return "Result Transformation" }

func (s *transformStage) Run(ctx context.Context, run *Run, _ *StageState) *apperrors.AppError {
	rows, counts := s.session.Result()

	columns := run.Input.ExportColumns
	if len(columns) == 0 {
		columns = DefaultExportColumns(rows)
	}

	table, appErr := transform.PrepareExportData(rows, run.Input.DisplayNames, run.Input.GroupLabels,
		run.Input.BinaryMappings, counts, columns)
	if appErr != nil {
		return run.Report(ctx, appErr, report.Metadata{
			"action":     "result_transformation",
			"table_rows": len(rows),
		})
	}
	run.ExportTable = table
	return nil
}

// baseResultColumns are the statistic columns of the raw table; everything
// else in a result row is a group column.
var baseResultColumns = map[string]bool{
	"Variable": true,
	"Normal":   true,
	"P":        true,
	"Method":   true,
	"Missing":  true,
}

// DefaultExportColumns derives the export column order from the result
// table: Variable first, then the group columns sorted, then P and Method.
func DefaultExportColumns(rows []domain.TableRow) []string {
	if len(rows) == 0 {
		return []string{"Variable", "P", "Method"}
	}
	var groups []string
	for key := range rows[0] {
		if !baseResultColumns[key] {
			groups = append(groups, key)
		}
	}
	sort.Strings(groups)

	columns := make([]string, 0, len(groups)+3)
	columns = append(columns, "Variable")
	columns = append(columns, groups...)
	columns = append(columns, "P", "Method")
	return columns
}
