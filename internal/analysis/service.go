// Package analysis drives the remote statistics backend: automatic
// variable classification, column profiling, missing-value imputation and
// the table-one analysis itself. Each call goes through internal/client,
// enforces its local preconditions before touching the network, and
// reports terminal failures through a report.Reporter exactly once.
package analysis

import (
	"context"
	"log/slog"

	"tableone/internal/client"
	apperrors "tableone/internal/errors"
	"tableone/internal/report"
)

// Backend endpoints. The table-analysis path is a precondition: an empty
// path means the service is misconfigured and calls fail before dialing.
const (
	autoAnalyzePath   = "/api/ai_automation/auto-analyze"
	columnProfilePath = "/api/preprocess/columns"
	tableAnalyzePath  = "/api/table/table-analyze"
	missingFillPath   = "/api/preprocess/missing_fill"
	aiSummaryPath     = "/api/table/ai-summary"
)

// TokenSource supplies the bearer token for backend calls. Implementations
// may refresh credentials; an empty token is a caller-side AUTH_ERROR.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed string, used by the CLI
// and by configuration-provided tokens.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// Paths holds the backend endpoint paths, overridable for tests.
type Paths struct {
	AutoAnalyze   string
	ColumnProfile string
	TableAnalyze  string
	MissingFill   string
	AISummary     string
}

// DefaultPaths returns the production endpoint layout.
func DefaultPaths() Paths {
	return Paths{
		AutoAnalyze:   autoAnalyzePath,
		ColumnProfile: columnProfilePath,
		TableAnalyze:  tableAnalyzePath,
		MissingFill:   missingFillPath,
		AISummary:     aiSummaryPath,
	}
}

// Service executes the backend-facing pipeline stages.
type Service struct {
	client   *client.Client
	reporter report.Reporter
	paths    Paths
	logger   *slog.Logger
}

// Option customizes Service construction.
type Option func(*Service)

// WithPaths overrides the backend endpoint paths.
func WithPaths(p Paths) Option {
	return func(s *Service) { s.paths = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service. A nil reporter downgrades to log-only
// reporting so stage code never has to nil-check.
func NewService(c *client.Client, r report.Reporter, opts ...Option) *Service {
	s := &Service{
		client:   c,
		reporter: r,
		paths:    DefaultPaths(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = report.NewLogReporter(s.logger)
	}
	return s
}

// report delivers a terminal error exactly once. Errors that arrived as
// AppErrors from deeper layers were already normalized there and pass
// through unreported; only errors minted here are reported.
func (s *Service) report(ctx context.Context, appErr *apperrors.AppError, meta report.Metadata) *apperrors.AppError {
	s.reporter.Report(ctx, appErr, meta)
	return appErr
}

// stringSlice extracts a []string from a decoded JSON field.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// stringMap extracts a map[string]string from a decoded JSON field,
// skipping non-string values.
func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for key, val := range m {
		if str, ok := val.(string); ok {
			out[key] = str
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
