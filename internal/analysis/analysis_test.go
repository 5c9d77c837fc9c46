package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableone/internal/client"
	"tableone/internal/config"
	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/report"
	"tableone/pkg/contracts/domain"
)

type recordingReporter struct {
	mu      sync.Mutex
	reports []*apperrors.AppError
}

func (r *recordingReporter) Report(_ context.Context, appErr *apperrors.AppError, _ report.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, appErr)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func newTestService(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Service, *recordingReporter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := client.New(config.BackendConfig{
		BaseURL:         srv.URL,
		RequestTimeout:  2 * time.Second,
		AnalysisTimeout: 5 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
	})
	reporter := &recordingReporter{}
	return NewService(c, reporter, opts...), reporter
}

func respondJSON(t *testing.T, w http.ResponseWriter, body map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func sampleRows() []dataset.DataRow {
	return []dataset.DataRow{
		{"Age": float64(42), "Sex": "M", "Group": "A"},
		{"Age": float64(37), "Sex": "F", "Group": "B"},
	}
}

func TestPerformAutoAnalysis_OverwritesBackendGroupVar(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "parsedData")
		assert.Equal(t, true, body["fillNA"])

		respondJSON(t, w, map[string]any{
			"success":     true,
			"group_var":   "Sex",
			"cat_vars":    []string{"Sex"},
			"cont_vars":   []string{"Age"},
			"suggestions": []string{"consider excluding ID columns"},
		})
	})

	result, appErr := svc.PerformAutoAnalysis(context.Background(), sampleRows(), true, "token", "Group", "cid-1")
	require.Nil(t, appErr)
	require.NotNil(t, result)

	assert.Equal(t, "Group", result.GroupVar, "caller's group variable must win over the backend's")
	assert.Equal(t, []string{"Sex"}, result.CatVars)
	assert.Equal(t, []string{"Age"}, result.ContVars)
	assert.Equal(t, []string{"consider excluding ID columns"}, result.Suggestions)
	assert.Zero(t, reporter.count())
}

func TestPerformAutoAnalysis_KeepsEmptyCallerGroupVar(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{
			"success":   true,
			"group_var": "Sex",
			"cat_vars":  []string{"Sex"},
			"cont_vars": []string{"Age"},
		})
	})

	result, appErr := svc.PerformAutoAnalysis(context.Background(), sampleRows(), false, "token", "", "cid-1")
	require.Nil(t, appErr)
	assert.Equal(t, "", result.GroupVar)
}

func TestPerformAutoAnalysis_Preconditions(t *testing.T) {
	called := false
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		respondJSON(t, w, map[string]any{"success": true})
	})

	_, appErr := svc.PerformAutoAnalysis(context.Background(), nil, false, "token", "Group", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	_, appErr = svc.PerformAutoAnalysis(context.Background(), sampleRows(), false, "", "Group", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeAuthTokenMissing, appErr.Code)

	assert.False(t, called, "preconditions must fail before any network call")
	assert.Equal(t, 2, reporter.count())
}

func TestPerformAutoAnalysis_BackendFailure(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"success": false, "message": "classifier unavailable"})
	})

	_, appErr := svc.PerformAutoAnalysis(context.Background(), sampleRows(), false, "token", "Group", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeAnalysisError, appErr.Code)
	assert.Equal(t, "classifier unavailable", appErr.Message)
	assert.Equal(t, 1, reporter.count())
}

func TestPerformAutoAnalysis_NoUsableVariables(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"success": true, "cat_vars": []string{}, "cont_vars": []string{}})
	})

	_, appErr := svc.PerformAutoAnalysis(context.Background(), sampleRows(), false, "token", "", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeAnalysisError, appErr.Code)
	assert.Equal(t, 1, reporter.count())

	// A caller-selected group variable alone is usable.
	svc2, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"success": true})
	})
	result, appErr := svc2.PerformAutoAnalysis(context.Background(), sampleRows(), false, "token", "Group", "cid-1")
	require.Nil(t, appErr)
	assert.Equal(t, "Group", result.GroupVar)
}

func TestAnalyzeTable_PreconditionOrder(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request) { called = true }

	tests := []struct {
		name     string
		req      TableRequest
		token    string
		opts     []Option
		wantCode apperrors.Code
	}{
		{
			name:     "missing token checked first",
			req:      TableRequest{},
			token:    "",
			wantCode: apperrors.CodeAuthTokenMissing,
		},
		{
			name:     "unconfigured endpoint",
			req:      TableRequest{Data: sampleRows(), GroupCol: "Group"},
			token:    "token",
			opts:     []Option{WithPaths(Paths{})},
			wantCode: apperrors.CodeServerError,
		},
		{
			name:     "nil dataset",
			req:      TableRequest{GroupCol: "Group"},
			token:    "token",
			wantCode: apperrors.CodeValidationError,
		},
		{
			name:     "no variables selected",
			req:      TableRequest{Data: sampleRows()},
			token:    "token",
			wantCode: apperrors.CodeAnalysisError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reporter := newTestService(t, handler, tt.opts...)
			_, appErr := svc.AnalyzeTable(context.Background(), tt.req, tt.token, "cid-1")
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, 1, reporter.count())
		})
	}
	assert.False(t, called, "preconditions must fail before any network call")
}

func TestAnalyzeTable_EmptyDatasetIsValid(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{
			"success": true,
			"data":    map[string]any{"table": []any{}},
		})
	})

	result, appErr := svc.AnalyzeTable(context.Background(), TableRequest{
		Data:     []dataset.DataRow{},
		GroupCol: "Group",
	}, "token", "cid-1")
	require.Nil(t, appErr)
	assert.Empty(t, result.Table)
	assert.Zero(t, reporter.count())
}

func TestAnalyzeTable_Success(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Group", body["group_col"])

		respondJSON(t, w, map[string]any{
			"success": true,
			"data": map[string]any{
				"table": []any{
					map[string]any{"Variable": "**Age", "P": "0.03"},
					map[string]any{"Variable": "Sex", "P": "0.51"},
				},
				"groupCounts": map[string]any{"A": float64(12), "B": float64(9)},
				"warnings":    []any{"small cell counts"},
			},
		})
	})

	result, appErr := svc.AnalyzeTable(context.Background(), TableRequest{
		Data:     sampleRows(),
		GroupCol: "Group",
		ContVars: []string{"Age"},
		CatVars:  []string{"Sex"},
	}, "token", "cid-1")
	require.Nil(t, appErr)

	require.Len(t, result.Table, 2)
	assert.True(t, result.Table[0].IsMainVariable())
	assert.Equal(t, domain.GroupCounts{"A": 12, "B": 9}, result.GroupCounts)
	assert.Equal(t, []string{"small cell counts"}, result.Warnings)
}

func TestAnalyzeTable_ShapeChecks(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		wantMsg  string
	}{
		{
			name:     "success false uses backend message",
			response: map[string]any{"success": false, "message": "model did not converge"},
			wantMsg:  "model did not converge",
		},
		{
			name:     "missing data object",
			response: map[string]any{"success": true},
			wantMsg:  "analysis service returned no result data",
		},
		{
			name:     "missing table field",
			response: map[string]any{"success": true, "data": map[string]any{}},
			wantMsg:  "analysis result is missing table data",
		},
		{
			name:     "table not an array",
			response: map[string]any{"success": true, "data": map[string]any{"table": "oops"}},
			wantMsg:  "analysis result table is not an array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(t, w, tt.response)
			})

			_, appErr := svc.AnalyzeTable(context.Background(), TableRequest{
				Data:     sampleRows(),
				GroupCol: "Group",
			}, "token", "cid-1")
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.CodeAnalysisError, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, 1, reporter.count(), "each shape violation is reported exactly once")
		})
	}
}

func TestAnalyzeTable_TransportErrorPassesThrough(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	_, appErr := svc.AnalyzeTable(context.Background(), TableRequest{
		Data:     sampleRows(),
		GroupCol: "Group",
	}, "token", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code)
	assert.Zero(t, reporter.count(), "transport AppErrors are already normalized and not re-reported here")
}

func TestFillMissingValues_Success(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "columns")
		assert.Equal(t, "Group", body["group_col"])

		respondJSON(t, w, map[string]any{
			"success": true,
			"filled_data": []any{
				map[string]any{"Age": float64(42), "Group": "A"},
				map[string]any{"Age": float64(39.5), "Group": "B"},
			},
			"summary": []any{
				map[string]any{"column": "Age", "before_pct": "50.0", "after_pct": "0.0", "fill_method": "median"},
				map[string]any{"column": "Group", "before_pct": "0.0", "after_pct": "0.0", "fill_method": "none"},
			},
		})
	})

	outcome := svc.FillMissingValues(context.Background(), ImputationRequest{
		Data:     sampleRows(),
		Columns:  []domain.ColumnProfile{{Name: "Age", SuggestedType: "continuous", MissingPct: 50}},
		ContVars: []string{"Age"},
		GroupCol: "Group",
	}, "token", "cid-1")

	require.NotNil(t, outcome)
	assert.Len(t, outcome.Rows, 2)
	assert.Equal(t, []domain.ProcessingLogEntry{{Column: "Age", Method: "median"}}, outcome.Log)
	assert.Zero(t, reporter.count())
}

func TestFillMissingValues_NeverFails(t *testing.T) {
	t.Run("server error returns nil outcome", func(t *testing.T) {
		svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		outcome := svc.FillMissingValues(context.Background(), ImputationRequest{Data: sampleRows()}, "token", "cid-1")
		assert.Nil(t, outcome)
		assert.Equal(t, 1, reporter.count())
	})

	t.Run("success false returns nil outcome", func(t *testing.T) {
		svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(t, w, map[string]any{"success": false, "message": "fill unavailable"})
		})
		outcome := svc.FillMissingValues(context.Background(), ImputationRequest{Data: sampleRows()}, "token", "cid-1")
		assert.Nil(t, outcome)
		assert.Equal(t, 1, reporter.count())
	})

	t.Run("empty filled_data is a silent no-op", func(t *testing.T) {
		svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			respondJSON(t, w, map[string]any{"success": true, "filled_data": []any{}})
		})
		outcome := svc.FillMissingValues(context.Background(), ImputationRequest{Data: sampleRows()}, "token", "cid-1")
		assert.Nil(t, outcome)
		assert.Zero(t, reporter.count())
	})

	t.Run("missing token is reported, not raised", func(t *testing.T) {
		svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
		outcome := svc.FillMissingValues(context.Background(), ImputationRequest{Data: sampleRows()}, "", "cid-1")
		assert.Nil(t, outcome)
		assert.Equal(t, 1, reporter.count())
	})
}

func TestAnalyzeColumnProfiles_ParsesResponse(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{
			"columns": []any{
				map[string]any{"column": "Age", "missing_pct": "12.5%", "suggested_type": "continuous"},
				map[string]any{"column": "Sex", "missing_pct": float64(0), "suggested_type": "categorical", "unique_values": float64(2)},
			},
		})
	})

	profiles := svc.AnalyzeColumnProfiles(context.Background(), sampleRows(), "token", "cid-1")
	require.Len(t, profiles, 2)
	assert.Equal(t, domain.ColumnProfile{Name: "Age", SuggestedType: "continuous", MissingPct: 12.5}, profiles[0])
	assert.Equal(t, domain.ColumnProfile{Name: "Sex", SuggestedType: "categorical", UniqueValues: 2}, profiles[1])
}

func TestAnalyzeColumnProfiles_FallbackOnFailure(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	profiles := svc.AnalyzeColumnProfiles(context.Background(), sampleRows(), "token", "cid-1")
	require.Len(t, profiles, 3)
	names := []string{profiles[0].Name, profiles[1].Name, profiles[2].Name}
	assert.ElementsMatch(t, []string{"Age", "Sex", "Group"}, names)
	for _, p := range profiles {
		assert.Equal(t, "unknown", p.SuggestedType)
		assert.Zero(t, p.MissingPct)
	}
}

func TestStaticToken(t *testing.T) {
	token, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}
