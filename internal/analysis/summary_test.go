package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tableone/internal/errors"
)

func TestGenerateAISummary_TopLevelSummary(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/table/ai-summary", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Age: 42.0 | 37.0", body["data"])

		respondJSON(t, w, map[string]any{"summary": "Both groups were similar in age."})
	})

	summary, appErr := svc.GenerateAISummary(context.Background(), "Age: 42.0 | 37.0", "token", "cid-1")
	require.Nil(t, appErr)
	assert.Equal(t, "Both groups were similar in age.", summary)
	assert.Zero(t, reporter.count())
}

func TestGenerateAISummary_NestedSummary(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{
			"success": true,
			"data":    map[string]any{"summary": "Nested narrative."},
		})
	})

	summary, appErr := svc.GenerateAISummary(context.Background(), "digest", "token", "cid-1")
	require.Nil(t, appErr)
	assert.Equal(t, "Nested narrative.", summary)
	assert.Zero(t, reporter.count())
}

func TestGenerateAISummary_MissingSummaryIsAnalysisError(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"success": true, "data": map[string]any{}})
	})

	_, appErr := svc.GenerateAISummary(context.Background(), "digest", "token", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeAnalysisError, appErr.Code)
	assert.Equal(t, 1, reporter.count())
}

func TestGenerateAISummary_Preconditions(t *testing.T) {
	called := false
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, appErr := svc.GenerateAISummary(context.Background(), "digest", "", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeAuthTokenMissing, appErr.Code)

	_, appErr = svc.GenerateAISummary(context.Background(), "", "token", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	assert.False(t, called, "preconditions fail before any network traffic")
	assert.Equal(t, 2, reporter.count())
}

func TestGenerateAISummary_TransportErrorPassesThrough(t *testing.T) {
	svc, reporter := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"busy"}`, http.StatusServiceUnavailable)
	})

	_, appErr := svc.GenerateAISummary(context.Background(), "digest", "token", "cid-1")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code)
	assert.Zero(t, reporter.count(), "transport errors were normalized upstream")
}
