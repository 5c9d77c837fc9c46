package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode Code
	}{
		{"bad request", 400, CodeValidationError},
		{"unauthorized", 401, CodeAuthError},
		{"forbidden", 403, CodeAuthError},
		{"not found", 404, CodeValidationError},
		{"conflict", 409, CodeDataValidationFailed},
		{"unprocessable", 422, CodeDataValidationFailed},
		{"rate limited", 429, CodeRateLimitError},
		{"internal", 500, CodeServerError},
		{"bad gateway", 502, CodeServerError},
		{"teapot", 418, CodeValidationError},
		{"unexpected 3xx", 302, CodeUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromHTTPStatus(tt.status, ContextNetwork, "corr-1", nil)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, "corr-1", err.CorrelationID)
			assert.Equal(t, tt.status, err.Details["status"])
		})
	}
}

func TestFromHTTPStatus_NotFoundUserMessage(t *testing.T) {
	err := FromHTTPStatus(http.StatusNotFound, ContextNetwork, "corr-4", nil)
	assert.Equal(t, CodeValidationError, err.Code)
	assert.Equal(t, "The requested resource was not found", err.UserMessage)
	assert.Equal(t, "Check the request and retry", err.Action)
	assert.False(t, err.CanRetry)
}

func TestFromHTTPStatus_BodyMessageWins(t *testing.T) {
	body := map[string]any{"message": "group variable has a single level"}
	err := FromHTTPStatus(422, ContextAnalysis, "corr-2", body)
	assert.Equal(t, "group variable has a single level", err.Message)
	assert.Equal(t, "group variable has a single level", err.UserMessage)
}

func TestFromHTTPStatus_AuthContextOverride(t *testing.T) {
	err := FromHTTPStatus(401, ContextAnalysis, "corr-3", nil)
	assert.Equal(t, ContextAuthentication, err.Context)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want int
	}{
		{"validation", CodeValidationError, http.StatusBadRequest},
		{"file empty", CodeFileEmpty, http.StatusBadRequest},
		{"file too large", CodeFileSizeExceeded, http.StatusRequestEntityTooLarge},
		{"auth", CodeAuthTokenMissing, http.StatusUnauthorized},
		{"privacy", CodeSensitiveDataDetected, http.StatusUnprocessableEntity},
		{"timeout", CodeAnalysisTimeout, http.StatusGatewayTimeout},
		{"rate limit", CodeRateLimitError, http.StatusTooManyRequests},
		{"network", CodeNetworkError, http.StatusBadGateway},
		{"analysis", CodeAnalysisError, http.StatusInternalServerError},
		{"unknown", CodeUnknownError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(New(tt.code, ContextUnknown, "")))
		})
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(nil))
}
