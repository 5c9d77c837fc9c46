// Package errors defines the application-wide error taxonomy.
//
// Every error that crosses a stage boundary is an *AppError: a typed value
// carrying a machine-readable code, a user-facing message with a suggested
// corrective action, a severity, a retry policy and a correlation id that is
// threaded through every network call and error report belonging to the same
// logical operation. Raw errors never propagate out of a stage; they are
// wrapped here first.
package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Code identifies a category of failure.
type Code string

const (
	// File errors
	CodeFileError             Code = "FILE_ERROR"
	CodeFileSizeExceeded      Code = "FILE_SIZE_EXCEEDED"
	CodeFileFormatUnsupported Code = "FILE_FORMAT_UNSUPPORTED"
	CodeFileCorrupted         Code = "FILE_CORRUPTED"
	CodeFileEmpty             Code = "FILE_EMPTY"

	// Validation errors
	CodeValidationError        Code = "VALIDATION_ERROR"
	CodeDataValidationFailed   Code = "DATA_VALIDATION_FAILED"
	CodeColumnValidationFailed Code = "COLUMN_VALIDATION_FAILED"

	// Privacy errors
	CodePrivacyError          Code = "PRIVACY_ERROR"
	CodeSensitiveDataDetected Code = "SENSITIVE_DATA_DETECTED"

	// Authentication errors
	CodeAuthError        Code = "AUTH_ERROR"
	CodeAuthTokenMissing Code = "AUTH_TOKEN_MISSING"

	// Analysis errors
	CodeAnalysisError             Code = "ANALYSIS_ERROR"
	CodeAnalysisTimeout           Code = "ANALYSIS_TIMEOUT"
	CodeColumnTypeDetectionFailed Code = "COLUMN_TYPE_DETECTION_FAILED"

	// Network errors
	CodeNetworkError   Code = "NETWORK_ERROR"
	CodeServerError    Code = "SERVER_ERROR"
	CodeRateLimitError Code = "RATE_LIMIT_ERROR"

	// Fallback
	CodeUnknownError Code = "UNKNOWN_ERROR"
)

// Context identifies where in the pipeline an error originated.
type Context string

const (
	ContextFileUpload     Context = "FILE_UPLOAD"
	ContextFileProcessing Context = "FILE_PROCESSING"
	ContextDataValidation Context = "DATA_VALIDATION"
	ContextPrivacyCheck   Context = "PRIVACY_CHECK"
	ContextAuthentication Context = "AUTHENTICATION"
	ContextAnalysis       Context = "ANALYSIS"
	ContextNetwork        Context = "NETWORK"
	ContextUnknown        Context = "UNKNOWN"
)

// Severity grades how serious an error is for the user.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Details carries structured data attached to an error, such as an HTTP
// status or the actual/maximum file size for a limit violation. Values must
// be JSON-serializable; the struct crosses the reporting boundary as-is.
type Details map[string]any

// AppError is the canonical error value used throughout the pipeline.
type AppError struct {
	Code          Code      `json:"code"`
	Context       Context   `json:"context"`
	Message       string    `json:"message"`
	UserMessage   string    `json:"user_message"`
	Severity      Severity  `json:"severity"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	CanRetry      bool      `json:"can_retry"`
	Details       Details   `json:"details,omitempty"`
	Cause         error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "unknown application error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Option customizes error construction.
type Option func(*options)

type options struct {
	customMessage string
	details       Details
	cause         error
	correlationID string
}

// WithMessage overrides the looked-up message and user message.
func WithMessage(msg string) Option {
	return func(o *options) { o.customMessage = msg }
}

// WithDetails attaches structured detail data.
func WithDetails(d Details) Option {
	return func(o *options) { o.details = d }
}

// WithCause records the underlying error.
func WithCause(err error) Option {
	return func(o *options) { o.cause = err }
}

// WithCorrelationID reuses an existing correlation id instead of minting one.
// Stages pass the id of the logical operation so every error and network call
// belonging to it can be matched in server-side logs.
func WithCorrelationID(id string) Option {
	return func(o *options) { o.correlationID = id }
}

// New constructs an AppError. Deterministic for a given code/context/messageKey
// apart from the timestamp and a freshly minted correlation id. messageKey
// selects an entry from the message table; an empty key falls back to the
// per-code defaults.
func New(code Code, ctx Context, messageKey string, opts ...Option) *AppError {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if ctx == "" {
		ctx = ContextUnknown
	}

	correlationID := o.correlationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	info, hasInfo := messageTable[messageKey]

	message := o.customMessage
	userMessage := o.customMessage
	if message == "" {
		if hasInfo {
			message = info.UserMessage
			userMessage = info.UserMessage
		} else {
			message = defaultMessage(code)
			userMessage = defaultUserMessage(code)
		}
	}

	action := defaultAction(code)
	severity := defaultSeverity(code)
	canRetry := defaultCanRetry(code)
	if hasInfo {
		action = info.Action
		severity = info.Severity
		canRetry = info.CanRetry
	}

	return &AppError{
		Code:          code,
		Context:       ctx,
		Message:       message,
		UserMessage:   userMessage,
		Severity:      severity,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Action:        action,
		CanRetry:      canRetry,
		Details:       o.details,
		Cause:         o.cause,
	}
}

// IsAppError reports whether err is (or wraps) an AppError, or is a plain
// value that structurally looks like one. Structural matching matters because
// error values can cross serialization boundaries (a backend response
// rehydrated from JSON keeps the shape but loses the concrete type).
func IsAppError(err any) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(error); ok {
		var appErr *AppError
		if errors.As(e, &appErr) {
			return true
		}
	}
	if m, ok := err.(map[string]any); ok {
		_, hasCode := m["code"]
		_, hasMessage := m["message"]
		_, hasCorrelation := m["correlation_id"]
		return hasCode && hasMessage && hasCorrelation
	}
	return false
}

// AsAppError extracts the AppError from err, or nil if there is none.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ExtractMessage returns the best human-readable message for an arbitrary
// thrown value: the user message for AppErrors, Error() for native errors,
// and a formatted fallback otherwise. User-facing surfaces call this
// uniformly so they never render an opaque struct dump.
func ExtractMessage(err any) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(error); ok {
		if appErr := AsAppError(e); appErr != nil {
			return appErr.UserMessage
		}
		return e.Error()
	}
	return fmt.Sprintf("%v", err)
}

// Wrap normalizes an arbitrary error into an AppError with the given code and
// context. AppErrors pass through unchanged so they are never double-wrapped
// or double-reported on the way up the call stack.
func Wrap(err error, code Code, ctx Context, correlationID string) *AppError {
	if err == nil {
		return nil
	}
	if appErr := AsAppError(err); appErr != nil {
		return appErr
	}
	return New(code, ctx, "",
		WithMessage(err.Error()),
		WithCause(err),
		WithCorrelationID(correlationID),
	)
}
