package errors

import "fmt"

// FileEmpty reports a file with no usable rows.
func FileEmpty(filename string) *AppError {
	return New(CodeFileEmpty, ContextFileUpload, "file.empty_file",
		WithDetails(Details{"filename": filename}))
}

// FileSizeExceeded reports a file larger than the configured limit. Sizes are
// in bytes.
func FileSizeExceeded(filename string, actual, max int64) *AppError {
	return New(CodeFileSizeExceeded, ContextFileUpload, "file.size_exceeded",
		WithDetails(Details{
			"filename": filename,
			"size":     actual,
			"max_size": max,
			"size_mb":  fmt.Sprintf("%.1f", float64(actual)/(1024*1024)),
			"limit_mb": fmt.Sprintf("%.1f", float64(max)/(1024*1024)),
		}))
}

// FileFormatUnsupported reports an extension outside the accepted set.
func FileFormatUnsupported(filename, ext string) *AppError {
	return New(CodeFileFormatUnsupported, ContextFileUpload, "file.format_unsupported",
		WithDetails(Details{"filename": filename, "extension": ext}))
}

// FileCorrupted reports a file that could not be parsed.
func FileCorrupted(filename string, cause error) *AppError {
	return New(CodeFileCorrupted, ContextFileProcessing, "file.corrupted",
		WithDetails(Details{"filename": filename}),
		WithCause(cause))
}

// FileReadFailed reports an IO failure while reading an upload.
func FileReadFailed(filename string, cause error) *AppError {
	return New(CodeFileError, ContextFileProcessing, "file.read_failed",
		WithDetails(Details{"filename": filename}),
		WithCause(cause))
}

// SensitiveDataDetected reports columns flagged by the privacy gate.
// matches maps column name to the keyword group that tripped it.
func SensitiveDataDetected(matches map[string]string) *AppError {
	return New(CodeSensitiveDataDetected, ContextPrivacyCheck, "privacy.sensitive_data_detected",
		WithDetails(Details{"matches": matches}))
}

// AuthTokenMissing reports a request attempted without credentials.
func AuthTokenMissing(correlationID string) *AppError {
	return New(CodeAuthTokenMissing, ContextAuthentication, "auth.token_missing",
		WithCorrelationID(correlationID))
}

// NoVariablesSelected reports an analysis request with nothing to analyze:
// no categorical variables, no continuous variables and no group variable.
func NoVariablesSelected(correlationID string) *AppError {
	return New(CodeAnalysisError, ContextAnalysis, "analysis.no_variables",
		WithCorrelationID(correlationID))
}

// AnalysisFailed wraps an arbitrary analysis failure.
func AnalysisFailed(cause error, correlationID string) *AppError {
	return New(CodeAnalysisError, ContextAnalysis, "analysis.failed",
		WithCause(cause),
		WithCorrelationID(correlationID))
}

// AnalysisTimeout reports an analysis call that ran past its deadline.
func AnalysisTimeout(correlationID string) *AppError {
	return New(CodeAnalysisTimeout, ContextAnalysis, "analysis.timeout",
		WithCorrelationID(correlationID))
}

// ColumnTypeDetectionFailed reports that variable classification failed and
// no fallback classification could be produced.
func ColumnTypeDetectionFailed(cause error, correlationID string) *AppError {
	return New(CodeColumnTypeDetectionFailed, ContextAnalysis, "column.type_detection_failed",
		WithCause(cause),
		WithCorrelationID(correlationID))
}

// NetworkFailure reports a transport-level failure (connection refused, DNS,
// deadline exceeded on the client side).
func NetworkFailure(cause error, correlationID string) *AppError {
	return New(CodeNetworkError, ContextNetwork, "network.connection_failed",
		WithCause(cause),
		WithCorrelationID(correlationID))
}

// ServerFailure reports a 5xx from the analysis backend.
func ServerFailure(status int, correlationID string) *AppError {
	return New(CodeServerError, ContextNetwork, "network.server_error",
		WithDetails(Details{"status": status}),
		WithCorrelationID(correlationID))
}

// RateLimited reports a 429 from the analysis backend.
func RateLimited(correlationID string) *AppError {
	return New(CodeRateLimitError, ContextNetwork, "network.rate_limit",
		WithCorrelationID(correlationID))
}

// Unknown wraps an unclassifiable failure.
func Unknown(cause error, correlationID string) *AppError {
	return New(CodeUnknownError, ContextUnknown, "",
		WithCause(cause),
		WithCorrelationID(correlationID))
}
