package errors

// MessageInfo is one entry of the user-facing message table.
type MessageInfo struct {
	UserMessage string
	Action      string
	Severity    Severity
	CanRetry    bool
}

// messageTable maps message keys to user-facing copy and policy. Keys are
// grouped by concern; stages reference them instead of hand-writing strings
// so wording stays consistent across surfaces.
var messageTable = map[string]MessageInfo{
	// File errors
	"file.format_unsupported": {
		UserMessage: "Unsupported file format, please choose a CSV or Excel file",
		Action:      "Upload a .csv, .xls or .xlsx file",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},
	"file.size_exceeded": {
		UserMessage: "File size exceeds the limit",
		Action:      "Choose a smaller file or upgrade your plan",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},
	"file.empty_file": {
		UserMessage: "The file is empty or contains no usable data",
		Action:      "Check the file contents and upload again",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},
	"file.corrupted": {
		UserMessage: "The file is corrupted or malformed",
		Action:      "Verify the file opens correctly and upload again",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},
	"file.read_failed": {
		UserMessage: "Failed to read the file",
		Action:      "Retry, or check that the file is intact",
		Severity:    SeverityHigh,
		CanRetry:    true,
	},

	// Privacy errors
	"privacy.sensitive_data_detected": {
		UserMessage: "The file contains sensitive data and cannot be processed",
		Action:      "Remove personally identifying columns and upload again",
		Severity:    SeverityHigh,
		CanRetry:    false,
	},

	// Authentication errors
	"auth.token_missing": {
		UserMessage: "Your session has expired, please sign in again",
		Action:      "Sign in and retry",
		Severity:    SeverityHigh,
		CanRetry:    false,
	},
	"auth.unauthorized": {
		UserMessage: "You are not authorized to perform this operation",
		Action:      "Check your permissions or contact an administrator",
		Severity:    SeverityHigh,
		CanRetry:    false,
	},

	// Analysis errors
	"analysis.failed": {
		UserMessage: "Data analysis failed",
		Action:      "Retry, or check the data format",
		Severity:    SeverityHigh,
		CanRetry:    true,
	},
	"analysis.timeout": {
		UserMessage: "The analysis timed out",
		Action:      "Retry later, or use a smaller dataset",
		Severity:    SeverityMedium,
		CanRetry:    true,
	},
	"analysis.no_variables": {
		UserMessage: "No variables selected",
		Action:      "Select at least one variable to analyze",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},
	"column.type_detection_failed": {
		UserMessage: "Column type detection failed",
		Action:      "Check the data format or assign column types manually",
		Severity:    SeverityMedium,
		CanRetry:    true,
	},
	"column.no_valid_columns": {
		UserMessage: "No valid data columns were found",
		Action:      "Check the file format and contents",
		Severity:    SeverityHigh,
		CanRetry:    false,
	},

	// Validation errors
	"validation.not_found": {
		UserMessage: "The requested resource was not found",
		Action:      "Check the request and retry",
		Severity:    SeverityMedium,
		CanRetry:    false,
	},

	// Network errors
	"network.connection_failed": {
		UserMessage: "Network connection failed",
		Action:      "Check your connection and retry",
		Severity:    SeverityMedium,
		CanRetry:    true,
	},
	"network.server_error": {
		UserMessage: "Server error, please retry later",
		Action:      "Retry later; contact support if the problem persists",
		Severity:    SeverityHigh,
		CanRetry:    true,
	},
	"network.rate_limit": {
		UserMessage: "Too many requests, please slow down",
		Action:      "Wait a moment and retry",
		Severity:    SeverityLow,
		CanRetry:    true,
	},
}

func defaultMessage(code Code) string {
	switch code {
	case CodeFileError, CodeFileEmpty, CodeFileCorrupted, CodeFileSizeExceeded, CodeFileFormatUnsupported:
		return "file processing error"
	case CodeValidationError, CodeDataValidationFailed, CodeColumnValidationFailed:
		return "data validation failed"
	case CodePrivacyError, CodeSensitiveDataDetected:
		return "privacy check failed"
	case CodeAuthError, CodeAuthTokenMissing:
		return "authentication error"
	case CodeAnalysisError, CodeAnalysisTimeout, CodeColumnTypeDetectionFailed:
		return "analysis error"
	case CodeNetworkError:
		return "network error"
	case CodeServerError:
		return "server error"
	case CodeRateLimitError:
		return "rate limit exceeded"
	default:
		return "unknown error"
	}
}

func defaultUserMessage(code Code) string {
	switch code {
	case CodeFileError, CodeFileEmpty, CodeFileCorrupted, CodeFileSizeExceeded, CodeFileFormatUnsupported:
		return "An error occurred while processing the file, please choose it again"
	case CodeValidationError, CodeDataValidationFailed, CodeColumnValidationFailed:
		return "The data format is incorrect, please check the file contents"
	case CodePrivacyError, CodeSensitiveDataDetected:
		return "The file contains sensitive data, please remove it and upload again"
	case CodeAuthError, CodeAuthTokenMissing:
		return "Authentication failed, please sign in again"
	case CodeAnalysisError, CodeAnalysisTimeout, CodeColumnTypeDetectionFailed:
		return "An error occurred during analysis, please retry"
	case CodeNetworkError:
		return "Network connection problem, please check your connection"
	case CodeServerError:
		return "The server is temporarily unavailable, please retry later"
	case CodeRateLimitError:
		return "Too many requests, please retry in a moment"
	default:
		return "An unexpected error occurred, please retry or contact support"
	}
}

func defaultAction(code Code) string {
	switch code {
	case CodeFileError, CodeFileEmpty, CodeFileCorrupted, CodeFileSizeExceeded, CodeFileFormatUnsupported:
		return "Choose a valid file and upload again"
	case CodeValidationError, CodeDataValidationFailed, CodeColumnValidationFailed:
		return "Check the data format and upload again"
	case CodePrivacyError, CodeSensitiveDataDetected:
		return "Remove sensitive columns and upload again"
	case CodeAuthError, CodeAuthTokenMissing:
		return "Sign in again"
	case CodeAnalysisError, CodeAnalysisTimeout, CodeColumnTypeDetectionFailed:
		return "Retry or contact support"
	case CodeNetworkError:
		return "Check your network connection and retry"
	case CodeServerError, CodeRateLimitError:
		return "Retry later"
	default:
		return "Retry or contact support"
	}
}

func defaultSeverity(code Code) Severity {
	switch code {
	case CodePrivacyError, CodeSensitiveDataDetected, CodeAuthError, CodeAuthTokenMissing, CodeServerError:
		return SeverityHigh
	case CodeNetworkError, CodeRateLimitError:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func defaultCanRetry(code Code) bool {
	switch code {
	case CodeFileFormatUnsupported, CodeFileSizeExceeded, CodeSensitiveDataDetected, CodeAuthTokenMissing, CodeValidationError, CodeDataValidationFailed, CodeColumnValidationFailed:
		return false
	case CodeNetworkError, CodeServerError, CodeAnalysisTimeout, CodeRateLimitError:
		return true
	default:
		return true
	}
}
