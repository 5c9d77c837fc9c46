package errors

import "net/http"

// FromHTTPStatus maps a backend response status to an AppError. body is the
// decoded error payload, if any; when it carries a usable message that
// message wins over the per-code default.
func FromHTTPStatus(status int, ctx Context, correlationID string, body map[string]any) *AppError {
	var opts []Option
	opts = append(opts, WithCorrelationID(correlationID))
	if msg := bodyMessage(body); msg != "" {
		opts = append(opts, WithMessage(msg))
	}
	opts = append(opts, WithDetails(Details{"status": status}))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(CodeAuthError, ContextAuthentication, "auth.unauthorized", opts...)
	case status == http.StatusNotFound:
		return New(CodeValidationError, ctx, "validation.not_found", opts...)
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return New(CodeDataValidationFailed, ctx, "", opts...)
	case status == http.StatusTooManyRequests:
		return New(CodeRateLimitError, ctx, "network.rate_limit", opts...)
	case status >= 500:
		return New(CodeServerError, ctx, "network.server_error", opts...)
	case status >= 400:
		return New(CodeValidationError, ctx, "", opts...)
	default:
		return New(CodeUnknownError, ctx, "", opts...)
	}
}

// HTTPStatus is the inverse mapping, used when rendering an AppError over
// this service's own HTTP surface.
func HTTPStatus(e *AppError) int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeValidationError, CodeDataValidationFailed, CodeColumnValidationFailed,
		CodeFileError, CodeFileEmpty, CodeFileCorrupted, CodeFileFormatUnsupported:
		return http.StatusBadRequest
	case CodeFileSizeExceeded:
		return http.StatusRequestEntityTooLarge
	case CodeAuthError, CodeAuthTokenMissing:
		return http.StatusUnauthorized
	case CodePrivacyError, CodeSensitiveDataDetected:
		return http.StatusUnprocessableEntity
	case CodeAnalysisTimeout:
		return http.StatusGatewayTimeout
	case CodeRateLimitError:
		return http.StatusTooManyRequests
	case CodeNetworkError:
		return http.StatusBadGateway
	case CodeAnalysisError, CodeColumnTypeDetectionFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func bodyMessage(body map[string]any) string {
	if body == nil {
		return ""
	}
	for _, key := range []string{"user_message", "message", "error", "detail"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
