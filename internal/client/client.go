// Package client is the HTTP client for the statistics backend. Every call
// is a POST with a JSON body, a bearer token and an X-Correlation-ID
// header; failures come back as *AppError through one normalization path.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tableone/internal/config"
	apperrors "tableone/internal/errors"
	"tableone/internal/infrastructure"
)

// Client talks to the statistics backend.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	requestTimeout  time.Duration
	analysisTimeout time.Duration
	limiter         *rate.Limiter
	metrics         *infrastructure.Metrics
	logger          *slog.Logger
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics attaches backend request collectors.
func WithMetrics(m *infrastructure.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client from configuration. Deadlines are per-call: the
// default request timeout applies unless the caller's context already
// carries a deadline, so AnalysisContext can extend long analysis calls
// past the default. The http.Client itself carries no timeout.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:      &http.Client{},
		requestTimeout:  cfg.RequestTimeout,
		analysisTimeout: cfg.AnalysisTimeout,
		limiter:         rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalysisContext derives a context carrying the extended deadline used by
// long-running analysis calls. The caller must invoke the cancel func.
func (c *Client) AnalysisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.analysisTimeout)
}

// PostJSON sends a POST to path with the payload serialized as JSON and
// decodes the response body into a generic map. A nil token means the call
// is unauthenticated; callers enforce their own AUTH_ERROR preconditions.
func (c *Client) PostJSON(ctx context.Context, path, token, correlationID string, payload any) (map[string]any, *apperrors.AppError) {
	body, status, appErr := c.post(ctx, path, token, correlationID, payload)
	if appErr != nil {
		return nil, appErr
	}

	var decoded map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, apperrors.New(apperrors.CodeServerError, apperrors.ContextNetwork, "network.server_error",
				apperrors.WithMessage("backend returned malformed JSON"),
				apperrors.WithCause(err),
				apperrors.WithCorrelationID(correlationID),
				apperrors.WithDetails(apperrors.Details{"status": status, "path": path}))
		}
	}
	return decoded, nil
}

// PostRaw sends a POST and returns the raw response bytes, for binary
// artifacts such as generated documents.
func (c *Client) PostRaw(ctx context.Context, path, token, correlationID string, payload any) ([]byte, *apperrors.AppError) {
	body, _, appErr := c.post(ctx, path, token, correlationID, payload)
	return body, appErr
}

func (c *Client) post(ctx context.Context, path, token, correlationID string, payload any) ([]byte, int, *apperrors.AppError) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, 0, apperrors.New(apperrors.CodeServerError, apperrors.ContextNetwork, "",
			apperrors.WithMessage(fmt.Sprintf("invalid backend path %q", path)),
			apperrors.WithCause(err),
			apperrors.WithCorrelationID(correlationID))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, c.normalizeTransportError(err, correlationID)
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, apperrors.New(apperrors.CodeValidationError, apperrors.ContextNetwork, "",
			apperrors.WithMessage("failed to encode request payload"),
			apperrors.WithCause(err),
			apperrors.WithCorrelationID(correlationID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, apperrors.NetworkFailure(err, correlationID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	req.Header.Set("User-Agent", "tableone-client/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(path, 0, duration)
		c.logger.ErrorContext(ctx, "backend request failed",
			slog.String("path", path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, 0, c.normalizeTransportError(err, correlationID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(path, resp.StatusCode, duration)
		return nil, resp.StatusCode, apperrors.NetworkFailure(err, correlationID)
	}

	c.observe(path, resp.StatusCode, duration)
	c.logger.DebugContext(ctx, "backend request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody map[string]any
		_ = json.Unmarshal(body, &errBody)
		return nil, resp.StatusCode,
			apperrors.FromHTTPStatus(resp.StatusCode, apperrors.ContextNetwork, correlationID, errBody)
	}

	return body, resp.StatusCode, nil
}

// normalizeTransportError maps context/transport failures to the taxonomy:
// every timeout or connection failure is a NETWORK_ERROR.
func (c *Client) normalizeTransportError(err error, correlationID string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	return apperrors.NetworkFailure(err, correlationID)
}

func (c *Client) observe(path string, status int, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	endpoint := strings.Trim(path, "/")
	c.metrics.BackendRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.metrics.BackendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
