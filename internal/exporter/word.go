package exporter

import (
	"context"
	"log/slog"

	"tableone/internal/client"
	apperrors "tableone/internal/errors"
	"tableone/pkg/contracts/domain"
)

// wordPath is the backend endpoint generating .docx documents.
const wordPath = "/api/export-word"

// WordPayload is the document-generation request body.
type WordPayload struct {
	ResultTable []domain.TableRow  `json:"resultTable"`
	GroupVar    string             `json:"groupVar"`
	GroupCounts domain.GroupCounts `json:"groupCounts"`
}

// WordExporter requests a .docx rendering of the result table from the
// backend document endpoint.
type WordExporter struct {
	client *client.Client
	path   string
	logger *slog.Logger
}

// NewWordExporter creates a WordExporter using the shared backend client.
func NewWordExporter(c *client.Client, logger *slog.Logger) *WordExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordExporter{client: c, path: wordPath, logger: logger}
}

// Export posts the payload and returns the generated document bytes.
// Any non-2xx from the document endpoint means no document was produced,
// so the status-derived error normalizes to SERVER_ERROR with the status
// kept in details; pure transport failures become FILE_ERROR.
func (e *WordExporter) Export(ctx context.Context, payload WordPayload, token, correlationID, filename string) (*Artifact, *apperrors.AppError) {
	if filename == "" {
		filename = DefaultWordFilename
	}

	data, appErr := e.client.PostRaw(ctx, e.path, token, correlationID, payload)
	if appErr != nil {
		if appErr.Code == apperrors.CodeNetworkError {
			return nil, apperrors.New(apperrors.CodeFileError, apperrors.ContextFileProcessing, "",
				apperrors.WithMessage("document generation unreachable"),
				apperrors.WithCause(appErr),
				apperrors.WithCorrelationID(correlationID))
		}
		opts := []apperrors.Option{
			apperrors.WithMessage("document generation failed: " + appErr.Message),
			apperrors.WithCause(appErr),
			apperrors.WithCorrelationID(correlationID),
		}
		if appErr.Details != nil {
			opts = append(opts, apperrors.WithDetails(appErr.Details))
		}
		return nil, apperrors.New(apperrors.CodeServerError, apperrors.ContextNetwork, "network.server_error", opts...)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CodeServerError, apperrors.ContextNetwork, "network.server_error",
			apperrors.WithMessage("document endpoint returned an empty body"),
			apperrors.WithCorrelationID(correlationID))
	}

	e.logger.Info("word export complete",
		slog.Int("table_rows", len(payload.ResultTable)),
		slog.Int("bytes", len(data)))
	return &Artifact{Filename: filename, MIME: MIMEWord, Data: data}, nil
}
