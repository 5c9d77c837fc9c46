package validation

import (
	"log/slog"
	"os"

	apperrors "tableone/internal/errors"
)

// LocalFileValidator validates files on the local filesystem, used by the
// CLI entrypoint before the pipeline runs.
type LocalFileValidator struct {
	validator *Validator
	logger    *slog.Logger
}

// NewLocalFileValidator creates a validator for local file paths.
func NewLocalFileValidator(v *Validator, logger *slog.Logger) *LocalFileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalFileValidator{validator: v, logger: logger}
}

// ValidatePath stats the file and runs the standard file checks against it.
func (l *LocalFileValidator) ValidatePath(path string) Result {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		l.logger.Error("input file does not exist", slog.String("path", path))
		return Result{Error: apperrors.FileReadFailed(path, err)}
	}
	if err != nil {
		l.logger.Error("failed to stat input file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Result{Error: apperrors.FileReadFailed(path, err)}
	}
	if info.IsDir() {
		return Result{Error: apperrors.FileFormatUnsupported(path, "")}
	}

	result := l.validator.ValidateFile(path, info.Size())
	for _, w := range result.Warnings {
		l.logger.Warn("file validation warning",
			slog.String("path", path),
			slog.String("warning", w))
	}
	return result
}
