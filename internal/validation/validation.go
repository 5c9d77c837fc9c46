// Package validation implements the pre-network file checks: extension,
// size ceiling and emptiness. Warnings are advisory and never block.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"tableone/internal/config"
	apperrors "tableone/internal/errors"
)

// allowedExtensions is the accepted upload set.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

// sizeWarningFraction of the hard ceiling at which a non-fatal "large
// file" warning is produced.
const sizeWarningFraction = 0.5

// Result is the outcome of validating one candidate file. A new validation
// replaces, never appends to, the warning set.
type Result struct {
	IsValid  bool
	Warnings []string
	Error    *apperrors.AppError
}

// Validator checks candidate files against the configured limits.
type Validator struct {
	limits config.LimitsConfig
}

// New creates a Validator.
func New(limits config.LimitsConfig) *Validator {
	return &Validator{limits: limits}
}

// ValidateFile checks name and size before any parsing or network call.
// Order matters: emptiness, then extension, then size ceiling.
func (v *Validator) ValidateFile(name string, size int64) Result {
	if name == "" || size == 0 {
		return Result{Error: apperrors.FileEmpty(name)}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return Result{Error: apperrors.FileFormatUnsupported(name, ext)}
	}

	if size > v.limits.MaxFileSize {
		return Result{Error: apperrors.FileSizeExceeded(name, size, v.limits.MaxFileSize)}
	}

	return Result{IsValid: true, Warnings: v.SizeWarning(size)}
}

// SizeWarning returns advisory warnings for large (but acceptable) files.
func (v *Validator) SizeWarning(size int64) []string {
	threshold := int64(float64(v.limits.MaxFileSize) * sizeWarningFraction)
	if threshold > 0 && size > threshold {
		return []string{fmt.Sprintf(
			"file is large (%s); parsing and analysis may be slow",
			FormatFileSize(size))}
	}
	return nil
}

// FormatFileSize renders a byte count for humans.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
