package privacy

import (
	"sync"

	apperrors "tableone/internal/errors"
)

// FileInfo describes the upload pending behind the gate.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Gate holds the state of a paused pipeline waiting for the user to
// acknowledge detected sensitive columns. The dialog-visible flag is owned
// by the caller and survives Reset: detection state and dialog visibility
// are controlled independently.
type Gate struct {
	mu sync.Mutex

	pendingFile      *FileInfo
	sensitiveColumns []string
	suggestions      []string
	dialogVisible    bool
	confirmed        bool
}

// NewGate returns an empty gate.
func NewGate() *Gate {
	return &Gate{}
}

// Arm records a detection result and pauses the pipeline behind the gate.
func (g *Gate) Arm(file FileInfo, result CheckResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingFile = &file
	g.sensitiveColumns = append([]string(nil), result.SensitiveColumns...)
	g.suggestions = append([]string(nil), result.Suggestions...)
	g.dialogVisible = true
	g.confirmed = false
}

// Confirm acknowledges the sensitive columns and lets the pipeline proceed.
// The column list is retained for later reference. Confirming an unarmed
// gate is a VALIDATION_ERROR.
func (g *Gate) Confirm() *apperrors.AppError {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingFile == nil {
		return apperrors.New(apperrors.CodeValidationError, apperrors.ContextPrivacyCheck, "",
			apperrors.WithMessage("no pending file to confirm"))
	}
	g.confirmed = true
	g.dialogVisible = false
	return nil
}

// Cancel terminates the paused pipeline: the pending file reference and
// detection state are cleared.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingFile = nil
	g.sensitiveColumns = nil
	g.suggestions = nil
	g.dialogVisible = false
	g.confirmed = false
}

// Reset clears detection results but intentionally leaves the dialog
// visibility flag untouched.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pendingFile = nil
	g.sensitiveColumns = nil
	g.suggestions = nil
	g.confirmed = false
}

// Confirmed reports whether the user acknowledged the gate.
func (g *Gate) Confirmed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confirmed
}

// Pending reports whether a file is waiting behind the gate.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingFile != nil && !g.confirmed
}

// DialogVisible reports the caller-owned dialog flag.
func (g *Gate) DialogVisible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dialogVisible
}

// SetDialogVisible lets the caller drive dialog visibility independently.
func (g *Gate) SetDialogVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dialogVisible = visible
}

// Snapshot returns the current gate state for the HTTP surface.
func (g *Gate) Snapshot() (file *FileInfo, columns, suggestions []string, visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingFile != nil {
		f := *g.pendingFile
		file = &f
	}
	return file,
		append([]string(nil), g.sensitiveColumns...),
		append([]string(nil), g.suggestions...),
		g.dialogVisible
}
