package session

import (
	"encoding/json"

	apperrors "tableone/internal/errors"
	"tableone/pkg/contracts/domain"
)

// ExportedState is the persisted session document. It intentionally holds
// only the user's choices, not datasets or results: re-importing replays
// the choices against a freshly uploaded file.
type ExportedState struct {
	Variables        exportedVariables `json:"variables"`
	AutoAnalysisMode bool              `json:"autoAnalysisMode"`
	AIModel          string            `json:"aiModel,omitempty"`
}

type exportedVariables struct {
	GroupVar         string                  `json:"groupVar"`
	CatVars          []string                `json:"catVars"`
	ContVars         []string                `json:"contVars"`
	FillNA           bool                    `json:"fillNA"`
	ImputationMethod domain.ImputationMethod `json:"imputationMethod,omitempty"`
}

// ExportState serializes the current choices to JSON.
func (s *Store) ExportState() ([]byte, *apperrors.AppError) {
	classification := s.Classification()
	fillNA, method := s.FillNA()
	autoMode, aiModel := s.AutoMode()

	state := ExportedState{
		Variables: exportedVariables{
			GroupVar:         classification.GroupVar,
			CatVars:          classification.CatVars,
			ContVars:         classification.ContVars,
			FillNA:           fillNA,
			ImputationMethod: method,
		},
		AutoAnalysisMode: autoMode,
		AIModel:          aiModel,
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidationError, apperrors.ContextUnknown, "",
			apperrors.WithMessage("failed to serialize session state"),
			apperrors.WithCause(err))
	}
	return data, nil
}

// ImportState parses an exported document and applies it through the same
// named setters interactive use goes through. Malformed JSON yields a
// VALIDATION_ERROR, never a panic.
func (s *Store) ImportState(data []byte) *apperrors.AppError {
	var state ExportedState
	if err := json.Unmarshal(data, &state); err != nil {
		return apperrors.New(apperrors.CodeValidationError, apperrors.ContextUnknown, "",
			apperrors.WithMessage("malformed session state document"),
			apperrors.WithCause(err))
	}

	s.SetClassification(domain.VariableClassification{
		GroupVar: state.Variables.GroupVar,
		CatVars:  state.Variables.CatVars,
		ContVars: state.Variables.ContVars,
	})
	s.SetFillNA(state.Variables.FillNA, state.Variables.ImputationMethod)
	s.SetAutoMode(state.AutoAnalysisMode, state.AIModel)
	return nil
}
