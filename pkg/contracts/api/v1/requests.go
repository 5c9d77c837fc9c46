// Package v1 defines the HTTP surface contracts: request payloads with
// validation tags and the response envelopes the handlers render.
package v1

import "tableone/pkg/contracts/domain"

// AnalyzeOptions is the JSON part of the multipart analyze request,
// carried in the "options" form field alongside the uploaded file.
type AnalyzeOptions struct {
	GroupVar string `json:"group_var"`
	AutoMode bool   `json:"auto_mode"`
	AIModel  string `json:"ai_model"`

	CatVars  []string `json:"cat_vars"`
	ContVars []string `json:"cont_vars"`

	FillNA bool   `json:"fill_na"`
	Method string `json:"method" validate:"omitempty,oneof=mean median mode knn"`

	DisplayNames   map[string]string            `json:"display_names,omitempty"`
	GroupLabels    map[string]string            `json:"group_labels,omitempty"`
	BinaryMappings map[string]map[string]string `json:"binary_mappings,omitempty"`
	ExportColumns  []string                     `json:"export_columns,omitempty"`
}

// ExportRequest selects columns and presentation options for an export.
// Empty fields fall back to the session's result table.
type ExportRequest struct {
	Filename       string                       `json:"filename" validate:"omitempty,max=255"`
	Sheet          string                       `json:"sheet" validate:"omitempty,max=31"`
	ExportColumns  []string                     `json:"export_columns,omitempty"`
	DisplayNames   map[string]string            `json:"display_names,omitempty"`
	GroupLabels    map[string]string            `json:"group_labels,omitempty"`
	BinaryMappings map[string]map[string]string `json:"binary_mappings,omitempty"`
}

// ImportStateRequest wraps a previously exported session state document.
type ImportStateRequest struct {
	State map[string]any `json:"state" validate:"required"`
}

// DomainBinaryMappings converts the wire shape to the domain type.
func (o AnalyzeOptions) DomainBinaryMappings() map[string]domain.BinaryMapping {
	if len(o.BinaryMappings) == 0 {
		return nil
	}
	out := make(map[string]domain.BinaryMapping, len(o.BinaryMappings))
	for key, m := range o.BinaryMappings {
		out[key] = domain.BinaryMapping(m)
	}
	return out
}

// DomainBinaryMappings converts the wire shape to the domain type.
func (e ExportRequest) DomainBinaryMappings() map[string]domain.BinaryMapping {
	if len(e.BinaryMappings) == 0 {
		return nil
	}
	out := make(map[string]domain.BinaryMapping, len(e.BinaryMappings))
	for key, m := range e.BinaryMappings {
		out[key] = domain.BinaryMapping(m)
	}
	return out
}
