// Package privacy implements the sensitive-column gate: a keyword-based
// detector over column names and a confirmation gate that pauses the
// pipeline until the caller explicitly proceeds or cancels.
package privacy

import (
	"fmt"
	"log/slog"
	"strings"
)

// ColumnType classifies why a column was flagged.
type ColumnType string

const (
	TypeName      ColumnType = "name"
	TypeMedicalID ColumnType = "medical_id"
	TypeID        ColumnType = "id"
	TypeContact   ColumnType = "contact"
	TypeBirth     ColumnType = "birth"
)

type pattern struct {
	keywords []string
	colType  ColumnType
}

// sensitivePatterns groups the keywords that mark a column as personally
// identifying. Matching is normalized contains-matching, so "patient_name"
// trips on "patient" and on "name".
var sensitivePatterns = []pattern{
	{
		keywords: []string{"name", "patient", "person"},
		colType:  TypeName,
	},
	{
		keywords: []string{"chart", "medical", "mr", "record", "patient_id", "patientid"},
		colType:  TypeMedicalID,
	},
	{
		keywords: []string{
			"id_number", "idnumber", "national_id", "nationalid",
			"id_card", "idcard", "citizen_id", "citizenid", "ssn", "passport",
		},
		colType: TypeID,
	},
	{
		keywords: []string{
			"phone", "telephone", "mobile", "cellphone", "tel",
			"contact_phone", "contactphone", "address", "home_address",
			"homeaddress", "addr", "email", "e_mail", "mail",
		},
		colType: TypeContact,
	},
	{
		keywords: []string{
			"birth", "birthday", "date_of_birth", "dateofbirth",
			"dob", "born_date", "borndate",
		},
		colType: TypeBirth,
	},
}

// medicalTestWhitelist names laboratory or vital-sign columns that look
// sensitive to the keyword matcher but are legitimate study variables.
// Whitelist membership is checked before any sensitive pattern.
var medicalTestWhitelist = []string{
	// blood panel
	"platelets", "platelet", "plt", "wbc", "rbc", "hemoglobin", "hematocrit",
	"glucose", "cholesterol", "triglyceride", "hdl", "ldl",
	// chemistry
	"creatinine", "urea", "bun", "alt", "ast", "bilirubin", "albumin",
	"protein", "calcium", "phosphorus",
	// vitals and common terms
	"systolic", "diastolic", "pulse", "temperature", "weight", "height",
	"bmi", "bsa", "diagnosis", "medication", "dose", "dosage",
}

// suggestionFor renders the per-type remediation advice.
func suggestionFor(colType ColumnType, column string) string {
	switch colType {
	case TypeName:
		return fmt.Sprintf("Remove name column %q, or replace it with an anonymized identifier", column)
	case TypeMedicalID:
		return fmt.Sprintf("Remove medical record column %q, or replace it with a study identifier", column)
	case TypeID:
		return fmt.Sprintf("Remove identity column %q, or use a de-identified code", column)
	case TypeContact:
		return fmt.Sprintf("Remove contact information column %q", column)
	case TypeBirth:
		return fmt.Sprintf("Remove birth-date column %q, or keep only the year or age group", column)
	default:
		return fmt.Sprintf("Review whether column %q contains sensitive data", column)
	}
}

// CheckResult is the outcome of scanning one column set.
type CheckResult struct {
	HasSensitiveData bool              `json:"has_sensitive_data"`
	SensitiveColumns []string          `json:"sensitive_columns"`
	Suggestions      []string          `json:"suggestions"`
	Matches          map[string]string `json:"matches,omitempty"`
}

// Detector scans column names for sensitive keywords. Extra whitelist
// entries can be added from configuration.
type Detector struct {
	extraWhitelist []string
	logger         *slog.Logger
}

// NewDetector creates a Detector with optional extra whitelist entries.
func NewDetector(extraWhitelist []string, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{extraWhitelist: extraWhitelist, logger: logger}
}

// DetectColumns scans the column names and reports sensitive ones with
// deduplicated suggestions. A panic during matching fails closed: the
// result assumes sensitive data so a detector bug can never leak a file
// past the gate.
func (d *Detector) DetectColumns(columns []string) (result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("sensitive-column detection failed, assuming sensitive",
				slog.Any("panic", r))
			result = CheckResult{
				HasSensitiveData: true,
				SensitiveColumns: []string{"detection failed, review all columns manually"},
				Suggestions:      []string{"Automatic detection failed; manually confirm the file holds no personal data"},
			}
		}
	}()

	result = CheckResult{Matches: map[string]string{}}
	seenSuggestions := map[string]bool{}

	for _, column := range columns {
		if column == "" {
			continue
		}
		normalized := normalize(column)

		if d.isWhitelisted(normalized) {
			continue
		}

		for _, p := range sensitivePatterns {
			if !matchesAny(normalized, p.keywords) {
				continue
			}
			result.SensitiveColumns = append(result.SensitiveColumns, column)
			result.Matches[column] = string(p.colType)

			if s := suggestionFor(p.colType, column); !seenSuggestions[s] {
				seenSuggestions[s] = true
				result.Suggestions = append(result.Suggestions, s)
			}
			break
		}
	}

	result.HasSensitiveData = len(result.SensitiveColumns) > 0
	if result.HasSensitiveData {
		d.logger.Warn("sensitive columns detected",
			slog.Int("count", len(result.SensitiveColumns)),
			slog.Any("columns", result.SensitiveColumns))
	}
	return result
}

func (d *Detector) isWhitelisted(normalizedColumn string) bool {
	for _, item := range medicalTestWhitelist {
		if strings.Contains(normalizedColumn, item) {
			return true
		}
	}
	for _, item := range d.extraWhitelist {
		if item != "" && strings.Contains(normalizedColumn, normalize(item)) {
			return true
		}
	}
	return false
}

func matchesAny(normalizedColumn string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(normalizedColumn, normalize(keyword)) {
			return true
		}
	}
	return false
}

// normalize lowercases and strips whitespace, underscores and hyphens so
// "Patient_Name", "patient-name" and "patient name" all compare equal.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, s)
}
