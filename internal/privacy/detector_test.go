package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectColumns(t *testing.T) {
	d := NewDetector(nil, nil)

	tests := []struct {
		name          string
		columns       []string
		wantSensitive []string
	}{
		{
			name:          "clean clinical columns",
			columns:       []string{"age", "sex", "bmi", "group"},
			wantSensitive: nil,
		},
		{
			name:          "patient name flagged",
			columns:       []string{"patient_name", "age"},
			wantSensitive: []string{"patient_name"},
		},
		{
			name:          "contact info flagged",
			columns:       []string{"phone", "home_address", "email"},
			wantSensitive: []string{"phone", "home_address", "email"},
		},
		{
			name:          "birth date flagged",
			columns:       []string{"date_of_birth", "weight"},
			wantSensitive: []string{"date_of_birth"},
		},
		{
			name:          "normalization catches separators and case",
			columns:       []string{"Patient-Name", "ID Card"},
			wantSensitive: []string{"Patient-Name", "ID Card"},
		},
		{
			name:          "whitelisted lab values pass despite keyword overlap",
			columns:       []string{"hemoglobin", "platelets", "medication"},
			wantSensitive: nil,
		},
		{
			name:          "empty input",
			columns:       nil,
			wantSensitive: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.DetectColumns(tt.columns)
			assert.Equal(t, tt.wantSensitive, result.SensitiveColumns)
			assert.Equal(t, len(tt.wantSensitive) > 0, result.HasSensitiveData)
		})
	}
}

func TestDetectColumns_SuggestionsDeduplicated(t *testing.T) {
	d := NewDetector(nil, nil)

	result := d.DetectColumns([]string{"phone", "mobile", "patient_name"})
	require.True(t, result.HasSensitiveData)

	seen := map[string]int{}
	for _, s := range result.Suggestions {
		seen[s]++
	}
	for s, n := range seen {
		assert.Equal(t, 1, n, "suggestion repeated: %s", s)
	}
}

func TestDetectColumns_MatchTypes(t *testing.T) {
	d := NewDetector(nil, nil)

	result := d.DetectColumns([]string{"patient_name", "chart_no", "email", "dob"})

	assert.Equal(t, "name", result.Matches["patient_name"])
	assert.Equal(t, "medical_id", result.Matches["chart_no"])
	assert.Equal(t, "contact", result.Matches["email"])
	assert.Equal(t, "birth", result.Matches["dob"])
}

func TestDetectColumns_ExtraWhitelist(t *testing.T) {
	base := NewDetector(nil, nil)
	require.True(t, base.DetectColumns([]string{"record_id"}).HasSensitiveData)

	extended := NewDetector([]string{"record_id"}, nil)
	assert.False(t, extended.DetectColumns([]string{"record_id"}).HasSensitiveData)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "patientname", normalize("Patient_Name"))
	assert.Equal(t, "patientname", normalize("  patient-name "))
	assert.Equal(t, "patientname", normalize("PATIENT NAME"))
}
