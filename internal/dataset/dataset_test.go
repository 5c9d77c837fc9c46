package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tableone/internal/errors"
)

func TestNormalize(t *testing.T) {
	rows := []DataRow{
		{"age": 42.0, "sex": "F"},
		{"age": 37.0, "bmi": 24.1},
	}

	columns, normalized := Normalize(rows, []string{"age", "sex"})

	assert.Equal(t, []string{"age", "sex", "bmi"}, columns)
	require.Len(t, normalized, 2)
	assert.Equal(t, "", normalized[0]["bmi"], "missing cell filled with empty string")
	assert.Equal(t, "", normalized[1]["sex"])
	assert.Equal(t, 24.1, normalized[1]["bmi"])
}

func TestNormalize_DuplicateHeaderColumns(t *testing.T) {
	columns, _ := Normalize(nil, []string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, columns)
}

func TestParseCSV(t *testing.T) {
	input := "age,sex,bmi\n42,F,24.1\n37,M,\n\n"

	ds, appErr := ParseCSV(strings.NewReader(input), "data.csv")
	require.Nil(t, appErr)

	assert.Equal(t, []string{"age", "sex", "bmi"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, 42.0, ds.Rows[0]["age"], "numeric cells coerce to float64")
	assert.Equal(t, "F", ds.Rows[0]["sex"])
	assert.Equal(t, "", ds.Rows[1]["bmi"])
}

func TestParseCSV_RaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\n3,4,5,6\n"

	ds, appErr := ParseCSV(strings.NewReader(input), "ragged.csv")
	require.Nil(t, appErr)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "", ds.Rows[0]["c"], "short row padded")
	assert.Equal(t, 5.0, ds.Rows[1]["c"], "extra cells beyond header dropped")
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, appErr := Parse(strings.NewReader("x"), "data.txt", Limits{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeFileFormatUnsupported, appErr.Code)
	assert.False(t, appErr.CanRetry)
}

func TestParse_EmptyFile(t *testing.T) {
	_, appErr := Parse(strings.NewReader("age,sex\n"), "empty.csv", Limits{})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeFileEmpty, appErr.Code)
}

func TestParse_RowLimit(t *testing.T) {
	input := "a\n1\n2\n3\n"

	_, appErr := Parse(strings.NewReader(input), "big.csv", Limits{MaxRows: 2})
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Equal(t, 3, appErr.Details["rows"])
	assert.Equal(t, 2, appErr.Details["limit"])
}

func TestCheckLimits_Columns(t *testing.T) {
	ds := &Dataset{Columns: []string{"a", "b", "c"}, Rows: []DataRow{{}}}

	appErr := ds.CheckLimits(Limits{MaxColumns: 2})
	require.NotNil(t, appErr)
	assert.Equal(t, 3, appErr.Details["columns"])

	assert.Nil(t, ds.CheckLimits(Limits{MaxColumns: 3}))
	assert.Nil(t, ds.CheckLimits(Limits{}), "zero limits disable the check")
}

func TestReadColumns_CSV(t *testing.T) {
	cols, multi, appErr := ReadColumns(strings.NewReader("name, age ,\n1,2\n"), "h.csv")
	require.Nil(t, appErr)
	assert.False(t, multi)
	assert.Equal(t, []string{"name", "age"}, cols, "headers trimmed, blanks dropped")
}

func TestClone_Isolation(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a"},
		Rows:    []DataRow{{"a": 1.0}},
	}

	clone := ds.Clone()
	clone.Rows[0]["a"] = 99.0
	clone.Columns[0] = "z"

	assert.Equal(t, 1.0, ds.Rows[0]["a"])
	assert.Equal(t, "a", ds.Columns[0])
}

func TestIsEmpty(t *testing.T) {
	var nilDS *Dataset
	assert.True(t, nilDS.IsEmpty())
	assert.True(t, (&Dataset{}).IsEmpty())
	assert.False(t, (&Dataset{Rows: []DataRow{{}}}).IsEmpty())
}
