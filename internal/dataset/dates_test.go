package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSerialToDate(t *testing.T) {
	tests := []struct {
		serial float64
		want   string
	}{
		{1, "1899-12-31"},
		{25569, "1970-01-01"},
		{44927, "2023-01-01"},
	}

	for _, tt := range tests {
		got := SerialToDate(tt.serial)
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "serial %v", tt.serial)
	}
}

func TestSerialToDate_TimeFraction(t *testing.T) {
	got := SerialToDate(25569.5)
	want := time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v", got)
}

func TestFormatDisplayValue(t *testing.T) {
	assert.Equal(t, "2023-01-01", FormatDisplayValue(44927.0), "serial range renders as date")
	assert.Equal(t, 42.0, FormatDisplayValue(42.0), "small numbers untouched")
	assert.Equal(t, 70000.0, FormatDisplayValue(70000.0), "out-of-range untouched")
	assert.Equal(t, "hello", FormatDisplayValue("hello"))
	assert.Equal(t, "", FormatDisplayValue(nil))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "abc", CellString("abc"))
	assert.Equal(t, "42", CellString(42.0))
	assert.Equal(t, "4.2", CellString(4.2))
	assert.Equal(t, "true", CellString(true))
}
