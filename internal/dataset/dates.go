package dataset

import (
	"fmt"
	"time"
)

// excelEpoch is December 30, 1899: serial 1 is January 1, 1900 and the
// offset absorbs the historical leap-year bug in the 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SerialToDate converts an Excel serial day number to a calendar date.
func SerialToDate(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	return excelEpoch.AddDate(0, 0, days).
		Add(time.Duration(frac * 24 * float64(time.Hour)))
}

// FormatDisplayValue renders a cell for display. Numbers in the plausible
// Excel serial-date range (years 1954..2064) render as dates; everything
// else passes through unchanged.
func FormatDisplayValue(v Value) Value {
	switch val := v.(type) {
	case float64:
		if val > 20000 && val < 60000 && val == float64(int(val)) {
			return SerialToDate(val).Format("2006-01-02")
		}
		return val
	case time.Time:
		return val.Format("2006-01-02")
	case nil:
		return ""
	default:
		return val
	}
}

// CellString renders any cell value as a string for text surfaces.
func CellString(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
