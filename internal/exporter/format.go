package exporter

import (
	"fmt"
	"time"

	"salespulse/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatDate renders a calendar day the way every export writes dates
func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// cellValue converts a table cell to what a spreadsheet cell should hold:
// numbers stay numeric, dates become YYYY-MM-DD text (with the time when it
// is not midnight) and Missing is blank
func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNumber:
		f, _ := v.Float()
		return f
	case domain.KindMissing:
		return nil
	default:
		return v.String()
	}
}

// TimestampedName builds names like sales_data_20240131_150405.xlsx
func TimestampedName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s%s", prefix, now.Format("20060102_150405"), ext)
}
