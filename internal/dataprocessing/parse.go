package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"salespulse/pkg/contracts/domain"
)

// dateLayouts are tried in order. Slash dates are read month first, the
// convention of US-style sales exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006/1/2 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006年1月2日",
	"20060102",
}

// naTokens load as missing, the same set spreadsheet exports and pandas
// treat as not-available
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNAToken reports whether raw cell text denotes a missing value
func IsNAToken(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// ParseDate parses a date in any of the supported layouts
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if layout == "20060102" && len(s) != 8 {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a decimal, tolerating surrounding spaces and
// thousands separators
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// coerceDate converts a cell to a date. invalid is true when a present
// value could not be parsed; the result is then Missing.
func coerceDate(v domain.Value) (out domain.Value, invalid bool) {
	switch v.Kind() {
	case domain.KindDate, domain.KindMissing:
		return v, false
	case domain.KindString:
		s, _ := v.Text()
		if IsNAToken(s) {
			return domain.Missing(), false
		}
		if t, ok := ParseDate(s); ok {
			return domain.Date(t), false
		}
	}
	return domain.Missing(), true
}

// coerceNumber converts a cell to a number with the same contract as coerceDate
func coerceNumber(v domain.Value) (out domain.Value, invalid bool) {
	switch v.Kind() {
	case domain.KindNumber, domain.KindMissing:
		return v, false
	case domain.KindString:
		s, _ := v.Text()
		if IsNAToken(s) {
			return domain.Missing(), false
		}
		if f, ok := ParseNumber(s); ok {
			return domain.Number(f), false
		}
	}
	return domain.Missing(), true
}
