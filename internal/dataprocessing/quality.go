package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Warning codes for advisory data quality findings
const (
	WarnInvalidDates    = "INVALID_DATES"
	WarnFutureDates     = "FUTURE_DATES"
	WarnNonNumeric      = "NON_NUMERIC"
	WarnNegativeValues  = "NEGATIVE_VALUES"
	WarnOutliers        = "OUTLIERS"
	WarnMissingCritical = "MISSING_CRITICAL"
	WarnMissingRequired = "MISSING_REQUIRED"
	WarnMissingHigh     = "MISSING_HIGH"
)

// Warning is a non-fatal data quality finding
type Warning struct {
	Code    string `json:"code"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Messages flattens warnings to their text
func Messages(warnings []Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Message
	}
	return out
}

// Codes returns each warning's code, in order
func Codes(warnings []Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Code
	}
	return out
}

// CheckQuality runs the advisory checks on a validated table. Findings never
// fail the pipeline; an empty slice means nothing was flagged.
func (v *Validator) CheckQuality(t *ValidatedTable) []Warning {
	table := t.Table()
	var warnings []Warning

	warnings = append(warnings, v.checkDates(table)...)
	warnings = append(warnings, v.checkNumbers(table)...)
	warnings = append(warnings, v.checkMissing(table)...)

	for _, w := range warnings {
		v.logger.Warn("data quality warning",
			slog.String("code", w.Code),
			slog.String("column", w.Column),
			slog.Int("count", w.Count))
	}
	return warnings
}

func (v *Validator) checkDates(table *domain.Table) []Warning {
	var warnings []Warning
	today := v.now().UTC().Truncate(24 * time.Hour)

	for _, col := range domain.DateColumns {
		values, ok := table.Column(col)
		if !ok {
			continue
		}
		invalid, future := 0, 0
		for _, raw := range values {
			parsed, bad := coerceDate(raw)
			if bad {
				invalid++
				continue
			}
			if d, ok := parsed.Day(); ok && col == domain.ColOrderDate && d.After(today) {
				future++
			}
		}
		if invalid > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnInvalidDates,
				Column:  col,
				Count:   invalid,
				Message: fmt.Sprintf("%d invalid dates in '%s'", invalid, col),
			})
		}
		if future > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnFutureDates,
				Column:  col,
				Count:   future,
				Message: fmt.Sprintf("%d future dates in '%s'", future, col),
			})
		}
	}
	return warnings
}

func (v *Validator) checkNumbers(table *domain.Table) []Warning {
	var warnings []Warning

	for _, col := range domain.NumericColumns {
		values, ok := table.Column(col)
		if !ok {
			continue
		}
		invalid, negative := 0, 0
		parsed := make([]float64, 0, len(values))
		for _, raw := range values {
			n, bad := coerceNumber(raw)
			if bad {
				invalid++
				continue
			}
			f, ok := n.Float()
			if !ok {
				continue
			}
			if f < 0 {
				negative++
			}
			parsed = append(parsed, f)
		}

		if invalid > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnNonNumeric,
				Column:  col,
				Count:   invalid,
				Message: fmt.Sprintf("%d non-numeric values in '%s'", invalid, col),
			})
		}
		if negative > 0 && isNonNegative(col) {
			warnings = append(warnings, Warning{
				Code:    WarnNegativeValues,
				Column:  col,
				Count:   negative,
				Message: fmt.Sprintf("%d negative values in '%s'", negative, col),
			})
		}
		if n := v.countOutliers(parsed); n > 0 {
			warnings = append(warnings, Warning{
				Code:    WarnOutliers,
				Column:  col,
				Count:   n,
				Message: fmt.Sprintf("%d potential outliers in '%s'", n, col),
			})
		}
	}
	return warnings
}

// countOutliers counts values above multiplier times the configured
// quantile. A non-positive quantile disables the check.
func (v *Validator) countOutliers(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q := quantile(sorted, v.cfg.OutlierQuantile)
	if q <= 0 {
		return 0
	}
	limit := q * v.cfg.OutlierMultiplier

	count := 0
	for _, f := range sorted {
		if f > limit {
			count++
		}
	}
	return count
}

// quantile interpolates linearly between the two order statistics
// around (n-1)*p of an ascending slice
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// checkMissing reports at most one warning per column, at its most
// severe tier
func (v *Validator) checkMissing(table *domain.Table) []Warning {
	var warnings []Warning
	rows := table.Len()
	if rows == 0 {
		return nil
	}

	for _, col := range table.Columns() {
		values, _ := table.Column(col)
		missing := 0
		for _, val := range values {
			if val.IsMissing() {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		ratio := float64(missing) / float64(rows)
		pct := ratio * 100

		switch {
		case ratio > v.cfg.MissingCriticalRatio:
			warnings = append(warnings, Warning{
				Code:    WarnMissingCritical,
				Column:  col,
				Count:   missing,
				Message: fmt.Sprintf("critical: '%s' is %.1f%% missing", col, pct),
			})
		case domain.IsRequired(col):
			warnings = append(warnings, Warning{
				Code:    WarnMissingRequired,
				Column:  col,
				Count:   missing,
				Message: fmt.Sprintf("required column '%s' has %d missing values (%.1f%%)", col, missing, pct),
			})
		case ratio > v.cfg.MissingWarnRatio:
			warnings = append(warnings, Warning{
				Code:    WarnMissingHigh,
				Column:  col,
				Count:   missing,
				Message: fmt.Sprintf("'%s' is %.1f%% missing", col, pct),
			})
		}
	}
	return warnings
}

func isNonNegative(col string) bool {
	for _, c := range domain.NonNegativeColumns {
		if c == col {
			return true
		}
	}
	return false
}
