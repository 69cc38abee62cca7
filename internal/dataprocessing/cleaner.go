package dataprocessing

import (
	"log/slog"

	"salespulse/pkg/contracts/domain"
)

// CleanedTable is a validated table whose date and numeric columns are
// typed and whose exact duplicates are gone. Only Cleaner constructs it.
type CleanedTable struct {
	table *domain.Table
}

// Table returns the underlying table
func (c *CleanedTable) Table() *domain.Table { return c.table }

// Len returns the row count
func (c *CleanedTable) Len() int { return c.table.Len() }

// CleaningReport counts what cleaning changed
type CleaningReport struct {
	RowsBefore        int            `json:"rows_before"`
	RowsAfter         int            `json:"rows_after"`
	InvalidDates      map[string]int `json:"invalid_dates"`
	InvalidNumbers    map[string]int `json:"invalid_numbers"`
	NegativeValues    map[string]int `json:"negative_values"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
}

// Cleaner normalizes validated tables
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean parses date columns, coerces numeric columns and drops exact
// duplicate rows, keeping the first occurrence. Unparseable cells become
// Missing. Negative amounts are kept and only counted. The input is not
// modified.
func (c *Cleaner) Clean(v *ValidatedTable) (*CleanedTable, *CleaningReport) {
	src := v.Table()
	report := &CleaningReport{
		RowsBefore:     src.Len(),
		InvalidDates:   make(map[string]int),
		InvalidNumbers: make(map[string]int),
		NegativeValues: make(map[string]int),
	}

	fns := make(map[string]func(domain.Value) domain.Value)
	for _, col := range domain.DateColumns {
		fns[col] = func(val domain.Value) domain.Value {
			out, invalid := coerceDate(val)
			if invalid {
				report.InvalidDates[col]++
			}
			return out
		}
	}
	for _, col := range domain.NumericColumns {
		fns[col] = func(val domain.Value) domain.Value {
			out, invalid := coerceNumber(val)
			if invalid {
				report.InvalidNumbers[col]++
			}
			return out
		}
	}
	typed := src.MapColumns(fns)

	for _, col := range domain.NonNegativeColumns {
		values, ok := typed.Column(col)
		if !ok {
			continue
		}
		for _, val := range values {
			if f, ok := val.Float(); ok && f < 0 {
				report.NegativeValues[col]++
			}
		}
	}

	deduped, removed := typed.Distinct()
	report.DuplicatesRemoved = removed
	report.RowsAfter = deduped.Len()

	c.logMissing(deduped)
	c.logger.Info("table cleaned",
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("duplicates_removed", removed),
		slog.Any("invalid_dates", report.InvalidDates),
		slog.Any("invalid_numbers", report.InvalidNumbers),
		slog.Any("negative_values", report.NegativeValues))

	return &CleanedTable{table: deduped}, report
}

func (c *Cleaner) logMissing(t *domain.Table) {
	for _, col := range t.Columns() {
		values, _ := t.Column(col)
		missing := 0
		for _, val := range values {
			if val.IsMissing() {
				missing++
			}
		}
		if missing > 0 {
			c.logger.Debug("missing values after cleaning",
				slog.String("column", col),
				slog.Int("count", missing))
		}
	}
}
