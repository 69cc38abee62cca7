package dataprocessing

import (
	"fmt"
	"log/slog"
	"time"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// ValidatedTable is a raw table that passed the structural checks. Only
// Validator constructs it, so holding one proves the required columns exist.
type ValidatedTable struct {
	table *domain.Table
}

// Table returns the underlying table
func (v *ValidatedTable) Table() *domain.Table { return v.table }

// Len returns the row count
func (v *ValidatedTable) Len() int { return v.table.Len() }

// Validator runs the fatal schema checks and the advisory quality checks
type Validator struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewValidator creates a validator with the given thresholds
func NewValidator(cfg config.PipelineConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "validator")),
		now:    time.Now,
	}
}

// Validate checks, in order, that the table is non-empty, has enough rows
// and carries every required column. It stops at the first failure.
func (v *Validator) Validate(raw *domain.Table) (*ValidatedTable, error) {
	if raw == nil || raw.IsEmpty() {
		return nil, apperrors.NewValidationError(apperrors.CodeEmptyData,
			"data is empty: the file contains no rows")
	}

	if raw.Len() < v.cfg.MinRows {
		return nil, apperrors.NewValidationError(apperrors.CodeInsufficientRows,
			fmt.Sprintf("insufficient rows: got %d, need at least %d", raw.Len(), v.cfg.MinRows)).
			WithContext("rows", raw.Len()).
			WithContext("required_rows", v.cfg.MinRows)
	}

	var missing []string
	for _, c := range domain.RequiredColumns {
		if !raw.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(apperrors.CodeMissingColumns,
			fmt.Sprintf("missing required columns: %s; required: %s; present: %s",
				apperrors.JoinNames(missing),
				apperrors.JoinNames(domain.RequiredColumns),
				apperrors.JoinNames(raw.Columns()))).
			WithContext("missing", missing).
			WithContext("present", raw.Columns())
	}

	v.logger.Info("table validated",
		slog.Int("rows", raw.Len()),
		slog.Int("columns", raw.Width()))
	return &ValidatedTable{table: raw}, nil
}
