package dataprocessing

import (
	"log/slog"
	"time"

	"salespulse/pkg/contracts/domain"
)

// DateRange bounds Order Date, both ends inclusive. A nil end is open.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// FilterSpec selects rows. Criteria combine with AND; values within a list
// combine with OR. Nil or empty criteria impose no constraint.
type FilterSpec struct {
	DateRange     *DateRange `json:"date_range,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	SubCategories []string   `json:"sub_categories,omitempty"`
	Regions       []string   `json:"regions,omitempty"`
	Segments      []string   `json:"segments,omitempty"`
}

// IsEmpty reports whether the spec constrains nothing
func (s FilterSpec) IsEmpty() bool {
	return !s.hasDateBound() && len(s.Categories) == 0 && len(s.SubCategories) == 0 &&
		len(s.Regions) == 0 && len(s.Segments) == 0
}

func (s FilterSpec) hasDateBound() bool {
	return s.DateRange != nil && (s.DateRange.Start != nil || s.DateRange.End != nil)
}

// FilterResult is a filtered table with its before and after counts
type FilterResult struct {
	Table  *domain.Table
	Before int
	After  int
}

// FilterEngine applies filter specs
type FilterEngine struct {
	logger *slog.Logger
}

// NewFilterEngine creates a filter engine
func NewFilterEngine(logger *slog.Logger) *FilterEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterEngine{logger: logger.With(slog.String("component", "filter"))}
}

type rowPredicate func(row int) bool

// Apply returns the rows of t matching spec. A criterion naming a column
// the table lacks is skipped. With a date bound set, rows with a missing
// Order Date are excluded.
func (f *FilterEngine) Apply(t *domain.Table, spec FilterSpec) FilterResult {
	var preds []rowPredicate

	if spec.hasDateBound() {
		if p, ok := f.dateRangePredicate(t, *spec.DateRange); ok {
			preds = append(preds, p)
		}
	}
	for col, allowed := range map[string][]string{
		domain.ColCategory:    spec.Categories,
		domain.ColSubCategory: spec.SubCategories,
		domain.ColRegion:      spec.Regions,
		domain.ColSegment:     spec.Segments,
	} {
		if p, ok := f.membershipPredicate(t, col, allowed); ok {
			preds = append(preds, p)
		}
	}

	if len(preds) == 0 {
		return FilterResult{Table: t, Before: t.Len(), After: t.Len()}
	}

	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		matched := true
		for _, p := range preds {
			if !p(i) {
				matched = false
				break
			}
		}
		if matched {
			keep = append(keep, i)
		}
	}

	out := t.Select(keep)
	f.logger.Info("filters applied",
		slog.Int("rows_before", t.Len()),
		slog.Int("rows_after", out.Len()))
	return FilterResult{Table: out, Before: t.Len(), After: out.Len()}
}

func (f *FilterEngine) dateRangePredicate(t *domain.Table, r DateRange) (rowPredicate, bool) {
	j, ok := t.ColumnIndex(domain.ColOrderDate)
	if !ok {
		f.logger.Warn("date filter skipped, column not present", slog.String("column", domain.ColOrderDate))
		return nil, false
	}
	var start, end time.Time
	if r.Start != nil {
		start = domain.TruncateDay(*r.Start)
	}
	if r.End != nil {
		end = domain.TruncateDay(*r.End)
	}

	return func(i int) bool {
		d, ok := cellDate(t.At(i, j))
		if !ok {
			return false
		}
		if r.Start != nil && d.Before(start) {
			return false
		}
		if r.End != nil && d.After(end) {
			return false
		}
		return true
	}, true
}

func (f *FilterEngine) membershipPredicate(t *domain.Table, col string, allowed []string) (rowPredicate, bool) {
	if len(allowed) == 0 {
		return nil, false
	}
	j, ok := t.ColumnIndex(col)
	if !ok {
		f.logger.Warn("filter skipped, column not present", slog.String("column", col))
		return nil, false
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(i int) bool {
		v := t.At(i, j)
		if v.IsMissing() {
			return false
		}
		_, ok := set[v.String()]
		return ok
	}, true
}

// cellDate reads a date cell, parsing text for tables that were not cleaned
func cellDate(v domain.Value) (time.Time, bool) {
	if d, ok := v.Day(); ok {
		return d, true
	}
	if s, ok := v.Text(); ok {
		if d, ok := ParseDate(s); ok {
			return domain.TruncateDay(d), true
		}
	}
	return time.Time{}, false
}
