package forecast

import (
	"fmt"
	"sort"
	"time"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Feature names in model column order
const (
	FeatureDaysFromOrigin = "DaysFromOrigin"
	FeatureDayOfWeek      = "DayOfWeek"
	FeatureMonth          = "Month"
	FeatureQuarter        = "Quarter"
	FeatureDayOfMonth     = "DayOfMonth"
	FeatureIsWeekend      = "IsWeekend"
)

// FeatureNames is the fixed feature schema every model is fit with
var FeatureNames = []string{
	FeatureDaysFromOrigin,
	FeatureDayOfWeek,
	FeatureMonth,
	FeatureQuarter,
	FeatureDayOfMonth,
	FeatureIsWeekend,
}

const day = 24 * time.Hour

// Dataset is a gap-filled daily series with its feature matrix and target
// vector, aligned by row
type Dataset struct {
	Series []domain.DailyPoint
	X      [][]float64
	Y      []float64
	Origin time.Time
	Last   time.Time
}

// Len returns the number of days in the series
func (d *Dataset) Len() int { return len(d.Series) }

// BuildDataset sums target per calendar day, fills every day between the
// first and last date with zero and derives calendar features. The row
// minimum applies to the source table, not to the resulting days. Rows with
// a missing date are skipped; a missing target adds nothing to its day.
func BuildDataset(t *domain.Table, dateCol, targetCol string, minRows int) (*Dataset, error) {
	if minRows <= 0 {
		minRows = config.MinForecastRows
	}
	if t.Len() < minRows {
		return nil, apperrors.NewModelError(apperrors.CodeInsufficientData,
			fmt.Sprintf("insufficient data for forecasting: got %d rows, need at least %d; upload a longer history",
				t.Len(), minRows)).
			WithContext("rows", t.Len()).
			WithContext("required_rows", minRows)
	}

	dj, ok := t.ColumnIndex(dateCol)
	tj, ok2 := t.ColumnIndex(targetCol)
	if !ok || !ok2 {
		return nil, apperrors.NewValidationError(apperrors.CodeMissingColumns,
			fmt.Sprintf("forecasting needs columns %q and %q; present: %s",
				dateCol, targetCol, apperrors.JoinNames(t.Columns())))
	}

	sums := make(map[time.Time]float64)
	for i := 0; i < t.Len(); i++ {
		d, ok := t.At(i, dj).Day()
		if !ok {
			continue
		}
		v, _ := t.At(i, tj).Float()
		sums[d] += v
	}
	if len(sums) == 0 {
		return nil, apperrors.NewModelError(apperrors.CodeInsufficientData,
			fmt.Sprintf("no valid dates in column %q", dateCol))
	}

	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	origin, last := dates[0], dates[len(dates)-1]

	n := daysBetween(origin, last) + 1
	ds := &Dataset{
		Series: make([]domain.DailyPoint, n),
		X:      make([][]float64, n),
		Y:      make([]float64, n),
		Origin: origin,
		Last:   last,
	}
	for i := 0; i < n; i++ {
		d := origin.AddDate(0, 0, i)
		p := calendarPoint(d, origin)
		p.Value = sums[d]
		ds.Series[i] = p
		ds.X[i] = featureRow(p)
		ds.Y[i] = p.Value
	}
	return ds, nil
}

// calendarPoint derives the calendar attributes of d relative to origin.
// Day of week counts from Monday = 0.
func calendarPoint(d, origin time.Time) domain.DailyPoint {
	dow := (int(d.Weekday()) + 6) % 7
	month := int(d.Month())
	return domain.DailyPoint{
		Date:           d,
		DaysFromOrigin: daysBetween(origin, d),
		DayOfWeek:      dow,
		Month:          month,
		Quarter:        (month-1)/3 + 1,
		DayOfMonth:     d.Day(),
		Year:           d.Year(),
		IsWeekend:      dow >= 5,
	}
}

// featureRow lays a point out in FeatureNames order
func featureRow(p domain.DailyPoint) []float64 {
	weekend := 0.0
	if p.IsWeekend {
		weekend = 1
	}
	return []float64{
		float64(p.DaysFromOrigin),
		float64(p.DayOfWeek),
		float64(p.Month),
		float64(p.Quarter),
		float64(p.DayOfMonth),
		weekend,
	}
}

// daysBetween counts whole days from a to b; both are UTC midnights
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(day) / day)
}
