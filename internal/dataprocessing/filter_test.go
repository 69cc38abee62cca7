package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func cleanedStandardTable(t *testing.T, n int) *domain.Table {
	t.Helper()
	raw := testutil.NewSalesTable().Generate(n, testutil.StandardRow).Build(t)
	cleaned, _ := NewCleaner(nil).Clean(validate(t, raw))
	return cleaned.Table()
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilterRegionPartition(t *testing.T) {
	tbl := cleanedStandardTable(t, 1000)
	engine := NewFilterEngine(nil)

	east := engine.Apply(tbl, FilterSpec{Regions: []string{"East"}})
	for i := 0; i < east.Table.Len(); i++ {
		require.Equal(t, "East", east.Table.Get(i, domain.ColRegion).String())
	}

	rest := engine.Apply(tbl, FilterSpec{Regions: []string{"West", "Central", "South"}})
	assert.Equal(t, 1000, east.After+rest.After)
	assert.Equal(t, 1000, east.Before)
	assert.Equal(t, 250, east.After)
}

func TestFilterApply(t *testing.T) {
	tbl := cleanedStandardTable(t, 40)

	tests := []struct {
		name  string
		spec  FilterSpec
		want  int
		check func(t *testing.T, out *domain.Table)
	}{
		{
			name: "empty spec keeps everything",
			spec: FilterSpec{},
			want: 40,
		},
		{
			name: "empty lists are no-ops",
			spec: FilterSpec{Regions: []string{}, Segments: nil, DateRange: &DateRange{}},
			want: 40,
		},
		{
			name: "inclusive date range",
			spec: FilterSpec{DateRange: &DateRange{Start: day(2023, 1, 5), End: day(2023, 1, 14)}},
			want: 10,
			check: func(t *testing.T, out *domain.Table) {
				first, _ := out.Get(0, domain.ColOrderDate).Time()
				last, _ := out.Get(out.Len()-1, domain.ColOrderDate).Time()
				assert.Equal(t, *day(2023, 1, 5), first)
				assert.Equal(t, *day(2023, 1, 14), last)
			},
		},
		{
			name: "open-ended start",
			spec: FilterSpec{DateRange: &DateRange{Start: day(2023, 2, 1)}},
			want: 9,
		},
		{
			name: "open-ended end",
			spec: FilterSpec{DateRange: &DateRange{End: day(2023, 1, 1)}},
			want: 1,
		},
		{
			name: "list is OR",
			spec: FilterSpec{Regions: []string{"East", "West"}},
			want: 20,
		},
		{
			name: "dimensions are AND",
			spec: FilterSpec{Regions: []string{"East"}, Segments: []string{"Consumer"}},
			want: 4,
			check: func(t *testing.T, out *domain.Table) {
				for i := 0; i < out.Len(); i++ {
					assert.Equal(t, "East", out.Get(i, domain.ColRegion).String())
					assert.Equal(t, "Consumer", out.Get(i, domain.ColSegment).String())
				}
			},
		},
		{
			name: "category and sub-category",
			spec: FilterSpec{Categories: []string{"Technology"}, SubCategories: []string{"Sub 1"}},
			want: 7,
		},
		{
			name: "unknown value matches nothing",
			spec: FilterSpec{Regions: []string{"Atlantis"}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewFilterEngine(nil).Apply(tbl, tt.spec)
			assert.Equal(t, 40, res.Before)
			assert.Equal(t, tt.want, res.After)
			assert.Equal(t, tt.want, res.Table.Len())
			if tt.check != nil {
				tt.check(t, res.Table)
			}
		})
	}
	assert.Equal(t, 40, tbl.Len(), "input must be untouched")
}

func TestFilterMissingDatesExcludedByDateBound(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(i)
		if i == 2 {
			r.OrderDate = "unknown"
		}
		return r
	}).Build(t)
	cleaned, _ := NewCleaner(nil).Clean(validate(t, raw))

	res := NewFilterEngine(nil).Apply(cleaned.Table(), FilterSpec{
		DateRange: &DateRange{Start: day(2000, 1, 1)},
	})
	assert.Equal(t, 11, res.After)

	res = NewFilterEngine(nil).Apply(cleaned.Table(), FilterSpec{Regions: []string{"Central"}})
	assert.Equal(t, 3, res.After, "missing dates only matter when a date bound is set")
}

func TestFilterAbsentColumnIsNoOp(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, testutil.StandardRow).Without(domain.ColSegment).Build(t)
	cleaned, _ := NewCleaner(nil).Clean(validate(t, raw))

	res := NewFilterEngine(nil).Apply(cleaned.Table(), FilterSpec{Segments: []string{"Corporate"}})
	assert.Equal(t, 12, res.After)
}

func TestFilterRawDateText(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, testutil.StandardRow).Build(t)

	res := NewFilterEngine(nil).Apply(raw, FilterSpec{
		DateRange: &DateRange{Start: day(2023, 1, 3), End: day(2023, 1, 4)},
	})
	assert.Equal(t, 2, res.After)
}

func TestFilterDateRangeIncludesWholeEndDay(t *testing.T) {
	evening := time.Date(2023, 1, 14, 21, 30, 0, 0, time.UTC)
	tbl, err := domain.NewTable([]string{domain.ColOrderDate}, [][]domain.Value{
		{domain.Date(time.Date(2023, 1, 4, 23, 0, 0, 0, time.UTC))},
		{domain.Date(time.Date(2023, 1, 5, 8, 0, 0, 0, time.UTC))},
		{domain.Date(evening)},
		{domain.Date(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
	})
	require.NoError(t, err)

	res := NewFilterEngine(nil).Apply(tbl, FilterSpec{DateRange: &DateRange{Start: day(2023, 1, 5), End: day(2023, 1, 14)}})
	require.Equal(t, 2, res.After)
	last, _ := res.Table.Get(1, domain.ColOrderDate).Time()
	assert.Equal(t, evening, last)
}
