package dataprocessing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func validate(t *testing.T, raw *domain.Table) *ValidatedTable {
	t.Helper()
	v, _ := newTestValidator(t)
	validated, err := v.Validate(raw)
	require.NoError(t, err)
	return validated
}

func TestCleanerTypesColumns(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(i)
		switch i {
		case 0:
			r.OrderDate = "garbage"
		case 1:
			r.Sales = "1,250.75"
		case 2:
			r.Quantity = "many"
		case 3:
			r.Sales = "-40"
		case 4:
			r.OrderDate = "3/15/2023"
		}
		return r
	}).Build(t)

	cleaned, report := NewCleaner(nil).Clean(validate(t, raw))
	tbl := cleaned.Table()

	assert.True(t, tbl.Get(0, domain.ColOrderDate).IsMissing())
	assert.Equal(t, 1, report.InvalidDates[domain.ColOrderDate])

	sales, ok := tbl.Get(1, domain.ColSales).Float()
	require.True(t, ok)
	assert.Equal(t, 1250.75, sales)

	assert.True(t, tbl.Get(2, domain.ColQuantity).IsMissing())
	assert.Equal(t, 1, report.InvalidNumbers[domain.ColQuantity])

	neg, ok := tbl.Get(3, domain.ColSales).Float()
	require.True(t, ok, "negative sales are retained")
	assert.Equal(t, -40.0, neg)
	assert.Equal(t, 1, report.NegativeValues[domain.ColSales])

	d, ok := tbl.Get(4, domain.ColOrderDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), d)

	assert.Equal(t, domain.KindString, tbl.Get(0, domain.ColRegion).Kind(), "other columns untouched")
	assert.Equal(t, raw.Columns(), tbl.Columns())
	assert.Equal(t, 12, report.RowsBefore)
	assert.Equal(t, 12, report.RowsAfter)
}

func TestCleanerDoesNotMutateInput(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, testutil.StandardRow).Build(t)
	snapshot := raw.Clone()

	_, _ = NewCleaner(nil).Clean(validate(t, raw))

	assert.True(t, raw.Equal(snapshot))
	assert.Equal(t, domain.KindString, raw.Get(0, domain.ColSales).Kind())
}

func TestCleanerRemovesDuplicates(t *testing.T) {
	tests := []struct {
		name       string
		unique     int
		duplicates int
	}{
		{name: "no duplicates", unique: 15, duplicates: 0},
		{name: "one duplicate", unique: 15, duplicates: 1},
		{name: "several duplicates", unique: 20, duplicates: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewSalesTable().Generate(tt.unique, testutil.StandardRow)
			for k := 0; k < tt.duplicates; k++ {
				b.Add(testutil.StandardRow(k % tt.unique))
			}
			raw := b.Build(t)

			cleaned, report := NewCleaner(nil).Clean(validate(t, raw))
			assert.Equal(t, raw.Len()-tt.duplicates, cleaned.Len())
			assert.Equal(t, tt.duplicates, report.DuplicatesRemoved)
		})
	}
}

func TestCleanerDuplicatesAfterCoercion(t *testing.T) {
	// "100.50" and "100.500" coerce to the same number, so the rows become duplicates
	raw := testutil.NewSalesTable().Generate(12, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(i)
		if i == 11 {
			r = testutil.StandardRow(0)
			r.Sales = "100.500"
		}
		return r
	}).Build(t)

	cleaned, report := NewCleaner(nil).Clean(validate(t, raw))
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 11, cleaned.Len())
}

func TestCleanerKeepsTimeOfDay(t *testing.T) {
	// Same cells except the order time: none of these rows are duplicates
	b := testutil.NewSalesTable().Generate(10, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(0)
		r.OrderDate = fmt.Sprintf("2024-01-02 %02d:00:00", i)
		return r
	})
	b.Add(func() testutil.SalesRow {
		r := testutil.StandardRow(0)
		r.OrderDate = "2024-01-02 09:00:00"
		return r
	}())
	raw := b.Build(t)

	cleaned, report := NewCleaner(nil).Clean(validate(t, raw))
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 10, report.RowsAfter)
	assert.Equal(t, raw.Len()-1, cleaned.Len())

	d, ok := cleaned.Table().Get(9, domain.ColOrderDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-01-02 09:00:00", cleaned.Table().Get(9, domain.ColOrderDate).String())

	again, report := NewCleaner(nil).Clean(&ValidatedTable{table: cleaned.Table()})
	assert.Zero(t, report.DuplicatesRemoved)
	assert.True(t, again.Table().Equal(cleaned.Table()))
}

func TestCleanerNegativeZeroIsDuplicate(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(12, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(i)
		switch i {
		case 10:
			r = testutil.StandardRow(0)
			r.Discount = "0"
		case 11:
			r = testutil.StandardRow(0)
			r.Discount = "-0"
		}
		return r
	}).Build(t)

	cleaned, report := NewCleaner(nil).Clean(validate(t, raw))
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 11, cleaned.Len())
}

func TestCleanerIdempotent(t *testing.T) {
	raw := testutil.NewSalesTable().Generate(30, func(i int) testutil.SalesRow {
		r := testutil.StandardRow(i % 25)
		if i%7 == 0 {
			r.Discount = "n/a"
		}
		if i == 3 {
			r.ShipDate = "someday"
		}
		return r
	}).Build(t)

	cleaner := NewCleaner(nil)
	once, _ := cleaner.Clean(validate(t, raw))
	twice, report := cleaner.Clean(&ValidatedTable{table: once.Table()})

	assert.True(t, once.Table().Equal(twice.Table()))
	assert.Zero(t, report.DuplicatesRemoved)
	assert.Empty(t, report.InvalidDates)
	assert.Empty(t, report.InvalidNumbers)
}
