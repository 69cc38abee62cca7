package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func summaryTable(t *testing.T, rows []testutil.SalesRow, without ...string) *domain.Table {
	t.Helper()
	b := testutil.NewSalesTable()
	for _, r := range rows {
		b.Add(r)
	}
	raw := b.Without(without...).Build(t)
	cleaned, _ := NewCleaner(nil).Clean(&ValidatedTable{table: raw})
	return cleaned.Table()
}

func TestSummarize(t *testing.T) {
	rows := []testutil.SalesRow{
		{OrderID: "A", OrderDate: "2024-01-01", Product: "Pen", Region: "East", Sales: "100", Profit: "30"},
		{OrderID: "A", OrderDate: "2024-01-01", Product: "Ink", Region: "East", Sales: "50", Profit: "5"},
		{OrderID: "B", OrderDate: "2024-01-02", Product: "Pen", Region: "West", Sales: "250", Profit: "25"},
		{OrderID: "", OrderDate: "2024-01-03", Product: "Pad", Region: "West", Sales: "", Profit: "-10"},
	}

	tests := []struct {
		name       string
		without    []string
		wantOrders int
	}{
		{name: "distinct order ids", wantOrders: 2},
		{name: "row count without order id column", without: []string{domain.ColOrderID}, wantOrders: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := summaryTable(t, rows, tt.without...)
			s := NewSummarizer(nil).Summarize(context.Background(), tbl)

			assert.Equal(t, 400.0, s.TotalSales)
			assert.Equal(t, 50.0, s.TotalProfit)
			assert.InDelta(t, 12.5, s.ProfitMargin, 1e-9)
			assert.Equal(t, tt.wantOrders, s.TotalOrders)
			assert.Equal(t, 4, s.Rows)
		})
	}
}

func TestSummarizeZeroSales(t *testing.T) {
	tbl := summaryTable(t, []testutil.SalesRow{
		{OrderID: "A", Product: "Pen", Sales: "0", Profit: "5"},
	})
	s := NewSummarizer(nil).Summarize(context.Background(), tbl)
	assert.Zero(t, s.ProfitMargin)
}

func TestSummarizeNegativeSalesHasNoMargin(t *testing.T) {
	tbl := summaryTable(t, []testutil.SalesRow{
		{OrderID: "A", Product: "Pen", Sales: "40", Profit: "5"},
		{OrderID: "B", Product: "Pen", Sales: "-100", Profit: "-20"},
	})
	s := NewSummarizer(nil).Summarize(context.Background(), tbl)
	assert.Equal(t, -60.0, s.TotalSales)
	assert.Equal(t, -15.0, s.TotalProfit)
	assert.Zero(t, s.ProfitMargin)
}

func TestTopProducts(t *testing.T) {
	tbl := summaryTable(t, []testutil.SalesRow{
		{OrderID: "1", Product: "Pen", Sales: "10", Profit: "1"},
		{OrderID: "2", Product: "Ink", Sales: "30", Profit: "3"},
		{OrderID: "3", Product: "Pen", Sales: "25", Profit: "2"},
		{OrderID: "4", Product: "Pad", Sales: "30", Profit: "4"},
		{OrderID: "5", Product: "", Sales: "99", Profit: "9"},
	})
	s := NewSummarizer(nil)

	top := s.TopProducts(tbl, 2)
	require.Len(t, top, 2)
	assert.Equal(t, domain.ProductSales{ProductName: "Pen", Sales: 35, Profit: 3}, top[0])
	assert.Equal(t, "Ink", top[1].ProductName, "ties break by name")

	assert.Len(t, s.TopProducts(tbl, 0), 3)
}

func TestInsights(t *testing.T) {
	tests := []struct {
		name   string
		margin string
		region string
		want   string
	}{
		{name: "healthy", margin: "25", region: "East", want: "is healthy"},
		{name: "moderate", margin: "15", region: "East", want: "is moderate"},
		{name: "low", margin: "5", region: "East", want: "is low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := summaryTable(t, []testutil.SalesRow{
				{OrderID: "1", Product: "Pen", Region: tt.region, Sales: "100", Profit: tt.margin},
			})
			s := NewSummarizer(nil)
			insights := s.Insights(s.Summarize(context.Background(), tbl), tbl)

			require.Len(t, insights, 4)
			assert.Contains(t, insights[0], "Total of 1 orders")
			assert.Contains(t, insights[1], tt.want)
			assert.Contains(t, insights[2], "Top product by sales: Pen")
			assert.Contains(t, insights[3], "Best performing region: East")
		})
	}

	t.Run("no region column", func(t *testing.T) {
		tbl := summaryTable(t, []testutil.SalesRow{
			{OrderID: "1", Product: "Pen", Sales: "100", Profit: "10"},
		}, domain.ColRegion)
		s := NewSummarizer(nil)
		insights := s.Insights(s.Summarize(context.Background(), tbl), tbl)
		assert.Len(t, insights, 3)
	})
}
