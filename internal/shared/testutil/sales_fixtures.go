package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

// SalesColumns is the full column set produced by SalesTableBuilder
var SalesColumns = []string{
	domain.ColOrderID, domain.ColOrderDate, domain.ColShipDate, domain.ColCustomerName,
	domain.ColSegment, domain.ColRegion, domain.ColCategory, domain.ColSubCategory,
	domain.ColProductName, domain.ColSales, domain.ColQuantity, domain.ColDiscount,
	domain.ColProfit,
}

// SalesRow is one raw export line. Empty fields load as Missing.
type SalesRow struct {
	OrderID     string
	OrderDate   string
	ShipDate    string
	Customer    string
	Segment     string
	Region      string
	Category    string
	SubCategory string
	Product     string
	Sales       string
	Quantity    string
	Discount    string
	Profit      string
}

func (r SalesRow) cells() []string {
	return []string{
		r.OrderID, r.OrderDate, r.ShipDate, r.Customer, r.Segment, r.Region,
		r.Category, r.SubCategory, r.Product, r.Sales, r.Quantity, r.Discount, r.Profit,
	}
}

// SalesTableBuilder assembles raw sales tables for tests
type SalesTableBuilder struct {
	rows []SalesRow
	drop map[string]bool
}

// NewSalesTable starts an empty builder
func NewSalesTable() *SalesTableBuilder {
	return &SalesTableBuilder{drop: make(map[string]bool)}
}

// Add appends a row
func (b *SalesTableBuilder) Add(r SalesRow) *SalesTableBuilder {
	b.rows = append(b.rows, r)
	return b
}

// Generate appends n rows produced by fn
func (b *SalesTableBuilder) Generate(n int, fn func(i int) SalesRow) *SalesTableBuilder {
	for i := 0; i < n; i++ {
		b.rows = append(b.rows, fn(i))
	}
	return b
}

// Without removes columns from the built table
func (b *SalesTableBuilder) Without(columns ...string) *SalesTableBuilder {
	for _, c := range columns {
		b.drop[c] = true
	}
	return b
}

// Build returns the raw table; cells hold text as a loader would produce
func (b *SalesTableBuilder) Build(t testing.TB) *domain.Table {
	t.Helper()

	var keep []int
	var columns []string
	for j, c := range SalesColumns {
		if !b.drop[c] {
			keep = append(keep, j)
			columns = append(columns, c)
		}
	}

	rows := make([][]domain.Value, len(b.rows))
	for i, r := range b.rows {
		cells := r.cells()
		row := make([]domain.Value, len(keep))
		for k, j := range keep {
			if cells[j] != "" {
				row[k] = domain.String(cells[j])
			}
		}
		rows[i] = row
	}

	tbl, err := domain.NewTable(columns, rows)
	require.NoError(t, err)
	return tbl
}

// StandardRow returns a complete, valid row for index i. Dates advance one
// day per row from 2023-01-01.
func StandardRow(i int) SalesRow {
	regions := []string{"East", "West", "Central", "South"}
	categories := []string{"Furniture", "Technology", "Office Supplies"}
	segments := []string{"Consumer", "Corporate", "Home Office"}
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)

	return SalesRow{
		OrderID:     fmt.Sprintf("ORD-%05d", i),
		OrderDate:   day.Format("2006-01-02"),
		ShipDate:    day.AddDate(0, 0, 3).Format("2006-01-02"),
		Customer:    fmt.Sprintf("Customer %d", i%25),
		Segment:     segments[i%len(segments)],
		Region:      regions[i%len(regions)],
		Category:    categories[i%len(categories)],
		SubCategory: fmt.Sprintf("Sub %d", i%6),
		Product:     fmt.Sprintf("Product %d", i%10),
		Sales:       fmt.Sprintf("%d.50", 100+i),
		Quantity:    fmt.Sprintf("%d", 1+i%5),
		Discount:    "0.1",
		Profit:      fmt.Sprintf("%d.25", 10+i%7),
	}
}

// DailySalesTable returns a typed two-column table (Order Date, Sales) with
// one row per day from start
func DailySalesTable(t testing.TB, start time.Time, days int, sales func(i int) float64) *domain.Table {
	t.Helper()

	rows := make([][]domain.Value, days)
	for i := 0; i < days; i++ {
		rows[i] = []domain.Value{
			domain.Date(start.AddDate(0, 0, i)),
			domain.Number(sales(i)),
		}
	}
	tbl, err := domain.NewTable([]string{domain.ColOrderDate, domain.ColSales}, rows)
	require.NoError(t, err)
	return tbl
}
