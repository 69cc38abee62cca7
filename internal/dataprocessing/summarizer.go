package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"salespulse/pkg/contracts/domain"
)

// Profit margin thresholds, in percent, used by Insights
const (
	HealthyMarginPct  = 20.0
	ModerateMarginPct = 10.0
)

// Summarizer computes headline KPIs, product rankings and text insights
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Summarize totals sales and profit. Total orders counts distinct Order IDs
// and falls back to the row count when the table has no Order ID column.
func (s *Summarizer) Summarize(ctx context.Context, t *domain.Table) domain.SalesSummary {
	summary := domain.SalesSummary{
		TotalSales:  sumColumn(t, domain.ColSales),
		TotalProfit: sumColumn(t, domain.ColProfit),
		Rows:        t.Len(),
	}
	if summary.TotalSales > 0 {
		summary.ProfitMargin = summary.TotalProfit / summary.TotalSales * 100
	}

	if ids, ok := t.Column(domain.ColOrderID); ok {
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if !id.IsMissing() {
				seen[id.String()] = struct{}{}
			}
		}
		summary.TotalOrders = len(seen)
	} else {
		summary.TotalOrders = t.Len()
	}

	s.logger.InfoContext(ctx, "summary computed",
		slog.Float64("total_sales", summary.TotalSales),
		slog.Float64("total_profit", summary.TotalProfit),
		slog.Float64("profit_margin", summary.ProfitMargin),
		slog.Int("total_orders", summary.TotalOrders))
	return summary
}

// TopProducts ranks products by summed sales, highest first. Ties order by
// name. n <= 0 returns every product.
func (s *Summarizer) TopProducts(t *domain.Table, n int) []domain.ProductSales {
	totals := groupSums(t, domain.ColProductName, domain.ColSales, domain.ColProfit)

	products := make([]domain.ProductSales, 0, len(totals))
	for name, sums := range totals {
		products = append(products, domain.ProductSales{ProductName: name, Sales: sums[0], Profit: sums[1]})
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Sales != products[j].Sales {
			return products[i].Sales > products[j].Sales
		}
		return products[i].ProductName < products[j].ProductName
	})

	if n > 0 && len(products) > n {
		products = products[:n]
	}
	return products
}

// Insights renders short text findings about a summary and its table
func (s *Summarizer) Insights(summary domain.SalesSummary, t *domain.Table) []string {
	insights := []string{
		fmt.Sprintf("Total of %d orders with sales of %.2f", summary.TotalOrders, summary.TotalSales),
	}

	switch {
	case summary.ProfitMargin >= HealthyMarginPct:
		insights = append(insights, fmt.Sprintf("Profit margin of %.1f%% is healthy", summary.ProfitMargin))
	case summary.ProfitMargin >= ModerateMarginPct:
		insights = append(insights, fmt.Sprintf("Profit margin of %.1f%% is moderate", summary.ProfitMargin))
	default:
		insights = append(insights, fmt.Sprintf("Profit margin of %.1f%% is low; review pricing and discounts", summary.ProfitMargin))
	}

	if top := s.TopProducts(t, 1); len(top) == 1 {
		insights = append(insights, fmt.Sprintf("Top product by sales: %s (%.2f)", top[0].ProductName, top[0].Sales))
	}

	if t.HasColumn(domain.ColRegion) {
		regions := groupSums(t, domain.ColRegion, domain.ColSales)
		best, bestSales := "", 0.0
		for name, sums := range regions {
			if best == "" || sums[0] > bestSales || (sums[0] == bestSales && name < best) {
				best, bestSales = name, sums[0]
			}
		}
		if best != "" {
			insights = append(insights, fmt.Sprintf("Best performing region: %s (%.2f)", best, bestSales))
		}
	}
	return insights
}

// sumColumn adds the numeric cells of col; absent or missing cells count as 0
func sumColumn(t *domain.Table, col string) float64 {
	values, ok := t.Column(col)
	if !ok {
		return 0
	}
	total := 0.0
	for _, v := range values {
		if f, ok := v.Float(); ok {
			total += f
		}
	}
	return total
}

// groupSums sums each value column per distinct key. Rows with a missing
// key are skipped.
func groupSums(t *domain.Table, key string, valueCols ...string) map[string][]float64 {
	out := make(map[string][]float64)
	k, ok := t.ColumnIndex(key)
	if !ok {
		return out
	}
	idx := make([]int, len(valueCols))
	for i, c := range valueCols {
		j, ok := t.ColumnIndex(c)
		if !ok {
			j = -1
		}
		idx[i] = j
	}

	for r := 0; r < t.Len(); r++ {
		kv := t.At(r, k)
		if kv.IsMissing() {
			continue
		}
		name := kv.String()
		sums, ok := out[name]
		if !ok {
			sums = make([]float64, len(valueCols))
			out[name] = sums
		}
		for i, j := range idx {
			if j < 0 {
				continue
			}
			if f, ok := t.At(r, j).Float(); ok {
				sums[i] += f
			}
		}
	}
	return out
}
