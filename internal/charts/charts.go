package charts

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Kind names a chart
type Kind string

const (
	KindTrend      Kind = "trend"
	KindProducts   Kind = "products"
	KindCustomers  Kind = "customers"
	KindYoY        Kind = "yoy"
	KindRegions    Kind = "regions"
	KindCategories Kind = "categories"
	KindMargin     Kind = "margin"
	KindForecast   Kind = "forecast"
)

// Kinds lists every chart a table can produce
var Kinds = []Kind{KindTrend, KindProducts, KindCustomers, KindYoY, KindRegions, KindCategories, KindMargin}

// Period buckets the sales trend
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Point is one mark. Categorical charts use Label and Y; scatter charts
// also set X and Size.
type Point struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size,omitempty"`
	Share float64 `json:"share,omitempty"`
}

// Series is a named group of points
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart is renderer-neutral chart data
type Chart struct {
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XTitle string   `json:"x_title"`
	YTitle string   `json:"y_title"`
	Series []Series `json:"series"`
}

// Options tune Build
type Options struct {
	Period Period
	TopN   int
}

// Builder turns tables into chart data. Every method checks its inputs and
// fails with a GRAPH error instead of producing an empty or broken chart.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a chart builder
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "charts"))}
}

// Build dispatches on kind. The forecast overlay has no table form; use
// ForecastOverlay.
func (b *Builder) Build(kind Kind, t *domain.Table, opts Options) (*Chart, error) {
	switch kind {
	case KindTrend:
		if opts.Period == "" {
			opts.Period = PeriodDaily
		}
		return b.SalesTrend(t, opts.Period)
	case KindProducts:
		if opts.TopN <= 0 {
			opts.TopN = 10
		}
		return b.ProductRanking(t, opts.TopN)
	case KindCustomers:
		return b.CustomerAnalysis(t)
	case KindYoY:
		return b.YearOverYear(t)
	case KindRegions:
		return b.RegionalSales(t)
	case KindCategories:
		return b.CategoryBreakdown(t)
	case KindMargin:
		return b.ProfitMargin(t)
	default:
		return nil, apperrors.NewGraphError(fmt.Sprintf("unknown chart kind %q", kind))
	}
}

// validateTable fails when t is empty, has fewer than minRows rows, lacks a
// required column or has a required column with no values at all
func (b *Builder) validateTable(t *domain.Table, required []string, minRows int) error {
	if t == nil || t.IsEmpty() {
		return apperrors.NewGraphError("data is empty; cannot build chart")
	}
	if t.Len() < minRows {
		return apperrors.NewGraphError(fmt.Sprintf("not enough rows for chart: got %d, need at least %d", t.Len(), minRows))
	}

	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewGraphError(fmt.Sprintf("missing columns for chart: %s", apperrors.JoinNames(missing))).
			WithContext("missing", missing)
	}

	for _, c := range required {
		values, _ := t.Column(c)
		allMissing := true
		for _, v := range values {
			if !v.IsMissing() {
				allMissing = false
				break
			}
		}
		if allMissing {
			return apperrors.NewGraphError(fmt.Sprintf("column '%s' has no values", c))
		}
	}

	b.logger.Debug("chart input validated", slog.Int("rows", t.Len()), slog.Any("columns", required))
	return nil
}

// SalesTrend sums sales per day, month or year
func (b *Builder) SalesTrend(t *domain.Table, period Period) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColOrderDate, domain.ColSales}, 2); err != nil {
		return nil, err
	}

	var layout string
	switch period {
	case PeriodDaily:
		layout = "2006-01-02"
	case PeriodMonthly:
		layout = "2006-01"
	case PeriodYearly:
		layout = "2006"
	default:
		return nil, apperrors.NewGraphError(fmt.Sprintf("invalid period %q; expected daily, monthly or yearly", period))
	}

	sums := make(map[string]float64)
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Get(i, domain.ColOrderDate).Time()
		if !ok {
			continue
		}
		sums[d.Format(layout)] += number(t.Get(i, domain.ColSales))
	}

	return &Chart{
		Kind:   KindTrend,
		Title:  fmt.Sprintf("Sales Trend (%s)", period),
		XTitle: "Period",
		YTitle: "Sales",
		Series: []Series{{Name: "Sales", Points: sortedPoints(sums)}},
	}, nil
}

// ProductRanking lists the top n products by sales in ascending order, the
// order a horizontal bar chart draws bottom to top
func (b *Builder) ProductRanking(t *domain.Table, n int) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColProductName, domain.ColSales}, 1); err != nil {
		return nil, err
	}

	sums := sumBy(t, domain.ColProductName, domain.ColSales)
	points := make([]Point, 0, len(sums))
	for name, v := range sums {
		points = append(points, Point{Label: name, Y: v})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y > points[j].Y
		}
		return points[i].Label < points[j].Label
	})
	if n > 0 && len(points) > n {
		points = points[:n]
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return &Chart{
		Kind:   KindProducts,
		Title:  fmt.Sprintf("Top %d Products by Sales", n),
		XTitle: "Sales",
		YTitle: "Product",
		Series: []Series{{Name: "Sales", Points: points}},
	}, nil
}

// CustomerAnalysis groups by customer and segment: x is sales, y profit and
// size the order count. One series per segment.
func (b *Builder) CustomerAnalysis(t *domain.Table) (*Chart, error) {
	required := []string{domain.ColCustomerName, domain.ColSales, domain.ColProfit, domain.ColSegment, domain.ColOrderID}
	if err := b.validateTable(t, required, 1); err != nil {
		return nil, err
	}

	type key struct{ customer, segment string }
	type agg struct{ sales, profit, orders float64 }
	groups := make(map[key]*agg)
	for i := 0; i < t.Len(); i++ {
		c, s := t.Get(i, domain.ColCustomerName), t.Get(i, domain.ColSegment)
		if c.IsMissing() || s.IsMissing() {
			continue
		}
		k := key{c.String(), s.String()}
		g, ok := groups[k]
		if !ok {
			g = &agg{}
			groups[k] = g
		}
		g.sales += number(t.Get(i, domain.ColSales))
		g.profit += number(t.Get(i, domain.ColProfit))
		if !t.Get(i, domain.ColOrderID).IsMissing() {
			g.orders++
		}
	}

	bySegment := make(map[string][]Point)
	for k, g := range groups {
		bySegment[k.segment] = append(bySegment[k.segment], Point{Label: k.customer, X: g.sales, Y: g.profit, Size: g.orders})
	}

	chart := &Chart{Kind: KindCustomers, Title: "Sales and Profit by Customer", XTitle: "Sales", YTitle: "Profit"}
	for _, seg := range sortedKeys(bySegment) {
		points := bySegment[seg]
		sort.Slice(points, func(i, j int) bool { return points[i].Label < points[j].Label })
		chart.Series = append(chart.Series, Series{Name: seg, Points: points})
	}
	return chart, nil
}

// YearOverYear sums sales per month with one series per year
func (b *Builder) YearOverYear(t *domain.Table) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColOrderDate, domain.ColSales}, 2); err != nil {
		return nil, err
	}

	years := make(map[string]map[int]float64)
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Get(i, domain.ColOrderDate).Time()
		if !ok {
			continue
		}
		y := strconv.Itoa(d.Year())
		if years[y] == nil {
			years[y] = make(map[int]float64)
		}
		years[y][int(d.Month())] += number(t.Get(i, domain.ColSales))
	}

	chart := &Chart{Kind: KindYoY, Title: "Year-over-Year Sales", XTitle: "Month", YTitle: "Sales"}
	for _, y := range sortedKeys(years) {
		months := make([]int, 0, len(years[y]))
		for m := range years[y] {
			months = append(months, m)
		}
		sort.Ints(months)
		points := make([]Point, len(months))
		for i, m := range months {
			points[i] = Point{Label: strconv.Itoa(m), Y: years[y][m]}
		}
		chart.Series = append(chart.Series, Series{Name: y, Points: points})
	}
	return chart, nil
}

// RegionalSales sums sales per region with each region's percent share
func (b *Builder) RegionalSales(t *domain.Table) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColRegion, domain.ColSales}, 1); err != nil {
		return nil, err
	}

	sums := sumBy(t, domain.ColRegion, domain.ColSales)
	total := 0.0
	for _, v := range sums {
		total += v
	}
	points := sortedPoints(sums)
	if total != 0 {
		for i := range points {
			points[i].Share = points[i].Y / total * 100
		}
	}

	return &Chart{
		Kind:   KindRegions,
		Title:  "Sales by Region",
		XTitle: "Region",
		YTitle: "Sales",
		Series: []Series{{Name: "Sales", Points: points}},
	}, nil
}

// CategoryBreakdown sums sales per month with one series per category
func (b *Builder) CategoryBreakdown(t *domain.Table) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColOrderDate, domain.ColCategory, domain.ColSales}, 2); err != nil {
		return nil, err
	}

	cats := make(map[string]map[string]float64)
	for i := 0; i < t.Len(); i++ {
		d, ok := t.Get(i, domain.ColOrderDate).Time()
		cat := t.Get(i, domain.ColCategory)
		if !ok || cat.IsMissing() {
			continue
		}
		name := cat.String()
		if cats[name] == nil {
			cats[name] = make(map[string]float64)
		}
		cats[name][d.Format("2006-01")] += number(t.Get(i, domain.ColSales))
	}

	chart := &Chart{Kind: KindCategories, Title: "Monthly Sales by Category", XTitle: "Month", YTitle: "Sales"}
	for _, c := range sortedKeys(cats) {
		chart.Series = append(chart.Series, Series{Name: c, Points: sortedPoints(cats[c])})
	}
	return chart, nil
}

// ProfitMargin plots per-product sales against margin percent, rounded to
// two places. Products with zero sales or a margin outside [-100, 100]
// are left out.
func (b *Builder) ProfitMargin(t *domain.Table) (*Chart, error) {
	if err := b.validateTable(t, []string{domain.ColProductName, domain.ColSales, domain.ColProfit}, 1); err != nil {
		return nil, err
	}

	sales := sumBy(t, domain.ColProductName, domain.ColSales)
	profit := sumBy(t, domain.ColProductName, domain.ColProfit)

	var points []Point
	for _, name := range sortedKeys(sales) {
		if sales[name] == 0 {
			continue
		}
		margin := math.Round(profit[name]/sales[name]*100*100) / 100
		if margin < -100 || margin > 100 {
			continue
		}
		points = append(points, Point{Label: name, X: sales[name], Y: margin})
	}

	return &Chart{
		Kind:   KindMargin,
		Title:  "Profit Margin by Product",
		XTitle: "Sales",
		YTitle: "Profit Margin (%)",
		Series: []Series{{Name: "Margin", Points: points}},
	}, nil
}

// ForecastOverlay lays out train actuals, test actuals, test predictions
// and future predictions on one date axis
func (b *Builder) ForecastOverlay(res *domain.ForecastResult) (*Chart, error) {
	if res == nil || len(res.Series) == 0 {
		return nil, apperrors.NewGraphError("forecast result is empty; cannot build chart")
	}
	if res.SplitIndex <= 0 || res.SplitIndex > len(res.Series) {
		return nil, apperrors.NewGraphError(fmt.Sprintf("split index %d is outside the series of %d days", res.SplitIndex, len(res.Series)))
	}
	test := res.Series[res.SplitIndex:]
	if len(res.TestPredictions) != len(test) {
		return nil, apperrors.NewGraphError(fmt.Sprintf("got %d test predictions for %d test days", len(res.TestPredictions), len(test)))
	}

	train := make([]Point, res.SplitIndex)
	for i, p := range res.Series[:res.SplitIndex] {
		train[i] = Point{Label: p.Date.Format(domain.DateLayout), Y: p.Value}
	}
	actual := make([]Point, len(test))
	predicted := make([]Point, len(test))
	for i, p := range test {
		label := p.Date.Format(domain.DateLayout)
		actual[i] = Point{Label: label, Y: p.Value}
		predicted[i] = Point{Label: label, Y: res.TestPredictions[i]}
	}
	future := make([]Point, len(res.Forecast))
	for i, p := range res.Forecast {
		future[i] = Point{Label: p.Date.Format(domain.DateLayout), Y: p.Predicted}
	}

	return &Chart{
		Kind:   KindForecast,
		Title:  "Sales Forecast",
		XTitle: "Date",
		YTitle: "Sales",
		Series: []Series{
			{Name: "Train", Points: train},
			{Name: "Test", Points: actual},
			{Name: "Test Prediction", Points: predicted},
			{Name: "Forecast", Points: future},
		},
	}, nil
}

func number(v domain.Value) float64 {
	f, _ := v.Float()
	return f
}

// sumBy sums valueCol per distinct keyCol; rows with a missing key are skipped
func sumBy(t *domain.Table, keyCol, valueCol string) map[string]float64 {
	out := make(map[string]float64)
	for i := 0; i < t.Len(); i++ {
		k := t.Get(i, keyCol)
		if k.IsMissing() {
			continue
		}
		out[k.String()] += number(t.Get(i, valueCol))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPoints(m map[string]float64) []Point {
	keys := sortedKeys(m)
	points := make([]Point, len(keys))
	for i, k := range keys {
		points[i] = Point{Label: k, Y: m[k]}
	}
	return points
}
