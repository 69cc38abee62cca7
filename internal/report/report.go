package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"salespulse/internal/charts"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// Format selects the report output
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "html" or "pdf"
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatPDF:
		return Format(s), nil
	default:
		return "", apperrors.NewValidationError(apperrors.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported report format %q; expected html or pdf", s))
	}
}

// Data is everything a report shows. Summary must describe at least one row.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Summary     domain.SalesSummary
	Insights    []string
	Warnings    []string
	TopProducts []domain.ProductSales
	Charts      []*charts.Chart
	Forecast    *domain.ForecastResult
}

// PDFRenderer prints an HTML document to PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// OutputGuard checks that a file can be written
type OutputGuard interface {
	ValidateOutputFile(path string) error
}

// Generator renders reports
type Generator struct {
	tmpl   *template.Template
	pdf    PDFRenderer
	guard  OutputGuard
	logger *slog.Logger
}

// NewGenerator parses the report template. pdf and guard may be nil; a nil
// pdf renderer makes PDF output fail with a resource error.
func NewGenerator(pdf PDFRenderer, guard OutputGuard, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"money":   func(v float64) string { return printer.Sprintf("$%.0f", v) },
		"decimal": func(v float64) string { return printer.Sprintf("%.2f", v) },
		"count":   func(v int) string { return printer.Sprintf("%d", v) },
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"inc":     func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("report.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return &Generator{
		tmpl:   tmpl,
		pdf:    pdf,
		guard:  guard,
		logger: logger.With(slog.String("component", "report")),
	}, nil
}

type view struct {
	Data
	Charts []chartView
}

// RenderHTML writes the report as a standalone HTML document
func (g *Generator) RenderHTML(w io.Writer, d Data) error {
	if d.Summary.Rows == 0 {
		return apperrors.NewValidationError(apperrors.CodeEmptyData, "no summary data to report")
	}
	if d.Title == "" {
		d.Title = "Sales Analysis Report"
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}

	v := view{Data: d}
	for _, c := range d.Charts {
		if c != nil {
			v.Charts = append(v.Charts, newChartView(c))
		}
	}

	if err := g.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Render produces the report bytes in format
func (g *Generator) Render(ctx context.Context, d Data, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.RenderHTML(&buf, d); err != nil {
		return nil, err
	}
	if format == FormatHTML {
		return buf.Bytes(), nil
	}

	if g.pdf == nil {
		return nil, apperrors.NewResourceError(apperrors.CodeStorageFailure, "PDF output is not available", nil)
	}
	start := time.Now()
	out, err := g.pdf.RenderPDF(ctx, buf.Bytes())
	if err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "report printed to PDF",
		slog.Int("bytes", len(out)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// Write renders the report to path in format
func (g *Generator) Write(ctx context.Context, path string, d Data, format Format) error {
	if g.guard != nil {
		if err := g.guard.ValidateOutputFile(path); err != nil {
			return err
		}
	}

	out, err := g.Render(ctx, d, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return apperrors.NewStorageError("write", path, err)
	}

	g.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.String("format", string(format)))
	return nil
}
