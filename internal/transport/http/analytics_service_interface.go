package http

import (
	"context"
	"io"

	"salespulse/internal/charts"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/report"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the pipeline operations exposed over HTTP
type AnalyticsServiceInterface interface {
	IngestUploads(ctx context.Context, uploads []services.Upload) (*services.Session, error)
	Current() (*services.Session, error)
	Clear()

	Summary(ctx context.Context, spec dataprocessing.FilterSpec, topN int) (*services.SummaryResult, error)
	Chart(ctx context.Context, kind charts.Kind, spec dataprocessing.FilterSpec, opts charts.Options) (*charts.Chart, error)
	Forecast(ctx context.Context, spec dataprocessing.FilterSpec, p services.ForecastParams) (*domain.ForecastResult, error)

	ExportExcel(ctx context.Context, w io.Writer, spec dataprocessing.FilterSpec, includeForecast bool) error
	Report(ctx context.Context, w io.Writer, spec dataprocessing.FilterSpec, p services.ReportParams, format report.Format) error
}
