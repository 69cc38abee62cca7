package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/charts"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/forecast"
	"salespulse/internal/infrastructure"
	"salespulse/internal/report"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

// Stage names recorded on spans and pipeline metrics
const (
	StageLoad     = "load"
	StageValidate = "validate"
	StageClean    = "clean"
	StageFilter   = "filter"
	StageForecast = "forecast"
)

// UploadStore keeps uploaded files on disk while they are loaded
type UploadStore interface {
	SaveUpload(name string, r io.Reader) (string, error)
	RemoveFiles(paths []string) error
}

// Upload is one received file
type Upload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Source describes one loaded input file
type Source struct {
	Name     string `json:"name"`
	Encoding string `json:"encoding,omitempty"`
	Rows     int    `json:"rows"`
}

// Session is a published, cleaned dataset. A session is never mutated after
// it is published; ingesting again replaces it wholesale.
type Session struct {
	ID       string
	LoadedAt time.Time
	Sources  []Source
	Table    *domain.Table
	Warnings []dataprocessing.Warning
	Cleaning *dataprocessing.CleaningReport
}

// SummaryResult is the KPI view of a filtered session
type SummaryResult struct {
	Summary     domain.SalesSummary
	TopProducts []domain.ProductSales
	Insights    []string
	RowsBefore  int
	RowsAfter   int
}

// ForecastParams override the configured forecast defaults; zero values
// keep the defaults
type ForecastParams struct {
	Periods  int
	TestSize float64
}

// ReportParams select what a report contains
type ReportParams struct {
	Title           string
	IncludeForecast bool
	Forecast        ForecastParams
}

// AnalyticsService runs the sales pipeline and serves analyses of the
// current session
type AnalyticsService struct {
	cfg *config.Config

	loader     *dataprocessing.Loader
	validator  *dataprocessing.Validator
	cleaner    *dataprocessing.Cleaner
	filters    *dataprocessing.FilterEngine
	summarizer *dataprocessing.Summarizer
	charts     *charts.Builder
	excel      *exporter.ExcelExporter
	reports    *report.Generator
	guard      *validation.FileValidator
	store      UploadStore

	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
	logger  *slog.Logger

	mu      sync.RWMutex
	session *Session
}

// NewAnalyticsService wires the pipeline stages from cfg. store, reports and
// metrics may be nil: uploads and reports are then unavailable and metrics
// are not recorded.
func NewAnalyticsService(cfg *config.Config, store UploadStore, reports *report.Generator, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	logger.Info("AnalyticsService initialized",
		slog.Int64("max_upload_bytes", cfg.Pipeline.MaxUploadBytes),
		slog.Int("default_periods", cfg.Forecast.DefaultPeriods))

	return &AnalyticsService{
		cfg:        cfg,
		loader:     dataprocessing.NewLoader(logger),
		validator:  dataprocessing.NewValidator(cfg.Pipeline, logger),
		cleaner:    dataprocessing.NewCleaner(logger),
		filters:    dataprocessing.NewFilterEngine(logger),
		summarizer: dataprocessing.NewSummarizer(logger),
		charts:     charts.NewBuilder(logger),
		excel:      exporter.NewExcelExporter(nil, logger),
		reports:    reports,
		guard:      validation.NewFileValidator(logger, cfg.Pipeline.MaxUploadBytes),
		store:      store,
		metrics:    metrics,
		tracer:     otel.Tracer(infrastructure.ServiceName),
		logger:     logger.With(slog.String("service", "analytics")),
	}
}

// IngestFiles loads, validates and cleans the files at paths and publishes
// the result as the current session
func (s *AnalyticsService) IngestFiles(ctx context.Context, paths []string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.ingest_files",
		trace.WithAttributes(attribute.Int("files", len(paths))))
	defer span.End()

	if len(paths) == 0 {
		return nil, s.fail(ctx, apperrors.NewValidationError(apperrors.CodeEmptyData, "no input files given"))
	}
	for _, p := range paths {
		if err := s.guard.ValidateFile(p); err != nil {
			return nil, s.fail(ctx, err)
		}
	}

	results, err := s.load(ctx, paths)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return s.ingest(ctx, results)
}

// IngestUploads stores each upload, loads them as one dataset and removes
// the stored copies again
func (s *AnalyticsService) IngestUploads(ctx context.Context, uploads []Upload) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.ingest_uploads",
		trace.WithAttributes(attribute.Int("files", len(uploads))))
	defer span.End()

	if s.store == nil {
		return nil, s.fail(ctx, apperrors.NewResourceError(apperrors.CodeStorageFailure, "upload storage is not configured", nil))
	}
	if len(uploads) == 0 {
		return nil, s.fail(ctx, apperrors.NewValidationError(apperrors.CodeEmptyData, "no files uploaded"))
	}
	for _, u := range uploads {
		if err := s.guard.ValidateUpload(u.Name, u.Size); err != nil {
			return nil, s.fail(ctx, err)
		}
	}

	stored := make([]string, 0, len(uploads))
	defer func() {
		if err := s.store.RemoveFiles(stored); err != nil {
			s.logger.WarnContext(ctx, "failed to remove stored uploads", slog.String("error", err.Error()))
		}
	}()
	for _, u := range uploads {
		path, err := s.store.SaveUpload(u.Name, u.Reader)
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		stored = append(stored, path)
	}

	results, err := s.load(ctx, stored)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	for _, r := range results {
		r.Source = files.OriginalName(filepath.Base(r.Source))
	}
	return s.ingest(ctx, results)
}

func (s *AnalyticsService) load(ctx context.Context, paths []string) ([]*dataprocessing.LoadResult, error) {
	start := time.Now()
	results, err := s.loader.LoadFiles(ctx, paths)
	rows := 0
	for _, r := range results {
		rows += r.Table.Len()
	}
	s.metrics.RecordStage(ctx, StageLoad, rows, time.Since(start), err)
	return results, err
}

func (s *AnalyticsService) ingest(ctx context.Context, results []*dataprocessing.LoadResult) (*Session, error) {
	tables := make([]*domain.Table, len(results))
	sources := make([]Source, len(results))
	for i, r := range results {
		tables[i] = r.Table
		sources[i] = Source{Name: filepath.Base(r.Source), Encoding: string(r.Encoding), Rows: r.Table.Len()}
	}

	merged, err := dataprocessing.MergeTables(tables...)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	start := time.Now()
	validated, err := s.validator.Validate(merged)
	if err != nil {
		s.metrics.RecordStage(ctx, StageValidate, 0, time.Since(start), err)
		return nil, s.fail(ctx, err)
	}
	warnings := s.validator.CheckQuality(validated)
	s.metrics.RecordStage(ctx, StageValidate, validated.Len(), time.Since(start), nil)
	s.metrics.RecordWarnings(ctx, dataprocessing.Codes(warnings))

	start = time.Now()
	cleaned, cleaning := s.cleaner.Clean(validated)
	s.metrics.RecordStage(ctx, StageClean, cleaned.Len(), time.Since(start), nil)

	session := &Session{
		ID:       uuid.NewString(),
		LoadedAt: time.Now(),
		Sources:  sources,
		Table:    cleaned.Table(),
		Warnings: warnings,
		Cleaning: cleaning,
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("session_id", session.ID),
		attribute.Int("rows", session.Table.Len()))
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("session_id", session.ID),
		slog.Int("sources", len(sources)),
		slog.Int("rows", session.Table.Len()),
		slog.Int("warnings", len(warnings)),
		slog.Int("duplicates_removed", cleaning.DuplicatesRemoved))
	return session, nil
}

// Current returns the published session
func (s *AnalyticsService) Current() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, apperrors.ErrNoDataset
	}
	return s.session, nil
}

// HasSession reports whether a dataset is loaded
func (s *AnalyticsService) HasSession() bool {
	_, err := s.Current()
	return err == nil
}

// Clear drops the current session
func (s *AnalyticsService) Clear() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	s.logger.Info("dataset cleared")
}

// filtered applies spec to the current session's table
func (s *AnalyticsService) filtered(ctx context.Context, spec dataprocessing.FilterSpec) (dataprocessing.FilterResult, error) {
	session, err := s.Current()
	if err != nil {
		return dataprocessing.FilterResult{}, err
	}
	start := time.Now()
	res := s.filters.Apply(session.Table, spec)
	s.metrics.RecordStage(ctx, StageFilter, res.After, time.Since(start), nil)
	return res, nil
}

// Summary computes KPIs, the top products and insights over the filtered
// session. topN <= 0 uses the configured count.
func (s *AnalyticsService) Summary(ctx context.Context, spec dataprocessing.FilterSpec, topN int) (*SummaryResult, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.summary")
	defer span.End()

	res, err := s.filtered(ctx, spec)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if topN <= 0 {
		topN = s.cfg.Report.TopProducts
	}

	summary := s.summarizer.Summarize(ctx, res.Table)
	return &SummaryResult{
		Summary:     summary,
		TopProducts: s.summarizer.TopProducts(res.Table, topN),
		Insights:    s.summarizer.Insights(summary, res.Table),
		RowsBefore:  res.Before,
		RowsAfter:   res.After,
	}, nil
}

// Chart builds one chart over the filtered session. The forecast kind runs
// a forecast with the configured defaults and plots its overlay.
func (s *AnalyticsService) Chart(ctx context.Context, kind charts.Kind, spec dataprocessing.FilterSpec, opts charts.Options) (*charts.Chart, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.chart",
		trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	if kind == charts.KindForecast {
		res, err := s.Forecast(ctx, spec, ForecastParams{})
		if err != nil {
			return nil, err
		}
		c, err := s.charts.ForecastOverlay(res)
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		return c, nil
	}

	res, err := s.filtered(ctx, spec)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	c, err := s.charts.Build(kind, res.Table, opts)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return c, nil
}

// Forecast trains a fresh predictor on the filtered session and predicts
// the days after it
func (s *AnalyticsService) Forecast(ctx context.Context, spec dataprocessing.FilterSpec, p ForecastParams) (*domain.ForecastResult, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.forecast")
	defer span.End()

	res, err := s.filtered(ctx, spec)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	opts := forecast.RunOptions{
		DateColumn:   s.cfg.Forecast.DateColumn,
		TargetColumn: s.cfg.Forecast.TargetColumn,
		TestSize:     s.cfg.Forecast.TestSize,
		Periods:      s.cfg.Forecast.DefaultPeriods,
		Options: forecast.Options{
			MinRows:         s.cfg.Pipeline.MinForecastRows,
			HorizonWarnDays: s.cfg.Forecast.HorizonWarnDays,
		},
	}
	if p.Periods != 0 {
		opts.Periods = p.Periods
	}
	if p.TestSize != 0 {
		opts.TestSize = p.TestSize
	}
	span.SetAttributes(attribute.Int("periods", opts.Periods), attribute.Float64("test_size", opts.TestSize))

	start := time.Now()
	result, err := forecast.Run(ctx, res.Table, opts, s.logger)
	if err != nil {
		s.metrics.RecordStage(ctx, StageForecast, 0, time.Since(start), err)
		return nil, s.fail(ctx, err)
	}
	s.metrics.RecordStage(ctx, StageForecast, len(result.Forecast), time.Since(start), nil)
	if s.metrics != nil {
		s.metrics.ForecastRuns.Add(ctx, 1)
	}
	return result, nil
}

// Workbook assembles an Excel export of the filtered session. fc may be nil.
func (s *AnalyticsService) Workbook(ctx context.Context, spec dataprocessing.FilterSpec, fc *domain.ForecastResult) (exporter.Workbook, error) {
	res, err := s.filtered(ctx, spec)
	if err != nil {
		return exporter.Workbook{}, err
	}
	wb := exporter.Workbook{
		Data:    res.Table,
		Summary: s.summarizer.Summarize(ctx, res.Table),
	}
	if fc != nil {
		wb.Forecast = fc.Forecast
	}
	return wb, nil
}

// ExportExcel writes the filtered session as a workbook to w. With
// includeForecast a forecast sheet is added when a forecast can be made.
func (s *AnalyticsService) ExportExcel(ctx context.Context, w io.Writer, spec dataprocessing.FilterSpec, includeForecast bool) error {
	ctx, span := s.tracer.Start(ctx, "analytics.export_excel")
	defer span.End()

	var fc *domain.ForecastResult
	if includeForecast {
		var err error
		if fc, err = s.Forecast(ctx, spec, ForecastParams{}); err != nil {
			s.logger.WarnContext(ctx, "forecast sheet skipped", slog.String("error", err.Error()))
		}
	}

	wb, err := s.Workbook(ctx, spec, fc)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.excel.Write(w, wb); err != nil {
		return s.fail(ctx, err)
	}
	return nil
}

// reportCharts are drawn into every report when the data supports them
var reportCharts = []struct {
	kind charts.Kind
	opts charts.Options
}{
	{charts.KindTrend, charts.Options{Period: charts.PeriodMonthly}},
	{charts.KindRegions, charts.Options{}},
	{charts.KindCategories, charts.Options{}},
	{charts.KindYoY, charts.Options{}},
}

// ReportData gathers everything a report shows for the filtered session.
// Charts and the forecast are best effort: what cannot be built is left out
// and noted in the report's warnings.
func (s *AnalyticsService) ReportData(ctx context.Context, spec dataprocessing.FilterSpec, p ReportParams) (report.Data, error) {
	session, err := s.Current()
	if err != nil {
		return report.Data{}, err
	}
	res, err := s.filtered(ctx, spec)
	if err != nil {
		return report.Data{}, err
	}

	title := p.Title
	if title == "" {
		title = s.cfg.Report.Title
	}
	summary := s.summarizer.Summarize(ctx, res.Table)
	data := report.Data{
		Title:       title,
		GeneratedAt: time.Now(),
		Summary:     summary,
		Insights:    s.summarizer.Insights(summary, res.Table),
		Warnings:    dataprocessing.Messages(session.Warnings),
		TopProducts: s.summarizer.TopProducts(res.Table, s.cfg.Report.TopProducts),
	}

	for _, rc := range reportCharts {
		c, err := s.charts.Build(rc.kind, res.Table, rc.opts)
		if err != nil {
			s.logger.DebugContext(ctx, "report chart skipped",
				slog.String("kind", string(rc.kind)),
				slog.String("error", err.Error()))
			continue
		}
		data.Charts = append(data.Charts, c)
	}

	if p.IncludeForecast {
		fc, err := s.Forecast(ctx, spec, p.Forecast)
		if err != nil {
			data.Warnings = append(data.Warnings, fmt.Sprintf("Forecast unavailable: %s", err))
		} else {
			data.Forecast = fc
			data.Warnings = append(data.Warnings, fc.Warnings...)
			if c, err := s.charts.ForecastOverlay(fc); err == nil {
				data.Charts = append(data.Charts, c)
			}
		}
	}
	return data, nil
}

// Report renders a report of the filtered session in format to w
func (s *AnalyticsService) Report(ctx context.Context, w io.Writer, spec dataprocessing.FilterSpec, p ReportParams, format report.Format) error {
	ctx, span := s.tracer.Start(ctx, "analytics.report",
		trace.WithAttributes(attribute.String("format", string(format))))
	defer span.End()

	if s.reports == nil {
		return s.fail(ctx, apperrors.NewResourceError(apperrors.CodeStorageFailure, "report generation is not configured", nil))
	}
	data, err := s.ReportData(ctx, spec, p)
	if err != nil {
		return s.fail(ctx, err)
	}
	out, err := s.reports.Render(ctx, data, format)
	if err != nil {
		return s.fail(ctx, err)
	}
	if _, err := w.Write(out); err != nil {
		return s.fail(ctx, fmt.Errorf("failed to write report: %w", err))
	}
	return nil
}

// fail records err on the active span and logs it
func (s *AnalyticsService) fail(ctx context.Context, err error) error {
	infrastructure.RecordError(ctx, err)
	s.logger.WarnContext(ctx, "analytics request failed",
		slog.String("error_type", string(apperrors.TypeOf(err))),
		slog.String("error", err.Error()))
	return err
}
