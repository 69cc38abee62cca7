package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salespulse/internal/charts"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	mw "salespulse/internal/middleware"
	"salespulse/internal/report"
	"salespulse/internal/services"
	api "salespulse/pkg/contracts/api/v1"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	uploadFormField = "files"
)

// AnalyticsHandler exposes dataset loading, analysis, forecasting and
// export over HTTP
type AnalyticsHandler struct {
	service        AnalyticsServiceInterface
	validator      *mw.RequestValidator
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
	maxUploadFiles int
	logger         *slog.Logger
}

// NewAnalyticsHandler creates the handler. maxUploadBytes caps each file.
func NewAnalyticsHandler(service AnalyticsServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = config.MaxUploadBytes
	}
	return &AnalyticsHandler{
		service:        service,
		validator:      mw.NewRequestValidator(logger),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
		maxUploadFiles: config.MaxUploadFiles,
		logger:         logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/datasets", func(r chi.Router) {
		r.Use(mw.ContentTypeValidator("multipart/form-data"))
		r.Post("/", h.LoadDataset)
		r.Get("/current", h.GetDataset)
		r.Delete("/current", h.ClearDataset)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.ContentTypeValidator("application/json"))
		r.Post("/summary", h.GetSummary)
		r.Post("/charts/{kind}", h.GetChart)
		r.Post("/forecast", h.RunForecast)
		r.Post("/export/excel", h.ExportExcel)
		r.Post("/report", h.GenerateReport)
	})

	return r
}

// LoadDataset handles POST /api/v1/datasets. Every part of the "files" form
// field is one CSV or Excel file; together they replace the current dataset.
func (h *AnalyticsHandler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*int64(h.maxUploadFiles)+config.MaxMultipartMemory)
	if err := r.ParseMultipartForm(config.MaxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.NewValidationError(apierrors.CodeFileTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
			"INVALID_UPLOAD", "Request must be a multipart form", err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[uploadFormField]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.NewFieldErrors([]apierrors.FieldError{
			{Field: uploadFormField, Message: "at least one file is required"},
		}))
		return
	}
	if len(headers) > h.maxUploadFiles {
		h.errorHandler.HandleError(w, r, apierrors.NewFieldErrors([]apierrors.FieldError{
			{Field: uploadFormField, Message: fmt.Sprintf("at most %d files may be uploaded", h.maxUploadFiles)},
		}))
		return
	}

	uploads := make([]services.Upload, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{Name: fh.Filename, Size: fh.Size, Reader: f})
	}

	h.logger.InfoContext(r.Context(), "loading dataset",
		slog.Int("files", len(uploads)),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	session, err := h.service.IngestUploads(r.Context(), uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.Success(NewDatasetResponse(session)))
}

// GetDataset handles GET /api/v1/datasets/current
func (h *AnalyticsHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Current()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(NewDatasetResponse(session)))
}

// ClearDataset handles DELETE /api/v1/datasets/current
func (h *AnalyticsHandler) ClearDataset(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary handles POST /api/v1/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req api.SummaryRequest
	spec, ok := h.decode(w, r, &req, &req.Filters)
	if !ok {
		return
	}

	result, err := h.service.Summary(r.Context(), spec, req.TopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.Success(api.SummaryResponse{
		Summary:     result.Summary,
		TopProducts: result.TopProducts,
		Insights:    result.Insights,
		RowsBefore:  result.RowsBefore,
		RowsAfter:   result.RowsAfter,
	}))
}

// GetChart handles POST /api/v1/charts/{kind}
func (h *AnalyticsHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind := charts.Kind(chi.URLParam(r, "kind"))
	if !validChartKind(kind) {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("chart %q", kind)))
		return
	}

	var req api.ChartRequest
	spec, ok := h.decode(w, r, &req, &req.Filters)
	if !ok {
		return
	}

	chart, err := h.service.Chart(r.Context(), kind, spec, charts.Options{
		Period: charts.Period(req.Period),
		TopN:   req.TopN,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(chart))
}

// RunForecast handles POST /api/v1/forecast
func (h *AnalyticsHandler) RunForecast(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	spec, ok := h.decode(w, r, &req, &req.Filters)
	if !ok {
		return
	}

	result, err := h.service.Forecast(r.Context(), spec, services.ForecastParams{
		Periods:  req.Periods,
		TestSize: req.TestSize,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(api.NewForecastResponse(result)))
}

// ExportExcel handles POST /api/v1/export/excel. The workbook is built in
// memory so a failure still produces a problem response.
func (h *AnalyticsHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	spec, ok := h.decode(w, r, &req, &req.Filters)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportExcel(r.Context(), &buf, spec, req.IncludeForecast); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.attachment(w, contentTypeXLSX, "sales_export", ".xlsx", buf.Bytes())
}

// GenerateReport handles POST /api/v1/report
func (h *AnalyticsHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	spec, ok := h.decode(w, r, &req, &req.Filters)
	if !ok {
		return
	}

	format := report.FormatHTML
	if req.Format != "" {
		format = report.Format(req.Format)
	}

	var buf bytes.Buffer
	err := h.service.Report(r.Context(), &buf, spec, services.ReportParams{
		Title:           req.Title,
		IncludeForecast: req.IncludeForecast,
		Forecast:        services.ForecastParams{Periods: req.Periods},
	}, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == report.FormatPDF {
		h.attachment(w, "application/pdf", "sales_report", ".pdf", buf.Bytes())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// decode reads a JSON request and converts its filters. On failure the
// error response is already written.
func (h *AnalyticsHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, filters *api.FilterRequest) (dataprocessing.FilterSpec, bool) {
	if err := h.validator.DecodeJSON(r, dst); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.FilterSpec{}, false
	}
	spec, err := ToFilterSpec(*filters)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.FilterSpec{}, false
	}
	return spec, true
}

func (h *AnalyticsHandler) attachment(w http.ResponseWriter, contentType, prefix, ext string, body []byte) {
	name := exporter.TimestampedName(prefix, ext, time.Now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ToFilterSpec converts request filters to a filter spec
func ToFilterSpec(req api.FilterRequest) (dataprocessing.FilterSpec, error) {
	spec := dataprocessing.FilterSpec{
		Categories:    req.Categories,
		SubCategories: req.SubCategories,
		Regions:       req.Regions,
		Segments:      req.Segments,
	}
	if req.StartDate == "" && req.EndDate == "" {
		return spec, nil
	}

	var fields []apierrors.FieldError
	parse := func(field, value string) *time.Time {
		if value == "" {
			return nil
		}
		t, err := time.Parse(api.DateLayout, value)
		if err != nil {
			fields = append(fields, apierrors.FieldError{
				Field:   "filters." + field,
				Message: fmt.Sprintf("%s must be a date formatted as %s", field, api.DateLayout),
			})
			return nil
		}
		return &t
	}

	dr := &dataprocessing.DateRange{
		Start: parse("start_date", req.StartDate),
		End:   parse("end_date", req.EndDate),
	}
	if len(fields) > 0 {
		return spec, apierrors.NewFieldErrors(fields)
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return spec, apierrors.NewFieldErrors([]apierrors.FieldError{
			{Field: "filters.end_date", Message: "end_date must not be before start_date"},
		})
	}
	spec.DateRange = dr
	return spec, nil
}

// NewDatasetResponse describes a loaded session
func NewDatasetResponse(s *services.Session) api.DatasetResponse {
	resp := api.DatasetResponse{
		SessionID: s.ID,
		LoadedAt:  s.LoadedAt,
		Rows:      s.Table.Len(),
		Columns:   s.Table.Columns(),
		Sources:   make([]api.SourceInfo, len(s.Sources)),
		Warnings:  make([]api.QualityWarning, len(s.Warnings)),
	}
	for i, src := range s.Sources {
		resp.Sources[i] = api.SourceInfo{Name: src.Name, Encoding: src.Encoding, Rows: src.Rows}
	}
	for i, warn := range s.Warnings {
		resp.Warnings[i] = api.QualityWarning{Code: warn.Code, Column: warn.Column, Message: warn.Message, Count: warn.Count}
	}
	if c := s.Cleaning; c != nil {
		resp.Cleaning = api.CleaningSummary{
			RowsBefore:        c.RowsBefore,
			RowsAfter:         c.RowsAfter,
			InvalidDates:      c.InvalidDates,
			InvalidNumbers:    c.InvalidNumbers,
			NegativeValues:    c.NegativeValues,
			DuplicatesRemoved: c.DuplicatesRemoved,
		}
	}
	return resp
}

func validChartKind(kind charts.Kind) bool {
	if kind == charts.KindForecast {
		return true
	}
	for _, k := range charts.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
