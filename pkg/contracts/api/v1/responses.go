package api

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

// Response is the envelope of every successful JSON response
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// SourceInfo describes one loaded file
type SourceInfo struct {
	Name     string `json:"name"`
	Encoding string `json:"encoding,omitempty"`
	Rows     int    `json:"rows"`
}

// QualityWarning is an advisory data quality finding
type QualityWarning struct {
	Code    string `json:"code"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CleaningSummary counts what cleaning changed
type CleaningSummary struct {
	RowsBefore        int            `json:"rows_before"`
	RowsAfter         int            `json:"rows_after"`
	InvalidDates      map[string]int `json:"invalid_dates,omitempty"`
	InvalidNumbers    map[string]int `json:"invalid_numbers,omitempty"`
	NegativeValues    map[string]int `json:"negative_values,omitempty"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
}

// DatasetResponse describes the loaded session
type DatasetResponse struct {
	SessionID string           `json:"session_id"`
	LoadedAt  time.Time        `json:"loaded_at"`
	Rows      int              `json:"rows"`
	Columns   []string         `json:"columns"`
	Sources   []SourceInfo     `json:"sources"`
	Warnings  []QualityWarning `json:"warnings"`
	Cleaning  CleaningSummary  `json:"cleaning"`
}

// SummaryResponse carries KPIs for the filtered data
type SummaryResponse struct {
	Summary     domain.SalesSummary   `json:"summary"`
	TopProducts []domain.ProductSales `json:"top_products"`
	Insights    []string              `json:"insights"`
	RowsBefore  int                   `json:"rows_before"`
	RowsAfter   int                   `json:"rows_after"`
}

// ForecastResponse carries the forecast and how well the model scored on
// held-out days
type ForecastResponse struct {
	Forecast  []domain.ForecastPoint   `json:"forecast"`
	Metrics   domain.EvaluationMetrics `json:"metrics"`
	TrainDays int                      `json:"train_days"`
	TestDays  int                      `json:"test_days"`
	FirstDate time.Time                `json:"first_date"`
	LastDate  time.Time                `json:"last_date"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

// NewForecastResponse summarises a forecast result
func NewForecastResponse(r *domain.ForecastResult) ForecastResponse {
	return ForecastResponse{
		Forecast:  r.Forecast,
		Metrics:   r.Metrics,
		TrainDays: r.SplitIndex,
		TestDays:  len(r.Series) - r.SplitIndex,
		FirstDate: r.Origin,
		LastDate:  r.LastDate,
		Warnings:  r.Warnings,
	}
}
