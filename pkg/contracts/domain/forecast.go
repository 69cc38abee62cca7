package domain

import "time"

// DailyPoint is one gap-filled day of a Daily Series with its calendar features
type DailyPoint struct {
	Date           time.Time `json:"date"`
	Value          float64   `json:"value"`
	DaysFromOrigin int       `json:"days_from_origin"`
	DayOfWeek      int       `json:"day_of_week"`
	Month          int       `json:"month"`
	Quarter        int       `json:"quarter"`
	DayOfMonth     int       `json:"day_of_month"`
	Year           int       `json:"year"`
	IsWeekend      bool      `json:"is_weekend"`
}

// ForecastPoint is one predicted future day
type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
}

// EvaluationMetrics scores predictions against actuals
type EvaluationMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// ForecastResult bundles everything a caller needs to chart and report a run
type ForecastResult struct {
	Series          []DailyPoint      `json:"series"`
	SplitIndex      int               `json:"split_index"`
	TestPredictions []float64         `json:"test_predictions"`
	Metrics         EvaluationMetrics `json:"metrics"`
	Forecast        []ForecastPoint   `json:"forecast"`
	Origin          time.Time         `json:"origin"`
	LastDate        time.Time         `json:"last_date"`
	Warnings        []string          `json:"warnings,omitempty"`
}
