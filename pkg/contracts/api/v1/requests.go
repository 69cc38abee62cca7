// Package api contains the request and response contracts of the salespulse
// HTTP API. Version v1 represents the current stable API version.
package api

// DateLayout is the format of every date in requests
const DateLayout = "2006-01-02"

// FilterRequest narrows the loaded dataset. Empty fields do not filter.
type FilterRequest struct {
	StartDate     string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Categories    []string `json:"categories,omitempty" validate:"omitempty,dive,required"`
	SubCategories []string `json:"sub_categories,omitempty" validate:"omitempty,dive,required"`
	Regions       []string `json:"regions,omitempty" validate:"omitempty,dive,required"`
	Segments      []string `json:"segments,omitempty" validate:"omitempty,dive,required"`
}

// SummaryRequest asks for KPIs, top products and insights
type SummaryRequest struct {
	Filters FilterRequest `json:"filters"`
	TopN    int           `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
}

// ChartRequest asks for one chart; the kind is part of the path
type ChartRequest struct {
	Filters FilterRequest `json:"filters"`
	Period  string        `json:"period,omitempty" validate:"omitempty,oneof=daily monthly yearly"`
	TopN    int           `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
}

// ForecastRequest asks for a sales forecast. Zero values use the server
// defaults; a negative horizon is passed through and rejected by the model.
type ForecastRequest struct {
	Filters  FilterRequest `json:"filters"`
	Periods  int           `json:"periods,omitempty" validate:"omitempty,max=3650"`
	TestSize float64       `json:"test_size,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// ExportRequest asks for an Excel workbook of the filtered data
type ExportRequest struct {
	Filters         FilterRequest `json:"filters"`
	IncludeForecast bool          `json:"include_forecast"`
}

// ReportRequest asks for a rendered report
type ReportRequest struct {
	Filters         FilterRequest `json:"filters"`
	Title           string        `json:"title,omitempty" validate:"omitempty,max=200"`
	Format          string        `json:"format,omitempty" validate:"omitempty,oneof=html pdf"`
	IncludeForecast bool          `json:"include_forecast"`
	Periods         int           `json:"periods,omitempty" validate:"omitempty,min=1,max=3650"`
}
