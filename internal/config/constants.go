package config

// Application constants
const (
	AppName = "SalesPulse"

	LogFileName = "salespulse.log"

	// Schema validation
	MinValidationRows = 10

	// Forecasting needs at least this many raw rows
	MinForecastRows = 100

	// Advisory data quality thresholds
	OutlierMultiplier    = 100.0
	OutlierQuantile      = 0.99
	MissingWarnRatio     = 0.10
	MissingCriticalRatio = 0.50

	// MaxUploadBytes caps a single input file
	MaxUploadBytes int64 = 200 << 20

	DefaultForecastPeriods = 30
	DefaultTestSize        = 0.2
	// HorizonWarnDays is the horizon beyond which forecasts get an advisory warning
	HorizonWarnDays = 365

	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40

	// Upload form limits
	MaxMultipartMemory = 32 << 20
	MaxUploadFiles     = 20
)

// SupportedExtensions are the input file types the loaders understand
var SupportedExtensions = []string{".csv", ".xlsx"}
