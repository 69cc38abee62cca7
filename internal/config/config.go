package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salespulse/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. SALESPULSE_SERVER_PORT
const EnvPrefix = "SALESPULSE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains CORS and rate limiting settings
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig holds directory overrides; relative values resolve
// against the home directory
type PathsConfig struct {
	HomeDir    string `yaml:"home_dir" envconfig:"HOME_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig carries validation and quality thresholds
type PipelineConfig struct {
	MinRows              int     `yaml:"min_rows" envconfig:"MIN_ROWS" validate:"min=1"`
	MinForecastRows      int     `yaml:"min_forecast_rows" envconfig:"MIN_FORECAST_ROWS" validate:"min=1"`
	OutlierMultiplier    float64 `yaml:"outlier_multiplier" envconfig:"OUTLIER_MULTIPLIER" validate:"gt=0"`
	OutlierQuantile      float64 `yaml:"outlier_quantile" envconfig:"OUTLIER_QUANTILE" validate:"gt=0,lte=1"`
	MissingWarnRatio     float64 `yaml:"missing_warn_ratio" envconfig:"MISSING_WARN_RATIO" validate:"gte=0,lte=1"`
	MissingCriticalRatio float64 `yaml:"missing_critical_ratio" envconfig:"MISSING_CRITICAL_RATIO" validate:"gte=0,lte=1,gtefield=MissingWarnRatio"`
	MaxUploadBytes       int64   `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// ForecastConfig holds forecasting defaults
type ForecastConfig struct {
	DateColumn      string  `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	TargetColumn    string  `yaml:"target_column" envconfig:"TARGET_COLUMN" validate:"required"`
	DefaultPeriods  int     `yaml:"default_periods" envconfig:"DEFAULT_PERIODS" validate:"min=1"`
	TestSize        float64 `yaml:"test_size" envconfig:"TEST_SIZE" validate:"gt=0,lt=1"`
	HorizonWarnDays int     `yaml:"horizon_warn_days" envconfig:"HORIZON_WARN_DAYS" validate:"min=1"`
}

// ReportConfig configures report rendering
type ReportConfig struct {
	Title       string        `yaml:"title" envconfig:"TITLE"`
	TopProducts int           `yaml:"top_products" envconfig:"TOP_PRODUCTS" validate:"min=1"`
	ChromePath  string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	PDFTimeout  time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT" validate:"gt=0"`
}

// TelemetryConfig selects OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then an optional YAML file,
// then environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path; "" skips the file
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", configFile), err)
		}
	}

	// No default tags: envconfig only touches fields whose variable is set,
	// so file values survive unless explicitly overridden.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every struct constraint
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// ResolvePaths returns the absolute directory layout for this config
func (c *Config) ResolvePaths() (*Paths, error) {
	return GetPaths(c.Paths)
}

// getConfigFilePath returns the explicit or first discovered config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  2 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: LogFileName,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			UploadsDir: "data/uploads",
			ExportsDir: "data/exports",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Pipeline: PipelineConfig{
			MinRows:              MinValidationRows,
			MinForecastRows:      MinForecastRows,
			OutlierMultiplier:    OutlierMultiplier,
			OutlierQuantile:      OutlierQuantile,
			MissingWarnRatio:     MissingWarnRatio,
			MissingCriticalRatio: MissingCriticalRatio,
			MaxUploadBytes:       MaxUploadBytes,
		},
		Forecast: ForecastConfig{
			DateColumn:      "Order Date",
			TargetColumn:    "Sales",
			DefaultPeriods:  DefaultForecastPeriods,
			TestSize:        DefaultTestSize,
			HorizonWarnDays: HorizonWarnDays,
		},
		Report: ReportConfig{
			Title:       "Sales Analysis Report",
			TopProducts: 10,
			PDFTimeout:  60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
