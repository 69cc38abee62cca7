// Package config provides configuration loading for SalesPulse.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML file: $SALESPULSE_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables prefixed with SALESPULSE_
//
// # Environment Variables
//
// Nested sections map to underscore-joined names:
//
//	SALESPULSE_SERVER_PORT=9090
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_PIPELINE_MIN_ROWS=10
//	SALESPULSE_FORECAST_TEST_SIZE=0.25
//
// # Paths
//
// GetPaths resolves every directory against a home directory, which is
// SALESPULSE_HOME or the executable's directory:
//
//	<home>/
//	  ├── data/
//	  │   ├── uploads/   (files received over HTTP)
//	  │   ├── exports/   (Excel and CSV exports)
//	  │   └── reports/   (HTML and PDF reports)
//	  └── logs/
//
// The loaded Config is validated with go-playground/validator struct tags;
// failures are returned as CONFIG application errors.
package config
