// Package app wires the salespulse HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, SALESPULSE_* environment)
//	2. Resolve and create the data, uploads, exports, reports and logs directories
//	3. Initialize logging and OpenTelemetry, then the pipeline metrics
//	4. Build the report generator (PDF only when Chrome is found), the upload
//	   store and the AnalyticsService
//	5. Set up the chi router and middleware chain
//	6. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then lets active requests finish
// within the shutdown timeout, drops the loaded dataset and flushes
// telemetry.
package app
