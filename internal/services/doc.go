// Package services implements the business logic layer of salespulse.
// It sits between the HTTP handlers and the pipeline packages so that the
// rules for loading, filtering and analysing sales data live in one place.
//
// # Services
//
//	AnalyticsService  loads datasets and serves summaries, charts,
//	                  forecasts, Excel exports and reports
//	HealthService     liveness, readiness and runtime statistics
//
// # Sessions
//
// AnalyticsService holds at most one cleaned dataset, the session. Ingesting
// runs load, validate, quality check and clean; only a fully cleaned table
// is published, so a failed ingest leaves the previous session in place.
// Sessions are immutable and are swapped under a write lock, which lets any
// number of analyses read concurrently:
//
//	session, err := svc.IngestFiles(ctx, []string{"orders.csv"})
//	summary, err := svc.Summary(ctx, dataprocessing.FilterSpec{
//	    Regions: []string{"West"},
//	}, 10)
//
// Every analysis filters the session first and never modifies it. Each
// forecast trains a fresh predictor, so concurrent forecasts do not share
// model state.
//
// # Observability
//
// Operations open a span on the global tracer and record stage executions,
// durations, row counts and quality warnings on PipelineMetrics. Failures
// are recorded on the span and logged with their error type.
package services
