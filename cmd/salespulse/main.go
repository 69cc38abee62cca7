package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/internal/report"
	"salespulse/internal/services"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts"
	apiv1 "salespulse/pkg/contracts/api/v1"
	"salespulse/pkg/contracts/domain"
)

// options are the parsed command line flags
type options struct {
	inputs      []string
	configFile  string
	home        string
	periods     int
	testSize    float64
	start       string
	end         string
	categories  []string
	subCats     []string
	regions     []string
	segments    []string
	out         string
	excel       string
	report      string
	title       string
	topProducts int
	version     bool
}

// listFlag collects a comma separated flag that may also repeat
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("salespulse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in, categories, subCats, regions, segments listFlag
	opts := &options{}
	fs.Var(&in, "in", "input .csv/.xlsx files or directories (comma separated or repeated)")
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to config.yaml discovery)")
	fs.StringVar(&opts.home, "home", "", "home directory for data, exports and logs")
	fs.IntVar(&opts.periods, "periods", 0, "days to forecast (defaults to forecast.default_periods)")
	fs.Float64Var(&opts.testSize, "test-size", 0, "held-out fraction for evaluation (defaults to forecast.test_size)")
	fs.StringVar(&opts.start, "start", "", "first order date to keep, YYYY-MM-DD")
	fs.StringVar(&opts.end, "end", "", "last order date to keep, YYYY-MM-DD")
	fs.Var(&categories, "category", "categories to keep")
	fs.Var(&subCats, "subcategory", "sub-categories to keep")
	fs.Var(&regions, "region", "regions to keep")
	fs.Var(&segments, "segment", "segments to keep")
	fs.StringVar(&opts.out, "out", "", "forecast CSV file (defaults to a timestamped file in the exports directory)")
	fs.StringVar(&opts.excel, "excel", "", "also write the filtered data as an .xlsx workbook")
	fs.StringVar(&opts.report, "report", "none", "report format: html, pdf or none")
	fs.StringVar(&opts.title, "title", "", "report title")
	fs.IntVar(&opts.topProducts, "top", 10, "products listed in the summary")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}
	in = append(in, fs.Args()...)
	if len(in) == 0 {
		return nil, errors.New("no input given, use -in")
	}
	if opts.report != "none" {
		if _, err := report.ParseFormat(opts.report); err != nil {
			return nil, err
		}
	}
	if opts.testSize < 0 || opts.testSize >= 1 {
		return nil, fmt.Errorf("-test-size must be in [0, 1), got %v", opts.testSize)
	}
	if opts.periods < 0 {
		return nil, fmt.Errorf("-periods must not be negative, got %d", opts.periods)
	}

	opts.inputs = in
	opts.categories = categories
	opts.subCats = subCats
	opts.regions = regions
	opts.segments = segments
	return opts, nil
}

// filterSpec turns the filter flags into a FilterSpec
func (o *options) filterSpec() (dataprocessing.FilterSpec, error) {
	spec := dataprocessing.FilterSpec{
		Categories:    o.categories,
		SubCategories: o.subCats,
		Regions:       o.regions,
		Segments:      o.segments,
	}

	parse := func(name, v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(apiv1.DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("-%s: %q is not a YYYY-MM-DD date", name, v)
		}
		return &t, nil
	}
	start, err := parse("start", o.start)
	if err != nil {
		return spec, err
	}
	end, err := parse("end", o.end)
	if err != nil {
		return spec, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return spec, fmt.Errorf("-end %s is before -start %s", o.end, o.start)
	}
	if start != nil || end != nil {
		spec.DateRange = &dataprocessing.DateRange{Start: start, End: end}
	}
	return spec, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.FullVersionString())
		return
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if opts.home != "" {
		cfg.Paths.HomeDir = opts.home
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		os.Exit(1)
	}
	if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.LogPath(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, paths, opts, logger, os.Stdout); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "Error:", err)
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}

// run loads the inputs, prints a summary and forecast and writes the
// requested files
func run(ctx context.Context, cfg *config.Config, paths *config.Paths, opts *options, logger *slog.Logger, stdout io.Writer) error {
	spec, err := opts.filterSpec()
	if err != nil {
		return err
	}

	inputs, err := files.NewDiscovery("").ResolveInputs(opts.inputs)
	if err != nil {
		return err
	}
	logger.Info("Inputs resolved", slog.Int("files", len(inputs)))

	guard := validation.NewFileValidator(logger, cfg.Pipeline.MaxUploadBytes)
	var reports *report.Generator
	if opts.report != "none" {
		var pdf report.PDFRenderer
		if chromePath, ok := report.FindChrome(cfg.Report.ChromePath); ok {
			pdf = report.NewChromeRenderer(chromePath, cfg.Report.PDFTimeout, logger)
		}
		if reports, err = report.NewGenerator(pdf, guard, logger); err != nil {
			return err
		}
	}

	svc := services.NewAnalyticsService(cfg, files.NewManager(paths, logger), reports, nil, logger)
	defer svc.Clear()

	start := time.Now()
	session, err := svc.IngestFiles(ctx, inputs)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Loaded %d rows from %d file(s) in %s\n",
		session.Table.Len(), len(session.Sources), time.Since(start).Round(time.Millisecond))
	for _, src := range session.Sources {
		fmt.Fprintf(stdout, "  %s: %d rows\n", src.Name, src.Rows)
	}
	for _, msg := range dataprocessing.Messages(session.Warnings) {
		fmt.Fprintf(stdout, "Warning: %s\n", msg)
	}

	summary, err := svc.Summary(ctx, spec, opts.topProducts)
	if err != nil {
		return err
	}
	printSummary(stdout, summary)

	params := services.ForecastParams{Periods: opts.periods, TestSize: opts.testSize}
	fc, err := svc.Forecast(ctx, spec, params)
	if err != nil {
		return err
	}
	printForecast(stdout, fc)

	now := time.Now()
	out := opts.out
	if out == "" {
		out = exporter.TimestampedName("forecast", ".csv", now)
	}
	csvPath, err := exporter.NewCSVWriter(paths, guard, logger).WriteForecast(out, fc.Forecast)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Forecast written to %s\n", csvPath)

	if opts.excel != "" {
		wb, err := svc.Workbook(ctx, spec, fc)
		if err != nil {
			return err
		}
		excelPath := resolve(opts.excel, paths.ExportPath)
		if err := exporter.NewExcelExporter(guard, logger).Export(excelPath, wb); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Workbook written to %s\n", excelPath)
	}

	if reports != nil {
		format := report.Format(opts.report)
		data, err := svc.ReportData(ctx, spec, services.ReportParams{
			Title:           opts.title,
			IncludeForecast: true,
			Forecast:        params,
		})
		if err != nil {
			return err
		}
		reportPath := paths.ReportPath(exporter.TimestampedName("sales-report", "."+string(format), now))
		if err := reports.Write(ctx, reportPath, data, format); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", reportPath)
	}
	return nil
}

func resolve(path string, within func(string) string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return within(path)
}

func printSummary(w io.Writer, res *services.SummaryResult) {
	s := res.Summary
	fmt.Fprintf(w, "\nRows: %d of %d after filters\n", res.RowsAfter, res.RowsBefore)
	fmt.Fprintf(w, "Total sales:   %.2f\n", s.TotalSales)
	fmt.Fprintf(w, "Total profit:  %.2f\n", s.TotalProfit)
	fmt.Fprintf(w, "Profit margin: %.2f%%\n", s.ProfitMargin)
	fmt.Fprintf(w, "Orders:        %d\n", s.TotalOrders)

	if len(res.TopProducts) > 0 {
		fmt.Fprintln(w, "\nTop products:")
		for i, p := range res.TopProducts {
			fmt.Fprintf(w, "%3d. %-40s %12.2f\n", i+1, p.ProductName, p.Sales)
		}
	}
	for _, insight := range res.Insights {
		fmt.Fprintf(w, "* %s\n", insight)
	}
}

func printForecast(w io.Writer, fc *domain.ForecastResult) {
	fmt.Fprintf(w, "\nForecast: %d days after %s\n", len(fc.Forecast), fc.LastDate.Format(apiv1.DateLayout))
	fmt.Fprintf(w, "RMSE: %.2f  MAE: %.2f  R2: %.3f\n", fc.Metrics.RMSE, fc.Metrics.MAE, fc.Metrics.R2)
	for _, msg := range fc.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}
