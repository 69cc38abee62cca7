package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/shared/testutil"
)

func writeSalesCSV(t *testing.T, dir, name string, rows int) string {
	t.Helper()

	tbl := testutil.NewSalesTable().Generate(rows, testutil.StandardRow).Build(t)
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, csv.NewWriter(f).WriteAll(tbl.Records()))
	return path
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, o *options)
	}{
		{
			name: "lists split on commas and repeat",
			args: []string{"-in", "a.csv,b.xlsx", "-region", "East,West", "-region", "South", "c.csv"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, []string{"a.csv", "b.xlsx", "c.csv"}, o.inputs)
				assert.Equal(t, []string{"East", "West", "South"}, o.regions)
				assert.Equal(t, "none", o.report)
			},
		},
		{
			name: "forecast options",
			args: []string{"-in", "data", "-periods", "14", "-test-size", "0.25", "-report", "html"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, 14, o.periods)
				assert.Equal(t, 0.25, o.testSize)
				assert.Equal(t, "html", o.report)
			},
		},
		{
			name:  "version needs no input",
			args:  []string{"-version"},
			check: func(t *testing.T, o *options) { assert.True(t, o.version) },
		},
		{name: "no input", args: []string{"-periods", "5"}, wantErr: "no input"},
		{name: "unknown report format", args: []string{"-in", "a.csv", "-report", "docx"}, wantErr: "docx"},
		{name: "test size out of range", args: []string{"-in", "a.csv", "-test-size", "1"}, wantErr: "-test-size"},
		{name: "negative periods", args: []string{"-in", "a.csv", "-periods", "-3"}, wantErr: "-periods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestOptions_filterSpec(t *testing.T) {
	t.Run("no criteria", func(t *testing.T) {
		spec, err := (&options{}).filterSpec()
		require.NoError(t, err)
		assert.True(t, spec.IsEmpty())
	})

	t.Run("open ended range", func(t *testing.T) {
		spec, err := (&options{start: "2023-02-01", categories: []string{"Technology"}}).filterSpec()
		require.NoError(t, err)
		require.NotNil(t, spec.DateRange)
		assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), *spec.DateRange.Start)
		assert.Nil(t, spec.DateRange.End)
		assert.Equal(t, []string{"Technology"}, spec.Categories)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := (&options{end: "01/02/2023"}).filterSpec()
		assert.ErrorContains(t, err, "-end")
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := (&options{start: "2023-03-01", end: "2023-02-01"}).filterSpec()
		assert.ErrorContains(t, err, "before")
	})
}

func TestRun(t *testing.T) {
	home := t.TempDir()
	cfg := config.Default()
	cfg.Report.ChromePath = "definitely-not-a-chrome-binary"
	paths, err := config.GetPaths(config.PathsConfig{HomeDir: home})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	input := t.TempDir()
	writeSalesCSV(t, input, "sales.csv", 150)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("forecast, workbook and report", func(t *testing.T) {
		opts, err := parseFlags([]string{
			"-in", input,
			"-periods", "10",
			"-out", "forecast.csv",
			"-excel", "sales.xlsx",
			"-report", "html",
			"-title", "CLI Review",
		}, io.Discard)
		require.NoError(t, err)

		var stdout bytes.Buffer
		require.NoError(t, run(context.Background(), cfg, paths, opts, logger, &stdout))

		out := stdout.String()
		assert.Contains(t, out, "Loaded 150 rows from 1 file(s)")
		assert.Contains(t, out, "Forecast: 10 days")
		assert.Contains(t, out, "RMSE:")

		data, err := os.ReadFile(paths.ExportPath("forecast.csv"))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 11, "header plus one line per forecast day")

		assert.FileExists(t, paths.ExportPath("sales.xlsx"))

		reports, err := filepath.Glob(filepath.Join(paths.ReportsDir, "sales-report_*.html"))
		require.NoError(t, err)
		require.Len(t, reports, 1)
		html, err := os.ReadFile(reports[0])
		require.NoError(t, err)
		assert.Contains(t, string(html), "CLI Review")
	})

	t.Run("filtered below the forecast minimum", func(t *testing.T) {
		opts, err := parseFlags([]string{"-in", input, "-region", "West"}, io.Discard)
		require.NoError(t, err)

		var stdout bytes.Buffer
		err = run(context.Background(), cfg, paths, opts, logger, &stdout)
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "Rows: 38 of 150 after filters")
	})

	t.Run("missing input", func(t *testing.T) {
		opts, err := parseFlags([]string{"-in", filepath.Join(input, "nope.csv")}, io.Discard)
		require.NoError(t, err)
		assert.Error(t, run(context.Background(), cfg, paths, opts, logger, io.Discard))
	})
}
