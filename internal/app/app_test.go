package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/shared/testutil"
)

func testConfig(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.MetricExporter = "none"
	cfg.Report.ChromePath = "definitely-not-a-chrome-binary"

	paths, err := config.GetPaths(config.PathsConfig{HomeDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return cfg, paths
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()
	cfg, paths := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}
	app, err := New(cfg, paths, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return app
}

func salesUpload(t *testing.T, name string, rows int) (*bytes.Buffer, string) {
	t.Helper()

	tbl := testutil.NewSalesTable().Generate(rows, testutil.StandardRow).Build(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", name)
	require.NoError(t, err)
	w := csv.NewWriter(part)
	require.NoError(t, w.WriteAll(tbl.Records()))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNew(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Analytics)
	assert.NotNil(t, app.Health)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.ErrorHandler)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.False(t, app.Analytics.HasSession())
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "liveness check", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "stats", method: http.MethodGet, path: "/api/stats", wantStatus: http.StatusOK},
		{name: "index page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "no dataset yet", method: http.MethodGet, path: "/api/v1/datasets/current", wantStatus: http.StatusConflict},
		{name: "metrics disabled", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/unknown", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/api/v1/summary", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		})
	}
}

func TestApplication_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	body, contentType := salesUpload(t, "sales.csv", 150)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(app, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loaded struct {
		Data struct {
			SessionID string `json:"session_id"`
			Rows      int    `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	assert.NotEmpty(t, loaded.Data.SessionID)
	assert.Equal(t, 150, loaded.Data.Rows)

	t.Run("summary", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/summary", `{"filters": {"regions": ["East"]}}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data struct {
				RowsBefore int `json:"rows_before"`
				RowsAfter  int `json:"rows_after"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 150, resp.Data.RowsBefore)
		assert.Equal(t, 38, resp.Data.RowsAfter)
	})

	t.Run("chart", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/charts/regions", `{}`))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("forecast", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/forecast", `{"periods": 14}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data struct {
				Forecast []json.RawMessage `json:"forecast"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data.Forecast, 14)
	})

	t.Run("forecast on too few rows", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/forecast", `{"filters": {"regions": ["West"]}}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	})

	t.Run("excel export", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/export/excel", `{"include_forecast": true}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
	})

	t.Run("html report", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/report", `{"title": "Quarterly Review"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Quarterly Review")
	})

	t.Run("pdf report without chrome", func(t *testing.T) {
		rec := serve(app, postJSON("/api/v1/report", `{"format": "pdf"}`))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("clear", func(t *testing.T) {
		rec := serve(app, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/current", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, app.Analytics.HasSession())
	})
}

func TestApplication_UploadRejected(t *testing.T) {
	app := newTestApp(t)

	body, contentType := salesUpload(t, "sales.csv", 5)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(app, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "INSUFFICIENT_ROWS", problem["error_code"])
	assert.False(t, app.Analytics.HasSession())
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.Enabled = true
		cfg.Security.RateLimit.RPS = 1
		cfg.Security.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(app, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code,
		"health checks are not throttled")
}

func TestApplication_getCORSConfig(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.Port = 9090
		cfg.Security.AllowedOrigins = []string{"https://dashboard.example.com"}
	})

	cors := app.getCORSConfig()
	assert.Contains(t, cors.AllowedOrigins, "https://dashboard.example.com")
	assert.Contains(t, cors.AllowedOrigins, "http://localhost:9090")
	assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
}

func TestApplication_performStartupHealthCheck(t *testing.T) {
	app := newTestApp(t)
	assert.NoError(t, app.performStartupHealthCheck(context.Background()))
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
}

func TestGenerateBuildID(t *testing.T) {
	assert.Len(t, BuildID, 12)
	assert.Equal(t, BuildID, generateBuildID())
}
