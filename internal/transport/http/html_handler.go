package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>SalesPulse</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; }
        .info { background-color: #d1ecf1; color: #0c5460; }
        code { background: #f4f4f4; padding: 2px 4px; }
    </style>
</head>
<body>
    <h1>SalesPulse</h1>
    <div class="status info">
        <strong>Version:</strong> {{.Version}}
        <br><strong>Time:</strong> {{.Now}}
    </div>
    <h2>Load a dataset</h2>
    <form action="/api/v1/datasets" method="post" enctype="multipart/form-data">
        <input type="file" name="files" accept=".csv,.xlsx" multiple>
        <button type="submit">Upload</button>
    </form>
    <h2>Endpoints</h2>
    <ul>
        <li><code>GET /api/v1/datasets/current</code></li>
        <li><code>POST /api/v1/summary</code></li>
        <li><code>POST /api/v1/charts/{kind}</code></li>
        <li><code>POST /api/v1/forecast</code></li>
        <li><code>POST /api/v1/export/excel</code></li>
        <li><code>POST /api/v1/report</code></li>
        <li><a href="/api/health">Health Check</a></li>
        <li><a href="/api/version">Version Info</a></li>
        <li><a href="/metrics">Metrics</a></li>
    </ul>
</body>
</html>
`))

// ServeIndex serves the landing page with an upload form and the API routes
func ServeIndex(version string, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		data := struct {
			Version string
			Now     string
		}{
			Version: version,
			Now:     time.Now().Format("2006-01-02 15:04:05"),
		}
		if err := indexTemplate.Execute(w, data); err != nil {
			logger.ErrorContext(r.Context(), "Error rendering page",
				slog.String("error", err.Error()))
			http.Error(w, "Error rendering page", http.StatusInternalServerError)
		}
	}
}
