package report

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	apperrors "salespulse/internal/errors"
)

// chromeNames are looked up on PATH when no explicit binary is configured
var chromeNames = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"}

// FindChrome returns the configured binary when it exists, else the first
// Chrome found on PATH
func FindChrome(configured string) (string, bool) {
	if configured != "" {
		if p, err := exec.LookPath(configured); err == nil {
			return p, true
		}
		return "", false
	}
	for _, name := range chromeNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, true
		}
	}
	return "", false
}

// ChromeRenderer prints HTML to PDF in a headless Chrome started per call
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChromeRenderer creates a renderer. An empty execPath lets chromedp
// find the browser.
func NewChromeRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ChromeRenderer{
		execPath: execPath,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "chrome_renderer")),
	}
}

// RenderPDF loads html into a blank page and prints it on A4 with
// backgrounds
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "PDF rendering failed", slog.String("error", err.Error()))
		return nil, apperrors.NewResourceError(apperrors.CodeStorageFailure, "failed to render PDF with Chrome", err)
	}
	return pdf, nil
}
