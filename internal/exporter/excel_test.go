package exporter

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

func workbookTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl, err := domain.NewTable([]string{"Order Date", "Product Name", "Sales"}, [][]domain.Value{
		{domain.Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), domain.String("Pen"), domain.Number(12.5)},
		{domain.Date(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), domain.String("Ink"), domain.Missing()},
	})
	require.NoError(t, err)
	return tbl
}

func TestExcelExporterWrite(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	e := NewExcelExporter(nil, logger)

	var buf bytes.Buffer
	err := e.Write(&buf, Workbook{
		Data:    workbookTable(t),
		Summary: domain.SalesSummary{TotalSales: 12.5, TotalProfit: 2.5, ProfitMargin: 20, TotalOrders: 2, Rows: 2},
		Forecast: []domain.ForecastPoint{
			{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Predicted: 7},
		},
	})
	require.NoError(t, err)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "workbook written")

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetData, SheetSummary, SheetForecast}, f.GetSheetList())

	rows, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Order Date", "Product Name", "Sales"}, rows[0])
	assert.Equal(t, []string{"2024-01-02", "Pen", "12.5"}, rows[1])
	assert.Equal(t, []string{"2024-01-03", "Ink"}, rows[2], "missing cells stay blank")

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Orders", "2"}, summary[4])

	forecast, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Predicted Sales"}, forecast[0])
	assert.Equal(t, []string{"2024-01-04", "7"}, forecast[1])
}

func TestExcelExporterWithoutForecast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter(nil, nil).Write(&buf, Workbook{Data: workbookTable(t)}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetData, SheetSummary}, f.GetSheetList())
}

func TestExcelExporterRejectsEmptyData(t *testing.T) {
	var buf bytes.Buffer
	err := NewExcelExporter(nil, nil).Write(&buf, Workbook{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyData)
}

func TestExcelExporterExport(t *testing.T) {
	guard := validation.NewFileValidator(nil, 0)
	e := NewExcelExporter(guard, nil)

	path := filepath.Join(t.TempDir(), "exports", "sales.xlsx")
	require.NoError(t, e.Export(path, Workbook{Data: workbookTable(t)}))
	assert.FileExists(t, path)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	err := e.Export(filepath.Join(blocker, "sales.xlsx"), Workbook{Data: workbookTable(t)})
	assert.ErrorIs(t, err, apperrors.ErrOutputUnwritable)
}
