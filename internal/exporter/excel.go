package exporter

import (
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Sheet names of an exported workbook
const (
	SheetData     = "Data"
	SheetSummary  = "Summary"
	SheetForecast = "Forecast"
)

// Workbook is what an Excel export contains. Forecast is optional.
type Workbook struct {
	Data     *domain.Table
	Summary  domain.SalesSummary
	Forecast []domain.ForecastPoint
}

// ExcelExporter writes cleaned tables as .xlsx workbooks
type ExcelExporter struct {
	guard  OutputGuard
	logger *slog.Logger
}

// NewExcelExporter creates an exporter; guard may be nil
func NewExcelExporter(guard OutputGuard, logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{guard: guard, logger: logger.With(slog.String("component", "excel_exporter"))}
}

// Write encodes wb as an .xlsx document to out
func (e *ExcelExporter) Write(out io.Writer, wb Workbook) error {
	if wb.Data == nil || wb.Data.IsEmpty() {
		return apperrors.ErrEmptyData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeResource, apperrors.CodeStorageFailure, "failed to create data sheet", err)
	}
	if err := writeDataSheet(f, wb.Data); err != nil {
		return err
	}
	if err := writeSummarySheet(f, wb.Summary); err != nil {
		return err
	}
	if len(wb.Forecast) > 0 {
		if err := writeForecastSheet(f, wb.Forecast); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeResource, apperrors.CodeStorageFailure, "failed to encode workbook", err)
	}

	e.logger.Info("workbook written",
		slog.Int("rows", wb.Data.Len()),
		slog.Int("columns", wb.Data.Width()),
		slog.Bool("forecast", len(wb.Forecast) > 0))
	return nil
}

// Export writes wb to path after checking the destination is writable
func (e *ExcelExporter) Export(path string, wb Workbook) error {
	if e.guard != nil {
		if err := e.guard.ValidateOutputFile(path); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create", path, err)
	}
	if err := e.Write(file, wb); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("close", path, err)
	}

	e.logger.Info("workbook exported", slog.String("path", path))
	return nil
}

// writeDataSheet streams the table; large exports stay out of memory
func writeDataSheet(f *excelize.File, t *domain.Table) error {
	sw, err := f.NewStreamWriter(SheetData)
	if err != nil {
		return sheetError(SheetData, err)
	}

	header := make([]interface{}, t.Width())
	for j, c := range t.Columns() {
		header[j] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return sheetError(SheetData, err)
	}

	for i := 0; i < t.Len(); i++ {
		row := make([]interface{}, t.Width())
		for j := range row {
			row[j] = cellValue(t.At(i, j))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return sheetError(SheetData, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return sheetError(SheetData, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return sheetError(SheetData, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s domain.SalesSummary) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return sheetError(SheetSummary, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Sales", s.TotalSales},
		{"Total Profit", s.TotalProfit},
		{"Profit Margin (%)", s.ProfitMargin},
		{"Total Orders", s.TotalOrders},
		{"Rows", s.Rows},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return sheetError(SheetSummary, err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 20); err != nil {
		return sheetError(SheetSummary, err)
	}
	return nil
}

func writeForecastSheet(f *excelize.File, points []domain.ForecastPoint) error {
	if _, err := f.NewSheet(SheetForecast); err != nil {
		return sheetError(SheetForecast, err)
	}

	header := []interface{}{ForecastHeaders[0], ForecastHeaders[1]}
	if err := f.SetSheetRow(SheetForecast, "A1", &header); err != nil {
		return sheetError(SheetForecast, err)
	}
	for i, p := range points {
		row := []interface{}{formatDate(p.Date), p.Predicted}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetForecast, cell, &row); err != nil {
			return sheetError(SheetForecast, err)
		}
	}
	return nil
}

func sheetError(sheet string, err error) error {
	return apperrors.NewAppError(apperrors.ErrTypeResource, apperrors.CodeStorageFailure,
		"failed to write sheet "+sheet, err).WithContext("sheet", sheet)
}
