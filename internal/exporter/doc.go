// Package exporter writes analysis results to files people open in
// spreadsheets.
//
// CSVWriter handles plain CSV output with a UTF-8 BOM so Excel detects the
// encoding, including cleaned tables and forecast files
// (Date,Predicted Sales). ExcelExporter writes a workbook with the cleaned
// data, a KPI summary and, when available, the forecast.
//
// Both check the destination directory is writable before writing anything.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, validator, logger)
//	path, err := w.WriteForecast("forecast.csv", result.Forecast)
//
//	x := exporter.NewExcelExporter(validator, logger)
//	err = x.Export(paths.ExportPath("sales.xlsx"), exporter.Workbook{Data: table, Summary: summary})
package exporter
