// Package report renders the sales analysis report.
//
// The report is an HTML document built from an embedded html/template: a KPI
// block, data quality warnings, insights, the top products, inline SVG
// charts and the forecast with its evaluation metrics. PDF output prints the
// same HTML in headless Chrome through chromedp.
package report
