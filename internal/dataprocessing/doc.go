// Package dataprocessing turns raw sales exports into trusted tables.
//
// # Pipeline
//
// The stages run in order and never modify their input:
//
//	files → Loader → MergeTables → Validator → Cleaner → FilterEngine → Summarizer
//
//  1. Loader reads CSV (probing UTF-8, Shift-JIS, CP932, ISO-8859-1 and
//     Latin-1) and XLSX files into raw tables of text cells.
//  2. Validator.Validate fails fast on empty input, too few rows or missing
//     required columns and returns a ValidatedTable.
//  3. Validator.CheckQuality collects advisory warnings. They never fail.
//  4. Cleaner.Clean parses dates, coerces numbers and removes exact
//     duplicates, returning a CleanedTable and a CleaningReport.
//  5. FilterEngine.Apply subsets rows by date range, category,
//     sub-category, region and segment.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	res, err := loader.LoadFile("orders.csv")
//	if err != nil {
//	    return err
//	}
//	validated, err := validator.Validate(res.Table)
//	if err != nil {
//	    return err // *errors.AppError with a VALIDATION type
//	}
//	warnings := validator.CheckQuality(validated)
//	cleaned, report := dataprocessing.NewCleaner(logger).Clean(validated)
//
// # Missing values
//
// Cells that are empty, hold an NA token or fail to parse are
// domain.Missing, never zero.
package dataprocessing
