// Package shared holds helpers used across salespulse packages that do not
// belong to any single layer.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger to assert on structured logs
//   - SalesTableBuilder, StandardRow and DailySalesTable fixtures
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    raw := testutil.NewSalesTable().Generate(20, testutil.StandardRow).Build(t)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "table validated")
//	}
package shared
