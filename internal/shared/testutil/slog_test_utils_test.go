package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		assert.Equal(t, 4, handler.Count())
	})

	t.Run("child loggers share the store", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		child := logger.With(slog.String("component", "cleaner"))
		child.Info("table cleaned", slog.Int("rows", 3))

		records := handler.GetRecords()
		if assert.Len(t, records, 1) {
			assert.Equal(t, "cleaner", records[0].Attrs["component"])
			assert.Equal(t, int64(3), records[0].Attrs["rows"])
		}
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})
}

func TestSalesTableBuilder(t *testing.T) {
	tbl := NewSalesTable().
		Add(SalesRow{OrderDate: "2024-01-02", Sales: "10", Profit: "2", Product: "Pen", Region: "East"}).
		Add(SalesRow{OrderDate: "2024-01-03", Sales: "20", Profit: "5", Product: "Ink", Region: "West"}).
		Build(t)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, SalesColumns, tbl.Columns())
	assert.Equal(t, "Ink", tbl.Get(1, "Product Name").String())
	assert.True(t, tbl.Get(0, "Ship Date").IsMissing())
}
