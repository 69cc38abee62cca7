package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ForecastHeaders is the header row of a forecast CSV
var ForecastHeaders = []string{"Date", "Predicted Sales"}

// OutputGuard checks that a file can be written before any export starts
type OutputGuard interface {
	ValidateOutputFile(path string) error
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	guard  OutputGuard
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. Relative paths resolve
// into the exports directory; guard may be nil.
func NewCSVWriter(paths *config.Paths, guard OutputGuard, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, guard: guard, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options and returns the
// resolved path
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.Resolve(filePath)

	w.logger.Info("writing CSV file",
		slog.String("file_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := w.check(fullPath); err != nil {
		return "", err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return "", apperrors.NewStorageError("open", fullPath, err)
	}
	defer file.Close()

	headers := options.Headers
	if options.Append {
		headers = nil
	}
	if err := EncodeCSV(file, headers, options.Records, options.BOMPrefix && !options.Append); err != nil {
		return "", apperrors.NewStorageError("write", fullPath, err)
	}
	return fullPath, nil
}

// WriteTable streams every column of t, dates as YYYY-MM-DD and Missing as
// empty cells, behind a BOM
func (w *CSVWriter) WriteTable(filePath string, t *domain.Table) (string, error) {
	fullPath := w.Resolve(filePath)
	stream, err := w.CreateStreamWriter(fullPath, t.Columns())
	if err != nil {
		return "", err
	}

	record := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		for j := range record {
			record[j] = t.At(i, j).String()
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", apperrors.NewStorageError("write", fullPath, err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", apperrors.NewStorageError("close", fullPath, err)
	}
	return fullPath, nil
}

// WriteForecast writes future predictions as Date,Predicted Sales behind a
// BOM so spreadsheets detect UTF-8
func (w *CSVWriter) WriteForecast(filePath string, points []domain.ForecastPoint) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   ForecastHeaders,
		Records:   ForecastRecords(points),
		BOMPrefix: true,
	})
}

// ForecastRecords renders forecast points as CSV rows
func ForecastRecords(points []domain.ForecastPoint) [][]string {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{formatDate(p.Date), formatFloat(p.Predicted)}
	}
	return records
}

// EncodeCSV writes an optional BOM, the headers when given, then records
func EncodeCSV(out io.Writer, headers []string, records [][]string, bom bool) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.Resolve(filePath)

	w.logger.Info("creating CSV stream writer",
		slog.String("file_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := w.check(fullPath); err != nil {
		return nil, err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError("create", fullPath, err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, apperrors.NewStorageError("write BOM to", fullPath, err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError("write headers to", fullPath, err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// Resolve maps a relative path into the exports directory
func (w *CSVWriter) Resolve(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.ExportPath(filePath)
}

func (w *CSVWriter) check(fullPath string) error {
	if w.guard != nil {
		return w.guard.ValidateOutputFile(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.NewResourceError(apperrors.CodeOutputUnwritable,
			fmt.Sprintf("cannot create directory for %s", fullPath), err)
	}
	return nil
}
