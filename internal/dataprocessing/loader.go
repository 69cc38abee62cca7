package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Encoding names a character encoding the CSV loader can read
type Encoding string

const (
	EncodingUTF8     Encoding = "UTF-8"
	EncodingShiftJIS Encoding = "Shift-JIS"
	EncodingCP932    Encoding = "CP932"
	EncodingISO88591 Encoding = "ISO-8859-1"
	EncodingLatin1   Encoding = "Latin-1"
)

// encodingOrder is the order in which encodings are attempted.
// x/text's ShiftJIS decoder implements the Windows-31J superset, so the
// Shift-JIS and CP932 attempts share it; Latin-1 is ISO-8859-1.
var encodingOrder = []struct {
	name    Encoding
	decoder encoding.Encoding
}{
	{EncodingUTF8, nil},
	{EncodingShiftJIS, japanese.ShiftJIS},
	{EncodingCP932, japanese.ShiftJIS},
	{EncodingISO88591, charmap.ISO8859_1},
	{EncodingLatin1, charmap.ISO8859_1},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadResult is a loaded raw table with its provenance
type LoadResult struct {
	Source   string
	Encoding Encoding
	Table    *domain.Table
}

// Loader reads raw tables from CSV and XLSX sources
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader; a nil logger uses slog.Default()
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// LoadCSV reads delimited text, trying encodings in a fixed order. The first
// encoding that decodes without replacement characters wins.
func (l *Loader) LoadCSV(r io.Reader) (*domain.Table, Encoding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", apperrors.NewParsingError("failed to read CSV input", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	for _, enc := range encodingOrder {
		text, ok := decode(data, enc.decoder)
		if !ok {
			l.logger.Debug("encoding rejected", slog.String("encoding", string(enc.name)))
			continue
		}

		table, err := parseCSV(text)
		if err != nil {
			return nil, enc.name, err
		}
		l.logger.Info("CSV loaded",
			slog.String("encoding", string(enc.name)),
			slog.Int("rows", table.Len()),
			slog.Int("columns", table.Width()))
		return table, enc.name, nil
	}

	names := make([]string, len(encodingOrder))
	for i, p := range encodingOrder {
		names[i] = string(p.name)
	}
	return nil, "", apperrors.NewValidationError(apperrors.CodeUnreadableEncoding,
		fmt.Sprintf("could not decode file; tried encodings: %s", strings.Join(names, ", ")))
}

func decode(data []byte, enc encoding.Encoding) (string, bool) {
	if enc == nil {
		return string(data), utf8.Valid(data)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func parseCSV(text string) (*domain.Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed CSV", err)
	}
	if len(records) == 0 {
		return domain.NewTable(nil, nil)
	}
	return buildTable(records[0], records[1:])
}

// buildTable turns a header and string records into a raw table. NA tokens
// load as Missing, short records are padded with Missing and duplicate
// header names get ".1", ".2" suffixes.
func buildTable(header []string, records [][]string) (*domain.Table, error) {
	columns := dedupeHeader(header)

	rows := make([][]domain.Value, 0, len(records))
	for i, rec := range records {
		if len(rec) > len(columns) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("line %d has %d fields, header has %d", i+2, len(rec), len(columns)), nil)
		}
		row := make([]domain.Value, len(columns))
		for j := range columns {
			if j < len(rec) && !IsNAToken(rec[j]) {
				row[j] = domain.String(rec[j])
			}
		}
		rows = append(rows, row)
	}

	table, err := domain.NewTable(columns, rows)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid table shape", err)
	}
	return table, nil
}

func dedupeHeader(header []string) []string {
	taken := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// LoadXLSX reads the first worksheet of a workbook; its first row is the header
func (l *Loader) LoadXLSX(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.NewTable(nil, nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return domain.NewTable(nil, nil)
	}

	table, err := buildTable(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	l.logger.Info("workbook loaded",
		slog.String("sheet", sheets[0]),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()))
	return table, nil
}

// LoadFile dispatches on the file extension
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open", path, err)
	}
	defer f.Close()
	return l.LoadReader(filepath.Base(path), f)
}

// LoadReader loads an already-open source; name supplies the extension
func (l *Loader) LoadReader(name string, r io.Reader) (*LoadResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		table, enc, err := l.LoadCSV(r)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Source: name, Encoding: enc, Table: table}, nil
	case ".xlsx":
		table, err := l.LoadXLSX(r)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Source: name, Table: table}, nil
	default:
		return nil, apperrors.NewValidationError(apperrors.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported file type %q for %s; expected .csv or .xlsx", filepath.Ext(name), name))
	}
}

// LoadFiles loads paths concurrently and returns results in input order
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]*LoadResult, error) {
	results := make([]*LoadResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.LoadFile(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", filepath.Base(path), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
