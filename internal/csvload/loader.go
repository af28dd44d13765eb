// Package csvload imports bulk historical bar data from flat files.
//
// Each file named <SYMBOL>_historical.csv holds one symbol's full history
// with a header row (date,open,high,low,close,volume in any column order,
// any case). Rows pass through the same normalization and per-row upsert
// path as the incremental sync; a bad row or a bad file never stops the
// rest of the import.
package csvload

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rgaleev/stocksync/internal/model"
	"github.com/rgaleev/stocksync/internal/normalize"
	"github.com/rgaleev/stocksync/internal/writer"
)

const fileSuffix = "_historical.csv"

// BarWriter applies normalized bars to storage.
type BarWriter interface {
	Write(ctx context.Context, bars []model.Bar) (writer.Report, error)
}

// FileResult records the outcome of one file.
type FileResult struct {
	File         string
	Symbol       string
	RowsWritten  int
	RowsFailed   int
	RowsRejected int
	Err          error // file-level failure (open, parse, storage unreachable)
}

// Loader imports historical CSV files through a BarWriter.
type Loader struct {
	writer BarWriter
	logger *slog.Logger
}

// New creates a Loader. A nil logger falls back to the default.
func New(w BarWriter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{writer: w, logger: logger}
}

// LoadDir imports every *_historical.csv file in dir. A file that cannot be
// read or parsed is recorded as failed and the remaining files continue.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]FileResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var results []FileResult
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		res := l.loadFile(ctx, filepath.Join(dir, e.Name()))
		if res.Err != nil {
			l.logger.Warn("file import failed", "file", res.File, "error", res.Err)
		} else {
			l.logger.Info("file imported",
				"file", res.File,
				"symbol", res.Symbol,
				"rows_written", res.RowsWritten,
				"rows_failed", res.RowsFailed,
				"rows_rejected", res.RowsRejected,
			)
		}
		results = append(results, res)
	}
	return results, nil
}

// loadFile parses, normalizes, and writes one file.
func (l *Loader) loadFile(ctx context.Context, path string) FileResult {
	name := filepath.Base(path)
	res := FileResult{
		File:   name,
		Symbol: strings.TrimSuffix(name, fileSuffix),
	}

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("open: %w", err)
		return res
	}
	defer f.Close()

	bars, rejected, err := l.parse(f, res.Symbol)
	if err != nil {
		res.Err = fmt.Errorf("parse: %w", err)
		return res
	}
	res.RowsRejected = rejected

	if len(bars) == 0 {
		return res
	}

	report, err := l.writer.Write(ctx, bars)
	res.RowsWritten = report.Written
	res.RowsFailed = len(report.Failures)
	if err != nil {
		res.Err = fmt.Errorf("write: %w", err)
	}
	return res
}

// parse reads the CSV stream into bars, dropping rows with an unparseable
// date or no valid price.
func (l *Loader) parse(r io.Reader, symbol string) (bars []model.Bar, rejected int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["date"]; !ok {
		return nil, 0, fmt.Errorf("no date column in header %v", header)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		date, ok := parseDate(field(record, cols, "date"))
		if !ok {
			rejected++
			continue
		}

		bar := model.Bar{
			Symbol: symbol,
			Date:   date,
			Open:   normalize.Price(field(record, cols, "open")),
			High:   normalize.Price(field(record, cols, "high")),
			Low:    normalize.Price(field(record, cols, "low")),
			Close:  normalize.Price(field(record, cols, "close")),
		}
		if v, ok := normalize.Volume(field(record, cols, "volume")); ok {
			bar.Volume = &v
		}
		if !bar.HasPrice() {
			rejected++
			continue
		}
		bars = append(bars, bar)
	}

	return bars, rejected, nil
}

// field returns the named column's value, or nil when the column is missing
// from the header or the record is short.
func field(record []string, cols map[string]int, name string) any {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return nil
	}
	return record[i]
}

// parseDate accepts the date layouts seen in historical exports.
func parseDate(raw any) (time.Time, bool) {
	s, _ := raw.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, "2006-01-02 15:04:05", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
