package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rgaleev/stocksync/internal/model"
)

const upsertBar = `
	INSERT INTO stock_bars (symbol, date, open, high, low, close, volume)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (symbol, date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume`

// Execer is the slice of pgxpool.Pool the writer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RowFailure describes one row the storage engine rejected.
type RowFailure struct {
	Symbol string
	Date   time.Time
	Reason string
}

// Report summarizes one Write call.
type Report struct {
	Written  int
	Failures []RowFailure
}

// BarWriter upserts bars keyed on (symbol, date).
type BarWriter struct {
	db     Execer
	logger *slog.Logger
}

// NewBarWriter creates a BarWriter. A nil logger falls back to the default.
func NewBarWriter(db Execer, logger *slog.Logger) *BarWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BarWriter{db: db, logger: logger}
}

// Write applies each bar with an independent upsert. Rows the storage engine
// rejects (constraint violation, type mismatch) are recorded in the report
// and the remaining rows still commit. Write returns an error only when
// storage itself is unreachable, in which case the report covers the rows
// attempted so far.
func (w *BarWriter) Write(ctx context.Context, bars []model.Bar) (Report, error) {
	var report Report

	for _, b := range bars {
		_, err := w.db.Exec(ctx, upsertBar,
			b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
		if err == nil {
			report.Written++
			continue
		}

		// A PgError is the server rejecting this one row; anything else
		// means the connection itself is gone.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			report.Failures = append(report.Failures, RowFailure{
				Symbol: b.Symbol,
				Date:   b.Date,
				Reason: pgErr.Message,
			})
			w.logger.Warn("row upsert rejected",
				"symbol", b.Symbol,
				"date", b.Date.Format(time.DateOnly),
				"code", pgErr.Code,
				"error", pgErr.Message,
			)
			continue
		}

		return report, fmt.Errorf("upsert %s %s: %w",
			b.Symbol, b.Date.Format(time.DateOnly), err)
	}

	return report, nil
}
