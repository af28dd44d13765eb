// Package watermark reads the sync resume state from storage: the instrument
// universe and the latest persisted date per symbol.
package watermark

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EpochFloor is the resume point for symbols with no stored history. Fetch
// windows for such symbols start here rather than erroring.
var EpochFloor = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Tracker answers read-only questions about persisted sync state. It holds no
// state of its own; results are computed fresh on every call and are safe to
// cache for the duration of one Run.
type Tracker struct {
	db *pgxpool.Pool
}

// NewTracker creates a Tracker backed by the given pool.
func NewTracker(db *pgxpool.Pool) *Tracker {
	return &Tracker{db: db}
}

// Symbols returns the instrument universe in deterministic order.
func (t *Tracker) Symbols(ctx context.Context) ([]string, error) {
	rows, err := t.db.Query(ctx, `SELECT symbol FROM companies ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}

	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect symbols: %w", err)
	}
	return symbols, nil
}

// Watermarks returns the latest persisted bar date per symbol. Symbols with
// no stored rows are absent from the map.
func (t *Tracker) Watermarks(ctx context.Context) (map[string]time.Time, error) {
	rows, err := t.db.Query(ctx, `SELECT symbol, MAX(date) FROM stock_bars GROUP BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query watermarks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]time.Time)
	for rows.Next() {
		var symbol string
		var maxDate time.Time
		if err := rows.Scan(&symbol, &maxDate); err != nil {
			return nil, fmt.Errorf("scan watermark: %w", err)
		}
		marks[symbol] = maxDate.UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read watermarks: %w", err)
	}
	return marks, nil
}
