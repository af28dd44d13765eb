package writer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rgaleev/stocksync/internal/model"
)

// fakeExecer fails specific calls: rowErrs maps the 0-based call index to the
// error Exec returns for it.
type fakeExecer struct {
	calls   int
	sqls    []string
	args    [][]any
	rowErrs map[int]error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	idx := f.calls
	f.calls++
	f.sqls = append(f.sqls, sql)
	f.args = append(f.args, args)
	if err, ok := f.rowErrs[idx]; ok {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func testBar(symbol string, day int) model.Bar {
	v := int64(1000 * day)
	return model.Bar{
		Symbol: symbol,
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   decimal.NullDecimal{Decimal: decimal.NewFromFloat(100.5), Valid: true},
		Close:  decimal.NullDecimal{Decimal: decimal.NewFromFloat(101.25), Valid: true},
		Volume: &v,
	}
}

func TestBarWriter_Write(t *testing.T) {
	db := &fakeExecer{}
	w := NewBarWriter(db, nil)

	bars := []model.Bar{testBar("AAPL", 2), testBar("AAPL", 3)}
	report, err := w.Write(context.Background(), bars)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if report.Written != 2 {
		t.Errorf("Written = %d, want 2", report.Written)
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
	if db.calls != 2 {
		t.Errorf("Exec calls = %d, want 2", db.calls)
	}
	if got := db.args[0][0]; got != "AAPL" {
		t.Errorf("first arg = %v, want AAPL", got)
	}
}

// The statement must be a true upsert keyed on (symbol, date): re-writing an
// existing key overwrites all five measurement columns in place instead of
// duplicating the row.
func TestBarWriter_UpsertStatementShape(t *testing.T) {
	db := &fakeExecer{}
	w := NewBarWriter(db, nil)

	if _, err := w.Write(context.Background(), []model.Bar{testBar("AAPL", 2)}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if len(db.sqls) != 1 {
		t.Fatalf("statements executed = %d, want 1", len(db.sqls))
	}

	sql := db.sqls[0]
	for _, want := range []string{
		"INSERT INTO stock_bars (symbol, date, open, high, low, close, volume)",
		"ON CONFLICT (symbol, date) DO UPDATE SET",
		"open = EXCLUDED.open",
		"high = EXCLUDED.high",
		"low = EXCLUDED.low",
		"close = EXCLUDED.close",
		"volume = EXCLUDED.volume",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("statement missing %q:\n%s", want, sql)
		}
	}
}

func TestBarWriter_RowFailureIsolation(t *testing.T) {
	// Row 3 of 5 violates a constraint; the other four must still commit.
	db := &fakeExecer{rowErrs: map[int]error{
		2: &pgconn.PgError{Code: "23514", Message: "value out of range"},
	}}
	w := NewBarWriter(db, nil)

	var bars []model.Bar
	for day := 1; day <= 5; day++ {
		bars = append(bars, testBar("MSFT", day))
	}

	report, err := w.Write(context.Background(), bars)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if report.Written != 4 {
		t.Errorf("Written = %d, want 4", report.Written)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("len(Failures) = %d, want 1", len(report.Failures))
	}
	f := report.Failures[0]
	if f.Symbol != "MSFT" || !f.Date.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("failure recorded for %s %v, want MSFT 2024-01-03", f.Symbol, f.Date)
	}
	if f.Reason != "value out of range" {
		t.Errorf("Reason = %q, want %q", f.Reason, "value out of range")
	}
	if db.calls != 5 {
		t.Errorf("Exec calls = %d, want 5 (no early abort)", db.calls)
	}
}

func TestBarWriter_TotalFailure(t *testing.T) {
	// A non-PgError means storage is unreachable: stop and surface it.
	connErr := errors.New("connection refused")
	db := &fakeExecer{rowErrs: map[int]error{1: connErr}}
	w := NewBarWriter(db, nil)

	bars := []model.Bar{testBar("GOOG", 1), testBar("GOOG", 2), testBar("GOOG", 3)}
	report, err := w.Write(context.Background(), bars)
	if !errors.Is(err, connErr) {
		t.Fatalf("err = %v, want wrapped %v", err, connErr)
	}
	if report.Written != 1 {
		t.Errorf("Written = %d, want 1 (rows before the outage stay applied)", report.Written)
	}
	if db.calls != 2 {
		t.Errorf("Exec calls = %d, want 2 (no attempts after the outage)", db.calls)
	}
}

func TestBarWriter_EmptyBatch(t *testing.T) {
	db := &fakeExecer{}
	report, err := NewBarWriter(db, nil).Write(context.Background(), nil)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if report.Written != 0 || len(report.Failures) != 0 || db.calls != 0 {
		t.Errorf("empty batch produced report %+v with %d calls", report, db.calls)
	}
}
