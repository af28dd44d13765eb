package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily price/volume observation for a symbol.
//
// Natural key: (Symbol, Date). The storage layer enforces uniqueness on it;
// re-writing the same key overwrites the measurement columns in place.
// Measurement fields are nullable: a price that failed normalization is an
// invalid NullDecimal and is stored as SQL NULL.
type Bar struct {
	Symbol string
	Date   time.Time // calendar date, UTC midnight
	Open   decimal.NullDecimal
	High   decimal.NullDecimal
	Low    decimal.NullDecimal
	Close  decimal.NullDecimal
	Volume *int64 // non-negative when set
}

// HasPrice reports whether at least one of the four price fields is set.
// A bar with no prices at all carries no information and is dropped before
// writing.
func (b Bar) HasPrice() bool {
	return b.Open.Valid || b.High.Valid || b.Low.Valid || b.Close.Valid
}

// SyncState is the per-symbol state machine position within one Run.
// Transitions are strictly forward; Done and Failed are terminal.
type SyncState int

const (
	StatePending SyncState = iota
	StateFetching
	StateNormalizing
	StateWriting
	StateDone
	StateFailed
)

// String returns the lowercase state name.
func (s SyncState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFetching:
		return "fetching"
	case StateNormalizing:
		return "normalizing"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is Done or Failed.
func (s SyncState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// SymbolResult records the outcome of one symbol's work unit.
type SymbolResult struct {
	Symbol       string
	State        SyncState
	RowsWritten  int   // rows upserted successfully
	RowsFailed   int   // rows rejected by storage (row-level write failures)
	RowsRejected int   // rows dropped during normalization
	Err          error // cause when State == StateFailed
}
