package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSyncState_String(t *testing.T) {
	tests := []struct {
		state SyncState
		want  string
	}{
		{StatePending, "pending"},
		{StateFetching, "fetching"},
		{StateNormalizing, "normalizing"},
		{StateWriting, "writing"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{SyncState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("SyncState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSyncState_Terminal(t *testing.T) {
	for _, s := range []SyncState{StatePending, StateFetching, StateNormalizing, StateWriting} {
		if s.Terminal() {
			t.Errorf("%v.Terminal() = true, want false", s)
		}
	}
	for _, s := range []SyncState{StateDone, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%v.Terminal() = false, want true", s)
		}
	}
}

func TestBar_HasPrice(t *testing.T) {
	var b Bar
	if b.HasPrice() {
		t.Error("empty bar should have no price")
	}
	b.Close = decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}
	if !b.HasPrice() {
		t.Error("bar with a close should report a price")
	}
}
