package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToAmount(t *testing.T) {
	f := 12.5
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 42.25, 42.25},
		{"int", 7, 7},
		{"int64", int64(9), 9},
		{"pointer", &f, 12.5},
		{"nil pointer", (*float64)(nil), 0},
		{"numeric string", "1500.75", 1500.75},
		{"padded string", "  20 ", 20},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"thousands separator", "1,000", 0},
		{"json number", json.Number("3.5"), 3.5},
		{"raw number", json.RawMessage(`99.9`), 99.9},
		{"raw string", json.RawMessage(`"250"`), 250},
		{"raw garbage", json.RawMessage(`{"x":1}`), 0},
		{"decimal", decimal.RequireFromString("10.10"), 10.10},
		{"bool", true, 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"negative kept", -5.0, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAmount(tt.in)
			if math.IsNaN(got) {
				t.Fatalf("ToAmount(%v) = NaN", tt.in)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ToAmount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEffectiveCategory(t *testing.T) {
	if got := (Expense{}).EffectiveCategory(); got != OtherCategory {
		t.Errorf("empty category = %q, want %q", got, OtherCategory)
	}
	if got := EffectiveCategory("   "); got != OtherCategory {
		t.Errorf("blank category = %q, want %q", got, OtherCategory)
	}
	if got := EffectiveCategory("Food"); got != "Food" {
		t.Errorf("category = %q, want Food", got)
	}
}

func TestEnums(t *testing.T) {
	if !ScopeOverall.Valid() || !ScopeCategory.Valid() || Scope("team").Valid() {
		t.Error("Scope.Valid mismatch")
	}
	if !PeriodDay.Valid() || !PeriodWeek.Valid() || !PeriodMonth.Valid() || PeriodType("year").Valid() {
		t.Error("PeriodType.Valid mismatch")
	}
	if PeriodWeek.Label() != "Weekly" {
		t.Errorf("PeriodWeek.Label() = %q", PeriodWeek.Label())
	}
}
