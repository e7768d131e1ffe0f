package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

func kinds(ins []model.Insight) []model.InsightKind {
	out := make([]model.InsightKind, 0, len(ins))
	for _, i := range ins {
		out = append(out, i.Kind)
	}
	return out
}

func find(ins []model.Insight, kind model.InsightKind) (model.Insight, bool) {
	for _, i := range ins {
		if i.Kind == kind {
			return i, true
		}
	}
	return model.Insight{}, false
}

func TestInsights_Empty(t *testing.T) {
	assert.Empty(t, Insights(nil, time.Now()))
}

func TestInsights_OrderAndContent(t *testing.T) {
	now := mustDay(t, "2024-03-20") // Wednesday
	expenses := []model.Expense{
		{ID: "1", Date: "2024-03-20", Category: "Food", Amount: 100, Description: "Groceries"},
		{ID: "2", Date: "2024-03-19", Category: "Transport", Amount: 300, Description: "Fuel"},
		{ID: "3", Date: "2024-03-18", Category: "Bills", Amount: 50},
		{ID: "4", Date: "2024-03-05", Category: "Fun", Amount: 25},
		{ID: "5", Date: "2024-03-06", Category: "", Amount: 25},
		{ID: "6", Date: "2024-02-10", Category: "Food", Amount: 400},
	}

	ins := Insights(expenses, now)
	assert.Equal(t, []model.InsightKind{
		model.InsightTopCategories,
		model.InsightBiggestExpense,
		model.InsightMonthOverMonth,
		model.InsightSpendStreak,
		model.InsightBusiestWeekday,
	}, kinds(ins))

	top := ins[0]
	require.Len(t, top.Categories, 3)
	assert.Equal(t, model.CategoryShare{Category: "Transport", Amount: 300, Percent: 60}, top.Categories[0])
	assert.Equal(t, model.CategoryShare{Category: "Food", Amount: 100, Percent: 20}, top.Categories[1])
	assert.Equal(t, model.CategoryShare{Category: "Bills", Amount: 50, Percent: 10}, top.Categories[2])
	assert.InDelta(t, 500, top.Total, 1e-9)

	require.NotNil(t, ins[1].Expense)
	assert.Equal(t, "2", ins[1].Expense.ID)

	change := ins[2].Change
	require.NotNil(t, change)
	assert.Equal(t, model.DirectionUp, change.Direction)
	assert.Equal(t, 25, change.Percent)
	assert.False(t, change.NoBaseline)

	assert.Equal(t, 3, ins[3].StreakDays)

	// Saturday 2024-02-10 holds 400, the largest single weekday bucket.
	assert.Equal(t, time.Saturday, ins[4].Weekday)
}

func TestInsights_BiggestExpenseTieKeepsFirst(t *testing.T) {
	now := mustDay(t, "2024-03-20")
	expenses := []model.Expense{
		{ID: "first", Date: "2024-03-02", Amount: 70},
		{ID: "second", Date: "2024-03-03", Amount: 70},
		{ID: "old", Date: "2024-02-03", Amount: 900},
	}
	ins, ok := find(Insights(expenses, now), model.InsightBiggestExpense)
	require.True(t, ok)
	assert.Equal(t, "first", ins.Expense.ID)
}

func TestInsights_NothingThisMonth(t *testing.T) {
	now := mustDay(t, "2024-03-20")
	expenses := []model.Expense{{Date: "2024-01-10", Category: "Food", Amount: 10}}
	ins := Insights(expenses, now)
	assert.Equal(t, []model.InsightKind{model.InsightNoSpendStreak, model.InsightBusiestWeekday}, kinds(ins))
	assert.Equal(t, streakWindowDays, ins[0].StreakDays)
}

func TestInsights_MonthOverMonthRollover(t *testing.T) {
	now := mustDay(t, "2025-01-15")
	expenses := []model.Expense{
		{Date: "2025-01-03", Category: "Food", Amount: 500},
		{Date: "2024-11-20", Category: "Food", Amount: 800}, // two months back: not the baseline
	}
	ins, ok := find(Insights(expenses, now), model.InsightMonthOverMonth)
	require.True(t, ok)
	require.NotNil(t, ins.Change)
	assert.True(t, ins.Change.NoBaseline)
	assert.InDelta(t, 500, ins.Change.Current, 1e-9)
	assert.Zero(t, ins.Change.Percent)
	assert.Empty(t, ins.Change.Direction)
}

func TestInsights_MonthOverMonthPreviousYear(t *testing.T) {
	now := mustDay(t, "2025-01-15")
	expenses := []model.Expense{
		{Date: "2025-01-03", Amount: 150},
		{Date: "2024-12-24", Amount: 200},
	}
	ins, ok := find(Insights(expenses, now), model.InsightMonthOverMonth)
	require.True(t, ok)
	assert.Equal(t, model.DirectionDown, ins.Change.Direction)
	assert.Equal(t, 25, ins.Change.Percent)
}

func TestMonthOverMonth(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		ok        bool
		dir       model.Direction
		pct       int
		baseline  bool
	}{
		{"both zero", 0, 0, false, "", 0, false},
		{"new spending", 10, 0, true, "", 0, true},
		{"unchanged", 100, 100, true, model.DirectionUnchanged, 0, false},
		{"down to zero", 0, 80, true, model.DirectionDown, 100, false},
		{"rounding", 101.5, 100, true, model.DirectionUp, 2, false},
		{"tripled", 300, 100, true, model.DirectionUp, 200, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := monthOverMonth(tt.cur, tt.prev)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.dir, ins.Change.Direction)
			assert.Equal(t, tt.pct, ins.Change.Percent)
			assert.Equal(t, tt.baseline, ins.Change.NoBaseline)
		})
	}
}

func TestInsights_StreakExclusivity(t *testing.T) {
	now := mustDay(t, "2024-03-20")
	var expenses []model.Expense
	for i := 0; i < 5; i++ {
		expenses = append(expenses, model.Expense{
			Date:     period.Format(period.AddDays(now, -i)),
			Category: "Food",
			Amount:   10,
		})
	}

	ins := Insights(expenses, now)
	spend, ok := find(ins, model.InsightSpendStreak)
	require.True(t, ok)
	assert.Equal(t, 5, spend.StreakDays)
	_, ok = find(ins, model.InsightNoSpendStreak)
	assert.False(t, ok)
}

func TestStreak(t *testing.T) {
	today := mustDay(t, "2024-03-20")
	days := func(keys ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, k := range keys {
			m[k] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name   string
		spend  map[string]struct{}
		kind   model.InsightKind
		length int
		ok     bool
	}{
		{"one quiet day is not reported", days("2024-03-19"), "", 0, false},
		{"two quiet days", days("2024-03-18"), model.InsightNoSpendStreak, 2, true},
		{"short spend run", days("2024-03-20", "2024-03-19"), "", 0, false},
		{"spend run of three", days("2024-03-20", "2024-03-19", "2024-03-18", "2024-03-16"), model.InsightSpendStreak, 3, true},
		{"spending outside the window", days("2024-01-01"), model.InsightNoSpendStreak, 60, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := streak(tt.spend, today)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.kind, ins.Kind)
				assert.Equal(t, tt.length, ins.StreakDays)
			}
		})
	}
}

func TestBusiestWeekday_TieGoesToLowestIndex(t *testing.T) {
	expenses := []model.Expense{
		{Date: "2024-03-13", Amount: 50}, // Wednesday
		{Date: "2024-03-11", Amount: 50}, // Monday
		{Date: "2024-03-16", Amount: 50}, // Saturday
	}
	ins, ok := busiestWeekday(ByWeekday(expenses))
	require.True(t, ok)
	assert.Equal(t, time.Monday, ins.Weekday)

	_, ok = busiestWeekday(ByWeekday([]model.Expense{{Date: "nope", Amount: 5}}))
	assert.False(t, ok)
}
