package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

func exp(date, category string, amount float64) model.Expense {
	return model.Expense{Date: date, Category: category, Amount: amount}
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, ok := period.Parse(s)
	require.Truef(t, ok, "parse date %q", s)
	return d
}

func TestByCategory(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-01", "Food", 100),
		exp("2024-03-02", "", 30),
		exp("2024-03-03", "Transport", 50),
		exp("", "Food", 20), // dateless still counts
		exp("2024-03-04", "Bills", 50),
		{Date: "2024-03-05", Amount: math.NaN()},
	}

	got := ByCategory(expenses)
	want := []model.CategoryTotal{
		{Category: "Food", Total: 120},
		{Category: "Transport", Total: 50}, // tie with Bills: first seen wins
		{Category: "Bills", Total: 50},
		{Category: model.OtherCategory, Total: 30},
	}
	assert.Equal(t, want, got)
}

func TestByCategory_EmptyInput(t *testing.T) {
	got := ByCategory(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestByMonth(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-04-01", "Transport", 200),
		exp("2024-03-01", "Food", 100),
		exp("", "Food", 999),
		exp("garbage", "Food", 999),
		exp("2023-12-31", "Food", 5),
		exp("2024-03-02", "Food", 50),
	}
	got := ByMonth(expenses)
	assert.Equal(t, []model.MonthTotal{
		{Month: "2023-12", Total: 5},
		{Month: "2024-03", Total: 150},
		{Month: "2024-04", Total: 200},
	}, got)
}

func TestByDay(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-02", "Food", 50),
		exp("2024-03-01", "Food", 100),
		exp("2024-03-02", "Transport", 25),
		exp("", "Food", 10),
	}
	got := ByDay(expenses)
	assert.Equal(t, []model.DayTotal{
		{Date: "2024-03-01", Total: 100, Count: 1},
		{Date: "2024-03-02", Total: 75, Count: 2},
	}, got)
}

func TestAggregations_AreDeterministic(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-01", "A", 10),
		exp("2024-03-01", "B", 10),
		exp("2024-02-01", "C", 10),
		exp("2024-01-01", "D", 10),
		exp("2024-03-09", "", 10),
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, ByCategory(expenses), ByCategory(expenses))
		assert.Equal(t, ByMonth(expenses), ByMonth(expenses))
		assert.Equal(t, ByDay(expenses), ByDay(expenses))
	}
	assert.Equal(t, "A", ByCategory(expenses)[0].Category)
}

func TestAggregations_DoNotMutateInput(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-02", "B", 1),
		exp("2024-03-01", "A", 2),
	}
	snapshot := append([]model.Expense(nil), expenses...)
	_ = ByCategory(expenses)
	_ = ByMonth(expenses)
	_ = ByDay(expenses)
	_ = ProgressForAll([]model.Budget{{Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01", Amount: 1}}, expenses)
	assert.Equal(t, snapshot, expenses)
}

func TestByWeekday(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-10", "Food", 10), // Sunday
		exp("2024-03-11", "Food", 20), // Monday
		exp("2024-03-18", "Food", 5),  // Monday
		exp("bad", "Food", 100),
	}
	days := ByWeekday(expenses)
	require.Len(t, days, 7)
	assert.Equal(t, time.Sunday, days[0].Weekday)
	assert.InDelta(t, 10, days[time.Sunday].Total, 1e-9)
	assert.InDelta(t, 25, days[time.Monday].Total, 1e-9)
	assert.Equal(t, 2, days[time.Monday].Count)
	assert.Zero(t, days[time.Tuesday].Count)
}

func TestDashboard(t *testing.T) {
	now := mustDay(t, "2024-03-13") // Wednesday
	expenses := []model.Expense{
		exp("2024-03-13", "Food", 10), // today, week, month
		exp("2024-03-11", "Food", 20), // Monday: week, month
		exp("2024-03-17", "Food", 40), // Sunday of this week
		exp("2024-03-10", "Food", 80), // previous Sunday: month only
		exp("2024-02-28", "Food", 160),
		exp("", "Food", 320),
	}
	got := Dashboard(expenses, now)
	assert.Equal(t, model.PeriodTotal{Total: 10, Count: 1}, got.Today)
	assert.Equal(t, model.PeriodTotal{Total: 70, Count: 3}, got.Week)
	assert.Equal(t, model.PeriodTotal{Total: 150, Count: 4}, got.Month)
	assert.Equal(t, model.PeriodTotal{Total: 630, Count: 6}, got.All)
}

func TestFillDays(t *testing.T) {
	days := []model.DayTotal{{Date: "2024-03-02", Total: 5, Count: 1}}
	got := FillDays(days, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-03"))
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.Zero(t, got[0].Total)
	assert.InDelta(t, 5, got[1].Total, 1e-9)
	assert.Equal(t, "2024-03-03", got[2].Date)
}

func TestFilterByTime(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-02-29", "A", 1),
		exp("2024-03-01", "B", 1),
		exp("2024-03-31", "C", 1),
		exp("2024-04-01", "D", 1),
		exp("", "E", 1),
	}
	got := FilterByTime(expenses, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-31"))
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Category)
	assert.Equal(t, "C", got[1].Category)

	assert.Len(t, FilterByTime(expenses, time.Time{}, time.Time{}), 5)
}

func TestFilterByCategory(t *testing.T) {
	expenses := []model.Expense{exp("2024-03-01", "Food", 1), exp("2024-03-01", "", 1), exp("2024-03-01", "Fuel", 1)}
	assert.Len(t, FilterByCategory(expenses, "fo"), 1)
	assert.Len(t, FilterByCategory(expenses, "other"), 1)
	assert.Len(t, FilterByCategory(expenses, ""), 3)
}
