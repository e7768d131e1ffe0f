package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func monthBudget(start string, amount float64) model.Budget {
	return model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: start, Amount: amount}
}

func TestMatches_Periods(t *testing.T) {
	tests := []struct {
		name   string
		budget model.Budget
		date   string
		want   bool
	}{
		{"day exact", model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodDay, PeriodStart: "2024-03-13"}, "2024-03-13", true},
		{"day other", model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodDay, PeriodStart: "2024-03-13"}, "2024-03-14", false},
		{"week same", model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodWeek, PeriodStart: "2024-03-11"}, "2024-03-17", true},
		{"week next monday", model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodWeek, PeriodStart: "2024-03-11"}, "2024-03-18", false},
		{"week start not monday", model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodWeek, PeriodStart: "2024-03-13"}, "2024-03-13", false},
		{"month last day", monthBudget("2024-05-01", 1), "2024-05-31", true},
		{"month next", monthBudget("2024-05-01", 1), "2024-06-01", false},
		{"month start not first", monthBudget("2024-05-20", 1), "2024-05-02", true},
		{"month other year", monthBudget("2024-05-01", 1), "2023-05-10", false},
		{"no expense date", monthBudget("2024-05-01", 1), "", false},
		{"malformed expense date", monthBudget("2024-05-01", 1), "05/10/2024", false},
		{"no period start", monthBudget("", 1), "2024-05-10", false},
		{"unknown period type", model.Budget{Scope: model.ScopeOverall, PeriodType: "year", PeriodStart: "2024-01-01"}, "2024-01-01", false},
		{"unknown scope", model.Budget{Scope: "team", PeriodType: model.PeriodMonth, PeriodStart: "2024-01-01"}, "2024-01-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matches(exp(tt.date, "Food", 1), tt.budget)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_CategoryScope(t *testing.T) {
	food := model.Budget{Scope: model.ScopeCategory, Category: "Food", PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01"}
	assert.True(t, Matches(exp("2024-03-05", "Food", 1), food))
	assert.False(t, Matches(exp("2024-03-05", "Transport", 1), food))
	assert.False(t, Matches(exp("2024-03-05", "", 1), food))

	// A category budget without a category behaves as "Other".
	other := model.Budget{Scope: model.ScopeCategory, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01"}
	assert.True(t, Matches(exp("2024-03-05", "", 1), other))
	assert.True(t, Matches(exp("2024-03-05", model.OtherCategory, 1), other))
	assert.False(t, Matches(exp("2024-03-05", "Food", 1), other))

	// Overall ignores category entirely.
	overall := model.Budget{Scope: model.ScopeOverall, Category: "Food", PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01"}
	assert.True(t, Matches(exp("2024-03-05", "Transport", 1), overall))
}

func TestProgressFor_Thresholds(t *testing.T) {
	tests := []struct {
		spent        float64
		wantState    model.State
		wantProgress float64
		wantRatio    float64
	}{
		{0, model.StateOK, 0, 0},
		{799.99, model.StateOK, 0.79999, 0.79999},
		{800, model.StateNear, 0.8, 0.8},
		{999.99, model.StateNear, 0.99999, 0.99999},
		{1000, model.StateOver, 1, 1},
		{1500, model.StateOver, 1, 1.5},
	}
	for _, tt := range tests {
		b := monthBudget("2024-03-01", 1000)
		got := ProgressFor(b, []model.Expense{exp("2024-03-10", "Food", tt.spent)})
		assert.Equalf(t, tt.wantState, got.State, "spent %.2f", tt.spent)
		assert.InDeltaf(t, tt.wantProgress, got.Progress, 1e-9, "spent %.2f progress", tt.spent)
		assert.InDeltaf(t, tt.wantRatio, got.Ratio, 1e-9, "spent %.2f ratio", tt.spent)
		assert.InDelta(t, tt.spent, got.Spent, 1e-9)
	}
}

func TestProgressFor_DegenerateLimit(t *testing.T) {
	for _, amount := range []float64{0, -50} {
		b := monthBudget("2024-03-01", amount)
		got := ProgressFor(b, []model.Expense{exp("2024-03-10", "Food", 300)})
		assert.Equal(t, model.StateOK, got.State)
		assert.InDelta(t, 300, got.Spent, 1e-9)
		assert.Zero(t, got.Ratio)
		assert.Zero(t, got.Progress)
	}
}

func TestProgressFor_EndToEnd(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-01", "Food", 100),
		exp("2024-03-02", "Food", 50),
		exp("2024-04-01", "Transport", 200),
	}
	b := model.Budget{
		Scope:       model.ScopeCategory,
		Category:    "Food",
		PeriodType:  model.PeriodMonth,
		PeriodStart: "2024-03-01",
		Amount:      120,
	}
	got := ProgressFor(b, expenses)
	assert.InDelta(t, 150, got.Spent, 1e-9)
	assert.InDelta(t, 1.25, got.Ratio, 1e-9)
	assert.InDelta(t, 1, got.Progress, 1e-9)
	assert.Equal(t, model.StateOver, got.State)
	assert.Equal(t, b, got.Budget)
}

func TestProgressForAll(t *testing.T) {
	expenses := []model.Expense{
		exp("2024-03-01", "Food", 100),
		exp("2024-03-12", "Food", 50),
		{Date: "2024-03-12", Category: "Food", Amount: 0}, // zero-amount rows change nothing
	}
	budgets := []model.Budget{
		{ID: "w", Scope: model.ScopeOverall, PeriodType: model.PeriodWeek, PeriodStart: "2024-03-11", Amount: 60},
		{ID: "m", Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01", Amount: 1000},
		{ID: "d", Scope: model.ScopeOverall, PeriodType: model.PeriodDay, PeriodStart: "2024-03-01", Amount: 100},
		{ID: "x", Scope: "bogus", PeriodType: model.PeriodDay, PeriodStart: "2024-03-01", Amount: 100},
	}

	got := ProgressForAll(budgets, expenses)
	require.Len(t, got, 4)
	assert.Equal(t, "w", got[0].Budget.ID)
	assert.Equal(t, model.StateNear, got[0].State)
	assert.Equal(t, "m", got[1].Budget.ID)
	assert.Equal(t, model.StateOK, got[1].State)
	assert.Equal(t, model.StateOver, got[2].State)
	assert.Zero(t, got[3].Spent)

	for i, b := range budgets {
		single := ProgressFor(b, expenses)
		assert.Equal(t, single, got[i], "ProgressForAll and ProgressFor disagree for %s", b.ID)
	}

	counts := CountByState(got)
	assert.Equal(t, 2, counts[model.StateOK])
	assert.Equal(t, 1, counts[model.StateNear])
	assert.Equal(t, 1, counts[model.StateOver])
}

func TestProgressForAll_EmptyInputs(t *testing.T) {
	got := ProgressForAll(nil, []model.Expense{exp("2024-03-01", "Food", 1)})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = ProgressForAll([]model.Budget{monthBudget("2024-03-01", 10), monthBudget("2024-03-01", 0)}, nil)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Zero(t, p.Spent)
		assert.Equal(t, model.StateOK, p.State)
	}
}

func TestValidateBudget(t *testing.T) {
	valid := model.Budget{Scope: model.ScopeOverall, PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01", Amount: 100}
	require.NoError(t, ValidateBudget(valid))

	noAmount := valid
	noAmount.Amount = 0
	assert.ErrorIs(t, ValidateBudget(noAmount), ErrBudgetAmount)

	noCategory := valid
	noCategory.Scope = model.ScopeCategory
	assert.ErrorIs(t, ValidateBudget(noCategory), ErrBudgetCategory)

	badScope := valid
	badScope.Scope = "team"
	assert.ErrorIs(t, ValidateBudget(badScope), ErrBudgetScope)

	badPeriod := valid
	badPeriod.PeriodType = "year"
	assert.ErrorIs(t, ValidateBudget(badPeriod), ErrBudgetPeriodType)

	badStart := valid
	badStart.PeriodStart = "March"
	assert.ErrorIs(t, ValidateBudget(badStart), ErrBudgetPeriodStart)
}

func TestNormalizeBudget(t *testing.T) {
	got := NormalizeBudget(model.Budget{Category: "Food", PeriodStart: " 2024-03-01 "})
	assert.Equal(t, model.ScopeOverall, got.Scope)
	assert.Equal(t, model.PeriodMonth, got.PeriodType)
	assert.Empty(t, got.Category)
	assert.Equal(t, "2024-03-01", got.PeriodStart)

	kept := NormalizeBudget(model.Budget{Scope: model.ScopeCategory, Category: "Food", PeriodType: model.PeriodDay})
	assert.Equal(t, "Food", kept.Category)
	assert.Equal(t, model.PeriodDay, kept.PeriodType)
}

func TestPeriodStartFor(t *testing.T) {
	d := mustDay(t, "2024-03-13")
	assert.Equal(t, "2024-03-13", PeriodStartFor(model.PeriodDay, d))
	assert.Equal(t, "2024-03-11", PeriodStartFor(model.PeriodWeek, d))
	assert.Equal(t, "2024-03-01", PeriodStartFor(model.PeriodMonth, d))
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "13 Mar 2024", PeriodLabel(model.Budget{PeriodType: model.PeriodDay, PeriodStart: "2024-03-13"}))
	assert.Equal(t, "Week of 11 Mar 2024", PeriodLabel(model.Budget{PeriodType: model.PeriodWeek, PeriodStart: "2024-03-11"}))
	assert.Equal(t, "March 2024", PeriodLabel(model.Budget{PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01"}))
	assert.Equal(t, "-", PeriodLabel(model.Budget{PeriodType: model.PeriodMonth}))
	assert.Equal(t, "soon", PeriodLabel(model.Budget{PeriodType: model.PeriodMonth, PeriodStart: "soon"}))
}

func TestIsCurrent(t *testing.T) {
	now := mustDay(t, "2024-03-13")
	assert.True(t, IsCurrent(monthBudget("2024-03-01", 1), now))
	assert.False(t, IsCurrent(monthBudget("2024-02-01", 1), now))
	assert.True(t, IsCurrent(model.Budget{PeriodType: model.PeriodWeek, PeriodStart: "2024-03-11"}, now))
}

func TestSortBudgets(t *testing.T) {
	budgets := []model.Budget{
		{ID: "m1", PeriodType: model.PeriodMonth, PeriodStart: "2024-01-01"},
		{ID: "w1", PeriodType: model.PeriodWeek, PeriodStart: "2024-03-04"},
		{ID: "m2", PeriodType: model.PeriodMonth, PeriodStart: "2024-03-01"},
		{ID: "d1", PeriodType: model.PeriodDay, PeriodStart: "2024-03-13"},
	}
	SortBudgets(budgets)
	got := make([]string, 0, len(budgets))
	for _, b := range budgets {
		got = append(got, b.ID)
	}
	assert.Equal(t, []string{"d1", "m2", "m1", "w1"}, got)
}
