package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

// Fixed state thresholds on the unclamped spent/limit ratio.
const (
	NearThreshold = 0.8
	OverThreshold = 1.0
)

// Validation errors returned by ValidateBudget.
var (
	ErrBudgetAmount       = errors.New("amount must be greater than 0")
	ErrBudgetCategory     = errors.New("select a category for per-category budgets")
	ErrBudgetScope        = errors.New("unknown budget scope")
	ErrBudgetPeriodType   = errors.New("unknown budget period type")
	ErrBudgetPeriodStart  = errors.New("period start must be a YYYY-MM-DD date")
	errUnparseableExpense = errors.New("unparseable expense date")
)

// dated is an expense with its period keys resolved once.
type dated struct {
	day      string
	week     string
	month    string
	category string
	amount   float64
}

func resolve(e model.Expense) (dated, error) {
	d, ok := period.Parse(e.Date)
	if !ok {
		return dated{}, errUnparseableExpense
	}
	return dated{
		day:      period.Format(d),
		week:     period.Format(period.WeekStart(d)),
		month:    period.Format(period.MonthStart(d)),
		category: e.EffectiveCategory(),
		amount:   amountOf(e),
	}, nil
}

// budgetKey is the period key an expense must produce to fall in b's period.
// ok is false when the budget can never match anything.
func budgetKey(b model.Budget) (string, bool) {
	start, ok := period.Parse(b.PeriodStart)
	if !ok {
		return "", false
	}
	switch b.PeriodType {
	case model.PeriodDay, model.PeriodWeek:
		return period.Format(start), true
	case model.PeriodMonth:
		return period.Format(period.MonthStart(start)), true
	}
	return "", false
}

func matchResolved(x dated, b model.Budget, key string) bool {
	var inPeriod bool
	switch b.PeriodType {
	case model.PeriodDay:
		inPeriod = x.day == key
	case model.PeriodWeek:
		inPeriod = x.week == key
	case model.PeriodMonth:
		inPeriod = x.month == key
	}
	if !inPeriod {
		return false
	}

	switch b.Scope {
	case model.ScopeOverall:
		return true
	case model.ScopeCategory:
		return x.category == model.EffectiveCategory(b.Category)
	}
	return false
}

// Matches reports whether expense e counts against budget b. Expenses without
// a usable date, budgets without a period start, and unknown scopes or period
// types never match.
func Matches(e model.Expense, b model.Budget) bool {
	key, ok := budgetKey(b)
	if !ok {
		return false
	}
	x, err := resolve(e)
	if err != nil {
		return false
	}
	return matchResolved(x, b, key)
}

// Classify maps an unclamped ratio to a budget state.
func Classify(ratio float64) model.State {
	switch {
	case ratio >= OverThreshold:
		return model.StateOver
	case ratio >= NearThreshold:
		return model.StateNear
	}
	return model.StateOK
}

func progress(b model.Budget, spent float64) model.BudgetProgress {
	limit := model.ToAmount(b.Amount)
	var ratio float64
	if limit > 0 {
		ratio = spent / limit
	}
	clamped := ratio
	if clamped > 1 {
		clamped = 1
	}
	if clamped < 0 {
		clamped = 0
	}
	return model.BudgetProgress{
		Budget:   b,
		Spent:    spent,
		Ratio:    ratio,
		Progress: clamped,
		State:    Classify(ratio),
	}
}

// ProgressFor sums the expenses matching b and classifies the result.
func ProgressFor(b model.Budget, expenses []model.Expense) model.BudgetProgress {
	var spent float64
	if key, ok := budgetKey(b); ok {
		for _, e := range expenses {
			x, err := resolve(e)
			if err != nil {
				continue
			}
			if matchResolved(x, b, key) {
				spent += x.amount
			}
		}
	}
	return progress(b, spent)
}

// ProgressForAll evaluates every budget against the same expense snapshot,
// returning results in budget order. Expense dates are resolved once.
func ProgressForAll(budgets []model.Budget, expenses []model.Expense) []model.BudgetProgress {
	out := make([]model.BudgetProgress, 0, len(budgets))
	if len(budgets) == 0 {
		return out
	}

	resolved := make([]dated, 0, len(expenses))
	for _, e := range expenses {
		if x, err := resolve(e); err == nil {
			resolved = append(resolved, x)
		}
	}

	for _, b := range budgets {
		var spent float64
		if key, ok := budgetKey(b); ok {
			for _, x := range resolved {
				if matchResolved(x, b, key) {
					spent += x.amount
				}
			}
		}
		out = append(out, progress(b, spent))
	}
	return out
}

// CountByState tallies progress results per state.
func CountByState(progress []model.BudgetProgress) map[model.State]int {
	counts := make(map[model.State]int, 3)
	for _, p := range progress {
		counts[p.State]++
	}
	return counts
}

// NormalizeBudget fills the defaults a stored row may be missing: scope
// overall and period type month. Non-category budgets drop their category.
func NormalizeBudget(b model.Budget) model.Budget {
	if b.Scope == "" {
		b.Scope = model.ScopeOverall
	}
	if b.PeriodType == "" {
		b.PeriodType = model.PeriodMonth
	}
	if b.Scope != model.ScopeCategory {
		b.Category = ""
	}
	b.PeriodStart = strings.TrimSpace(b.PeriodStart)
	return b
}

// ValidateBudget checks a budget before it is saved.
func ValidateBudget(b model.Budget) error {
	if !(model.ToAmount(b.Amount) > 0) {
		return ErrBudgetAmount
	}
	if !b.Scope.Valid() {
		return fmt.Errorf("%w: %q", ErrBudgetScope, b.Scope)
	}
	if b.Scope == model.ScopeCategory && strings.TrimSpace(b.Category) == "" {
		return ErrBudgetCategory
	}
	if !b.PeriodType.Valid() {
		return fmt.Errorf("%w: %q", ErrBudgetPeriodType, b.PeriodType)
	}
	if _, ok := period.Parse(b.PeriodStart); !ok {
		return fmt.Errorf("%w: %q", ErrBudgetPeriodStart, b.PeriodStart)
	}
	return nil
}

// PeriodStartFor derives the canonical period start for a period type from
// any date inside the period: the date itself for days, its Monday for weeks
// and the first of the month for months.
func PeriodStartFor(pt model.PeriodType, date time.Time) string {
	d := period.Day(date)
	switch pt {
	case model.PeriodWeek:
		return period.Format(period.WeekStart(d))
	case model.PeriodMonth:
		return period.Format(period.MonthStart(d))
	}
	return period.Format(d)
}

// PeriodLabel renders a budget's period for display.
func PeriodLabel(b model.Budget) string {
	if strings.TrimSpace(b.PeriodStart) == "" {
		return "-"
	}
	d, ok := period.Parse(b.PeriodStart)
	if !ok {
		return b.PeriodStart
	}
	switch b.PeriodType {
	case model.PeriodDay:
		return d.Format("2 Jan 2006")
	case model.PeriodWeek:
		return "Week of " + d.Format("2 Jan 2006")
	case model.PeriodMonth:
		return d.Format("January 2006")
	}
	return b.PeriodStart
}

// IsCurrent reports whether now falls inside b's period.
func IsCurrent(b model.Budget, now time.Time) bool {
	key, ok := budgetKey(b)
	if !ok {
		return false
	}
	return PeriodStartFor(b.PeriodType, now) == key
}

// SortBudgets orders budgets by period type, then newest period first.
// It sorts in place.
func SortBudgets(budgets []model.Budget) {
	sort.SliceStable(budgets, func(i, j int) bool {
		if budgets[i].PeriodType != budgets[j].PeriodType {
			return budgets[i].PeriodType < budgets[j].PeriodType
		}
		return budgets[i].PeriodStart > budgets[j].PeriodStart
	})
}
