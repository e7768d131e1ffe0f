package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

// LogFilter narrows the expense log. Zero values disable a criterion.
type LogFilter struct {
	Date      string   // exact YYYY-MM-DD
	Category  string   // exact effective category
	Search    string   // case-insensitive, across description, notes, category and payment method
	MinAmount *float64 // inclusive
	MaxAmount *float64 // inclusive
}

// Active reports whether any criterion is set.
func (f LogFilter) Active() bool {
	return f.Date != "" || f.Category != "" || strings.TrimSpace(f.Search) != "" ||
		f.MinAmount != nil || f.MaxAmount != nil
}

// FilterExpenses applies f and returns the matches in log order.
func FilterExpenses(expenses []model.Expense, f LogFilter) []model.Expense {
	query := strings.ToLower(strings.TrimSpace(f.Search))

	result := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Date != "" && !sameDateKey(e.Date, f.Date) {
			continue
		}
		if f.Category != "" && e.EffectiveCategory() != f.Category {
			continue
		}
		if query != "" && !matchesSearch(e, query) {
			continue
		}
		amt := amountOf(e)
		if f.MinAmount != nil && amt < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && amt > *f.MaxAmount {
			continue
		}
		result = append(result, e)
	}

	SortLog(result)
	return result
}

// SortLog orders expenses newest first: by date, then creation time, then id.
// It sorts in place.
func SortLog(expenses []model.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func matchesSearch(e model.Expense, query string) bool {
	for _, field := range []string{e.Description, e.Notes, e.EffectiveCategory(), e.PaymentMethod} {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func sameDateKey(a, b string) bool {
	da, ok := period.Parse(a)
	if !ok {
		return a == b
	}
	db, ok := period.Parse(b)
	if !ok {
		return false
	}
	return da.Equal(db)
}
