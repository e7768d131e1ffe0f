package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/source"
)

// syntheticExpenses builds n expenses spread over the last year.
func syntheticExpenses(n int) []model.Expense {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	out := make([]model.Expense, n)
	for i := range out {
		out[i] = model.Expense{
			ID:       fmt.Sprintf("e%06d", i),
			Date:     period.Format(period.AddDays(now, -(i % 365))),
			Category: model.DefaultCategories[i%len(model.DefaultCategories)],
			Amount:   float64(i%500) + 0.25,
		}
	}
	return out
}

func syntheticBudgets() []model.Budget {
	var out []model.Budget
	for _, cat := range model.DefaultCategories {
		out = append(out, model.Budget{
			ID: cat, Scope: model.ScopeCategory, Category: cat,
			PeriodType: model.PeriodMonth, PeriodStart: "2024-06-01", Amount: 10000,
		})
	}
	return append(out,
		model.Budget{ID: "w", Scope: model.ScopeOverall, PeriodType: model.PeriodWeek, PeriodStart: "2024-06-10", Amount: 5000},
		model.Budget{ID: "d", Scope: model.ScopeOverall, PeriodType: model.PeriodDay, PeriodStart: "2024-06-15", Amount: 800},
	)
}

func BenchmarkByCategory(b *testing.B) {
	expenses := syntheticExpenses(50_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ByCategory(expenses)
	}
}

func BenchmarkProgressForAll(b *testing.B) {
	expenses := syntheticExpenses(50_000)
	budgets := syntheticBudgets()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ProgressForAll(budgets, expenses)
	}
}

func BenchmarkInsights(b *testing.B) {
	expenses := syntheticExpenses(50_000)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Insights(expenses, now)
	}
}

func BenchmarkLoad(b *testing.B) {
	dir := b.TempDir()
	expenses := syntheticExpenses(10_000)
	for i, format := range []string{"json", "csv", "yaml"} {
		path := filepath.Join(dir, fmt.Sprintf("part%d.%s", i, format))
		if err := source.WriteFile(path, expenses); err != nil {
			b.Fatal(err)
		}
	}
	files, err := source.ScanDir(dir)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := os.Stat(files[0].Path); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := Load(files, nil)
		if result.FileErrors > 0 {
			b.Fatal(result.Errors[0])
		}
	}
}
