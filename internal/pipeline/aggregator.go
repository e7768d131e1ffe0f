// Package pipeline loads expense snapshots and derives rollups, budget
// progress and insights from them. Every derivation is a pure function of its
// inputs: nothing here mutates the slices it is given.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

// amountOf is the single place an expense amount enters any sum.
func amountOf(e model.Expense) float64 {
	return model.ToAmount(e.Amount)
}

// ByCategory sums amounts per effective category, largest total first.
// Categories with equal totals keep the order they were first seen in.
// Dateless expenses are included.
func ByCategory(expenses []model.Expense) []model.CategoryTotal {
	index := make(map[string]int)
	totals := make([]model.CategoryTotal, 0)

	for _, e := range expenses {
		cat := e.EffectiveCategory()
		i, ok := index[cat]
		if !ok {
			i = len(totals)
			index[cat] = i
			totals = append(totals, model.CategoryTotal{Category: cat})
		}
		totals[i].Total += amountOf(e)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals
}

// ByMonth sums amounts per YYYY-MM month in ascending month order.
// Expenses without a usable date are skipped.
func ByMonth(expenses []model.Expense) []model.MonthTotal {
	monthMap := make(map[string]float64)
	for _, e := range expenses {
		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		monthMap[period.MonthKey(d)] += amountOf(e)
	}

	months := make([]model.MonthTotal, 0, len(monthMap))
	for k, v := range monthMap {
		months = append(months, model.MonthTotal{Month: k, Total: v})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})
	return months
}

// ByDay sums amounts per calendar date in ascending date order.
// Expenses without a usable date are skipped.
func ByDay(expenses []model.Expense) []model.DayTotal {
	dayMap := make(map[string]*model.DayTotal)
	for _, e := range expenses {
		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		key := period.Format(d)
		dt, ok := dayMap[key]
		if !ok {
			dt = &model.DayTotal{Date: key}
			dayMap[key] = dt
		}
		dt.Total += amountOf(e)
		dt.Count++
	}

	days := make([]model.DayTotal, 0, len(dayMap))
	for _, dt := range dayMap {
		days = append(days, *dt)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// FillDays returns one DayTotal per date in [since, until], oldest first,
// with zero rows for days without spending so charts show the gaps.
func FillDays(days []model.DayTotal, since, until time.Time) []model.DayTotal {
	byKey := make(map[string]model.DayTotal, len(days))
	for _, d := range days {
		byKey[d.Date] = d
	}

	var out []model.DayTotal
	end := period.Day(until)
	for day := period.Day(since); !day.After(end); day = period.AddDays(day, 1) {
		key := period.Format(day)
		if dt, ok := byKey[key]; ok {
			out = append(out, dt)
		} else {
			out = append(out, model.DayTotal{Date: key})
		}
	}
	return out
}

// ByWeekday sums amounts into seven buckets indexed Sunday (0) to Saturday (6).
func ByWeekday(expenses []model.Expense) []model.WeekdayTotal {
	days := make([]model.WeekdayTotal, 7)
	for i := range days {
		days[i].Weekday = time.Weekday(i)
	}

	for _, e := range expenses {
		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		wd := d.Weekday()
		days[wd].Total += amountOf(e)
		days[wd].Count++
	}
	return days
}

// Dashboard computes the today, this-week, this-month and all-time cards.
// The week runs Monday to Sunday around now.
func Dashboard(expenses []model.Expense, now time.Time) model.PeriodTotals {
	today := period.Day(now)
	todayKey := period.Format(today)
	weekFrom := period.Format(period.WeekStart(today))
	weekTo := period.Format(period.AddDays(period.WeekStart(today), 6))

	var totals model.PeriodTotals
	for _, e := range expenses {
		amt := amountOf(e)
		totals.All.Total += amt
		totals.All.Count++

		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		key := period.Format(d)
		if key == todayKey {
			totals.Today.Total += amt
			totals.Today.Count++
		}
		if key >= weekFrom && key <= weekTo {
			totals.Week.Total += amt
			totals.Week.Count++
		}
		if period.SameMonth(d, today) {
			totals.Month.Total += amt
			totals.Month.Count++
		}
	}
	return totals
}

// Total sums every expense amount.
func Total(expenses []model.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += amountOf(e)
	}
	return sum
}

// FilterByTime returns expenses dated within [since, until], compared by
// calendar day. Zero bounds are open. Dateless expenses are dropped whenever
// a bound is set.
func FilterByTime(expenses []model.Expense, since, until time.Time) []model.Expense {
	if since.IsZero() && until.IsZero() {
		return expenses
	}

	var from, to string
	if !since.IsZero() {
		from = period.Format(period.Day(since))
	}
	if !until.IsZero() {
		to = period.Format(period.Day(until))
	}

	var result []model.Expense
	for _, e := range expenses {
		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		key := period.Format(d)
		if from != "" && key < from {
			continue
		}
		if to != "" && key > to {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByCategory returns expenses whose effective category contains the
// given substring, case-insensitively.
func FilterByCategory(expenses []model.Expense, category string) []model.Expense {
	if category == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.EffectiveCategory(), category) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
