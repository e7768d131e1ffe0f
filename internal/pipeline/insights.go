package pipeline

import (
	"math"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

const (
	topCategoryCount = 3
	streakWindowDays = 60
	minNoSpendStreak = 2
	minSpendStreak   = 3
)

// Insights derives the insight feed for the given instant. Each insight is
// present only when there is data behind it, and they are always produced in
// the order: top categories, biggest expense, month-over-month change, streak,
// busiest weekday.
func Insights(expenses []model.Expense, now time.Time) []model.Insight {
	if len(expenses) == 0 {
		return nil
	}

	today := period.Day(now)
	prevMonth := period.PrevMonthStart(today)

	var (
		thisMonth []model.Expense
		prevTotal float64
	)
	spendDays := make(map[string]struct{})

	for _, e := range expenses {
		d, ok := period.Parse(e.Date)
		if !ok {
			continue
		}
		spendDays[period.Format(d)] = struct{}{}
		switch {
		case period.SameMonth(d, today):
			thisMonth = append(thisMonth, e)
		case period.SameMonth(d, prevMonth):
			prevTotal += amountOf(e)
		}
	}

	var out []model.Insight

	cats := ByCategory(thisMonth)
	var monthTotal float64
	for _, c := range cats {
		monthTotal += c.Total
	}

	if ins, ok := topCategories(cats, monthTotal); ok {
		out = append(out, ins)
	}
	if ins, ok := biggestExpense(thisMonth); ok {
		out = append(out, ins)
	}
	if ins, ok := monthOverMonth(monthTotal, prevTotal); ok {
		out = append(out, ins)
	}
	if ins, ok := streak(spendDays, today); ok {
		out = append(out, ins)
	}
	if ins, ok := busiestWeekday(ByWeekday(expenses)); ok {
		out = append(out, ins)
	}
	return out
}

func topCategories(cats []model.CategoryTotal, monthTotal float64) (model.Insight, bool) {
	if len(cats) == 0 {
		return model.Insight{}, false
	}
	n := min(len(cats), topCategoryCount)
	shares := make([]model.CategoryShare, 0, n)
	for _, c := range cats[:n] {
		pct := 0
		if monthTotal > 0 {
			pct = int(math.Round(c.Total / monthTotal * 100))
		}
		shares = append(shares, model.CategoryShare{
			Category: c.Category,
			Amount:   c.Total,
			Percent:  pct,
		})
	}
	return model.Insight{
		Kind:       model.InsightTopCategories,
		Categories: shares,
		Total:      monthTotal,
	}, true
}

// biggestExpense keeps the first expense seen among equal maxima.
func biggestExpense(thisMonth []model.Expense) (model.Insight, bool) {
	if len(thisMonth) == 0 {
		return model.Insight{}, false
	}
	biggest := thisMonth[0]
	for _, e := range thisMonth[1:] {
		if amountOf(e) > amountOf(biggest) {
			biggest = e
		}
	}
	return model.Insight{
		Kind:    model.InsightBiggestExpense,
		Expense: &biggest,
		Total:   amountOf(biggest),
	}, true
}

func monthOverMonth(current, previous float64) (model.Insight, bool) {
	change := model.MonthChange{
		Current:  current,
		Previous: previous,
		Diff:     current - previous,
	}

	switch {
	case previous > 0:
		change.Percent = int(math.Round(math.Abs(change.Diff) / previous * 100))
		switch {
		case change.Diff > 0:
			change.Direction = model.DirectionUp
		case change.Diff < 0:
			change.Direction = model.DirectionDown
		default:
			change.Direction = model.DirectionUnchanged
		}
	case current > 0:
		change.NoBaseline = true
	default:
		return model.Insight{}, false
	}

	return model.Insight{
		Kind:   model.InsightMonthOverMonth,
		Change: &change,
		Total:  current,
	}, true
}

// streak reports the current no-spend run when it is long enough. Only when
// today itself has spending does it look for a spend run instead.
func streak(spendDays map[string]struct{}, today time.Time) (model.Insight, bool) {
	noSpend := countRun(spendDays, today, false)
	if noSpend >= minNoSpendStreak {
		return model.Insight{Kind: model.InsightNoSpendStreak, StreakDays: noSpend}, true
	}
	if noSpend > 0 {
		return model.Insight{}, false
	}

	spend := countRun(spendDays, today, true)
	if spend >= minSpendStreak {
		return model.Insight{Kind: model.InsightSpendStreak, StreakDays: spend}, true
	}
	return model.Insight{}, false
}

// countRun counts consecutive days ending at today whose has-spending status
// equals want, looking back at most streakWindowDays days.
func countRun(spendDays map[string]struct{}, today time.Time, want bool) int {
	n := 0
	for i := 0; i < streakWindowDays; i++ {
		_, has := spendDays[period.Format(period.AddDays(today, -i))]
		if has != want {
			break
		}
		n++
	}
	return n
}

// busiestWeekday picks the weekday with the largest total among weekdays that
// have at least one expense. Ties go to the lowest index (Sunday first).
func busiestWeekday(days []model.WeekdayTotal) (model.Insight, bool) {
	best := -1
	for i, d := range days {
		if d.Count == 0 {
			continue
		}
		if best < 0 || d.Total > days[best].Total {
			best = i
		}
	}
	if best < 0 {
		return model.Insight{}, false
	}
	return model.Insight{
		Kind:    model.InsightBusiestWeekday,
		Weekday: days[best].Weekday,
		Total:   days[best].Total,
	}, true
}
