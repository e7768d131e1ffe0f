package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Tone is the sentiment of an insight line.
type Tone int

// Insight tones.
const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// InsightLine is the display form of a model.Insight.
type InsightLine struct {
	Label string
	Text  string
	Tone  Tone
}

// DescribeInsight turns an insight into a label and a sentence.
func DescribeInsight(ins model.Insight) InsightLine {
	switch ins.Kind {
	case model.InsightTopCategories:
		parts := make([]string, 0, len(ins.Categories))
		for _, c := range ins.Categories {
			parts = append(parts, fmt.Sprintf("%s %s (%d%%)", c.Category, FormatMoney(c.Amount), c.Percent))
		}
		return InsightLine{Label: "Top categories this month", Text: strings.Join(parts, ", ")}

	case model.InsightBiggestExpense:
		e := ins.Expense
		if e == nil {
			return InsightLine{Label: "Biggest expense this month"}
		}
		what := e.Description
		if what == "" {
			what = e.Category
		}
		if what == "" {
			what = "No description"
		}
		return InsightLine{
			Label: "Biggest expense this month",
			Text:  fmt.Sprintf("%s on %s: %s", FormatMoney(e.Amount), e.Date, what),
		}

	case model.InsightMonthOverMonth:
		ch := ins.Change
		if ch == nil {
			return InsightLine{Label: "vs last month"}
		}
		if ch.NoBaseline {
			return InsightLine{
				Label: "vs last month",
				Text:  "No spending recorded last month. This month: " + FormatMoney(ch.Current),
			}
		}
		switch ch.Direction {
		case model.DirectionUp:
			return InsightLine{
				Label: "vs last month",
				Text:  fmt.Sprintf("Spending is up %d%% (%s more)", ch.Percent, FormatMoney(ch.Diff)),
				Tone:  ToneNegative,
			}
		case model.DirectionDown:
			return InsightLine{
				Label: "vs last month",
				Text:  fmt.Sprintf("Spending is down %d%% (%s less)", ch.Percent, FormatMoney(-ch.Diff)),
				Tone:  TonePositive,
			}
		default:
			return InsightLine{Label: "vs last month", Text: "Spending is exactly the same as last month"}
		}

	case model.InsightNoSpendStreak:
		return InsightLine{
			Label: "No-spend streak",
			Text:  fmt.Sprintf("%s in a row with no expenses", plural(ins.StreakDays, "day")),
			Tone:  TonePositive,
		}

	case model.InsightSpendStreak:
		return InsightLine{
			Label: "Spending streak",
			Text:  fmt.Sprintf("%s in a row with expenses", plural(ins.StreakDays, "day")),
			Tone:  ToneNegative,
		}

	case model.InsightBusiestWeekday:
		return InsightLine{
			Label: "Busiest spending day",
			Text:  fmt.Sprintf("Most of your expenses land on %ss", FormatWeekday(int(ins.Weekday))),
		}
	}
	return InsightLine{Label: string(ins.Kind)}
}

// ToneStyle returns the style for an insight tone.
func ToneStyle(t Tone) lipgloss.Style {
	switch t {
	case TonePositive:
		return okStyle
	case ToneNegative:
		return overStyle
	default:
		return valueStyle
	}
}

// RenderInsights renders insights as a labeled list.
func RenderInsights(insights []model.Insight) string {
	if len(insights) == 0 {
		return "  " + mutedStyle.Render("Add some expenses to see insights.") + "\n"
	}
	var b strings.Builder
	for _, ins := range insights {
		line := DescribeInsight(ins)
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(line.Label))
		b.WriteString("\n    ")
		b.WriteString(ToneStyle(line.Tone).Render(line.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
