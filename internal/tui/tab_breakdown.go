package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func (a App) renderBreakdownTab(cw int) string {
	var b strings.Builder

	b.WriteString(a.renderCategoryCard(cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		b.WriteString(a.renderMonthCard(cw))
		b.WriteString("\n")
		b.WriteString(a.renderWeekdayCard(cw))
	} else {
		b.WriteString(components.CardRow([]string{
			a.renderMonthCard(halves[0]),
			a.renderWeekdayCard(halves[1]),
		}))
	}
	return b.String()
}

func (a App) renderCategoryCard(cw int) string {
	t := theme.Active
	cats := a.categories
	title := fmt.Sprintf("Categories (%dd)", a.days)

	if len(cats) == 0 {
		return components.ContentCard(title,
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No expenses in this window"), cw)
	}

	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	colors := []lipgloss.Color{t.BlueBright, t.Cyan, t.Magenta, t.Yellow, t.Green, t.Orange}

	labelW := 16
	valueW := lipgloss.Width(cli.FormatMoney(cats[0].Total))
	barW := innerW - labelW - valueW - 10
	if barW < 8 {
		barW = 8
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %s", labelW, "Category", "Share of "+cli.FormatMoney(a.windowTotal))))
	body.WriteString("\n")
	for i, c := range cats {
		share := 0.0
		if a.windowTotal > 0 {
			share = c.Total / a.windowTotal * 100
		}
		body.WriteString(shareStyle.Render(fmt.Sprintf("%5.1f%%", share)))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(components.HBar(c.Category, c.Total, cats[0].Total, labelW, barW, colors[i%len(colors)]))
		if i < len(cats)-1 {
			body.WriteString("\n")
		}
	}
	return components.ContentCard(title, body.String(), cw)
}

func (a App) renderMonthCard(w int) string {
	t := theme.Active
	months := a.months
	innerW := components.CardInnerWidth(w)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(months) == 0 {
		return components.ContentCard("Monthly", mutedStyle.Render("No dated expenses"), w)
	}

	// Most recent 12 months, oldest first.
	if len(months) > 12 {
		months = months[len(months)-12:]
	}
	maxVal := 0.0
	for _, m := range months {
		if m.Total > maxVal {
			maxVal = m.Total
		}
	}

	barW := innerW - 9 - 14
	var body strings.Builder
	for i, m := range months {
		body.WriteString(components.HBar(cli.FormatMonth(m.Month), m.Total, maxVal, 8, barW, t.Blue))
		if i < len(months)-1 {
			body.WriteString("\n")
		}
	}

	vals := make([]float64, len(months))
	for i, m := range months {
		vals[i] = m.Total
	}
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render("Trend "))
	body.WriteString(components.Sparkline(vals, t.Accent))

	return components.ContentCard("Monthly", body.String(), w)
}

func (a App) renderWeekdayCard(w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	maxVal := 0.0
	busiest := -1
	for i, d := range a.weekdays {
		if d.Total > maxVal {
			maxVal = d.Total
			busiest = i
		}
	}

	// Monday first, matching the week the budgets use.
	order := []int{1, 2, 3, 4, 5, 6, 0}
	barW := innerW - 4 - 14
	var body strings.Builder
	for i, idx := range order {
		if idx >= len(a.weekdays) {
			continue
		}
		d := a.weekdays[idx]
		color := t.Cyan
		if idx == busiest {
			color = t.Orange
		}
		body.WriteString(components.HBar(cli.FormatDayOfWeek(int(d.Weekday)), d.Total, maxVal, 3, barW, color))
		if i < len(order)-1 {
			body.WriteString("\n")
		}
	}
	return components.ContentCard(fmt.Sprintf("By Weekday (%dd)", a.days), body.String(), w)
}
