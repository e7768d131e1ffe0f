package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func countLabel(n int) string {
	return fmt.Sprintf("%s expense%s", cli.FormatNumber(int64(n)), pluralS(n))
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	totals := a.totals
	var b strings.Builder

	// Row 1: period cards
	windowDelta := countLabel(len(a.window))
	if a.prevTotal > 0 {
		windowDelta += " (" + cli.FormatDelta(a.windowTotal, a.prevTotal) + ")"
	}
	cards := []components.Metric{
		{Label: "Today", Value: cli.FormatMoney(totals.Today.Total), Delta: countLabel(totals.Today.Count)},
		{Label: "This Week", Value: cli.FormatMoney(totals.Week.Total), Delta: countLabel(totals.Week.Count)},
		{Label: "This Month", Value: cli.FormatMoney(totals.Month.Total), Delta: countLabel(totals.Month.Count)},
		{Label: fmt.Sprintf("Last %dd", a.days), Value: cli.FormatMoney(a.windowTotal), Delta: windowDelta},
	}
	if !a.isCompactLayout() {
		cards = append(cards, components.Metric{
			Label: "All Time", Value: cli.FormatMoney(totals.All.Total), Delta: countLabel(totals.All.Count),
		})
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: daily spending chart
	if len(a.daily) > 0 {
		vals := make([]float64, len(a.daily))
		for i, d := range a.daily {
			vals[i] = d.Total
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily Spending (%dd)", a.days),
			components.BarChart(vals, chartDateLabels(a.daily), t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: insights + budgets at a glance
	halves := components.LayoutRow(cw, 2)
	insightW, budgetW := halves[0], halves[1]
	if a.isCompactLayout() {
		insightW, budgetW = cw, cw
	}

	insightCard := components.ContentCard("Insights", a.renderInsightLines(components.CardInnerWidth(insightW)), insightW)
	budgetCard := components.ContentCard("Current Budgets", a.renderBudgetGlance(components.CardInnerWidth(budgetW)), budgetW)

	if a.isCompactLayout() {
		b.WriteString(insightCard)
		b.WriteString("\n")
		b.WriteString(budgetCard)
	} else {
		b.WriteString(components.CardRow([]string{insightCard, budgetCard}))
	}

	return b.String()
}

func (a App) renderInsightLines(innerW int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.insights) == 0 {
		return mutedStyle.Render("Add a few expenses to see insights.")
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	toneStyles := map[cli.Tone]lipgloss.Style{
		cli.ToneNeutral:  lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface),
		cli.TonePositive: lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface),
		cli.ToneNegative: lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface),
	}

	var body strings.Builder
	for i, ins := range a.insights {
		line := cli.DescribeInsight(ins)
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(labelStyle.Render(line.Label))
		body.WriteString("\n")
		body.WriteString(toneStyles[line.Tone].Render(cli.Truncate(line.Text, innerW)))
	}
	return body.String()
}

// currentProgress returns progress for budgets whose period contains now.
func (a App) currentProgress() []model.BudgetProgress {
	var out []model.BudgetProgress
	for _, bp := range a.progress {
		if isCurrent(bp.Budget, a.now()) {
			out = append(out, bp)
		}
	}
	return out
}

func (a App) renderBudgetGlance(innerW int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	current := a.currentProgress()
	if len(current) == 0 {
		return mutedStyle.Render("No budgets for the current period. Add one with `cbudget budgets add`.")
	}

	labelW := innerW / 3
	if labelW < 12 {
		labelW = 12
	}

	var body strings.Builder
	for i, bp := range current {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s ", labelW, cli.Truncate(budgetName(bp.Budget), labelW))))
		body.WriteString(components.CompactBudgetBar(bp, innerW-labelW-1))
	}
	return body.String()
}
