package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// ProgressBar renders a loading progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

func budgetBar(bp model.BudgetProgress, width int) string {
	t := theme.Active
	bar := progress.New(
		progress.WithSolidFill(string(t.StateColor(bp.State))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(bp.Progress)
}

// BudgetBar renders one budget row: label, bar clamped at 100%, the
// unclamped percentage, and spent against the limit.
func BudgetBar(label string, bp model.BudgetProgress, labelW, barWidth int) string {
	t := theme.Active
	if barWidth < 4 {
		barWidth = 4
	}

	stateColor := t.StateColor(bp.State)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(stateColor).Background(t.Surface).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, cli.Truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		budgetBar(bp, barWidth) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", bp.Ratio*100)) +
		spaceStyle.Render("  ") +
		amountStyle.Render(cli.FormatMoney(bp.Spent)+" / "+cli.FormatMoney(bp.Budget.Amount))
}

// CompactBudgetBar renders a short bar with the percentage only, for narrow
// layouts.
func CompactBudgetBar(bp model.BudgetProgress, width int) string {
	t := theme.Active

	barW := width - 6
	if barW < 4 {
		barW = 4
	}
	pctStyle := lipgloss.NewStyle().Foreground(t.StateColor(bp.State)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return budgetBar(bp, barW) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", bp.Ratio*100))
}

// RemainingLine describes how much of a budget is left, or by how much it
// was exceeded.
func RemainingLine(bp model.BudgetProgress) string {
	t := theme.Active
	if bp.Budget.Amount <= 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("no limit set")
	}
	if over := bp.Spent - bp.Budget.Amount; over > 0 {
		return lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).
			Render(cli.FormatMoney(over) + " over")
	}
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Render(cli.FormatMoney(bp.Remaining()) + " left")
}
