package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// budgetsState holds the budgets tab state.
type budgetsState struct {
	cursor      int
	currentOnly bool
}

func (s *budgetsState) move(d, n int) {
	s.cursor += d
	s.clamp(n)
}

func (s *budgetsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func isCurrent(b model.Budget, now time.Time) bool {
	return pipeline.IsCurrent(b, now)
}

// budgetName is the short label for a budget: scope plus period kind.
func budgetName(b model.Budget) string {
	scope := "Overall"
	if b.Scope == model.ScopeCategory {
		scope = model.EffectiveCategory(b.Category)
	} else if b.Scope != model.ScopeOverall {
		scope = string(b.Scope)
	}
	return scope + " · " + b.PeriodType.Label()
}

func (a App) visibleBudgets() []model.BudgetProgress {
	if a.budgetState.currentOnly {
		return a.currentProgress()
	}
	return a.progress
}

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder

	current := a.currentProgress()
	states := pipeline.CountByState(current)
	var limit, spent float64
	for _, bp := range current {
		limit += bp.Budget.Amount
		spent += bp.Spent
	}
	cards := []components.Metric{
		{Label: "On Track", Value: cli.FormatNumber(int64(states[model.StateOK])), Delta: "current budgets"},
		{Label: "Near Limit", Value: cli.FormatNumber(int64(states[model.StateNear])), Delta: "at 80% or more"},
		{Label: "Over Budget", Value: cli.FormatNumber(int64(states[model.StateOver])), Delta: "at 100% or more"},
		{Label: "Spent / Budgeted", Value: cli.FormatMoneyShort(spent) + " / " + cli.FormatMoneyShort(limit), Delta: "current periods"},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	list := a.visibleBudgets()
	title := "All Budgets"
	if a.budgetState.currentOnly {
		title = "Current Budgets"
	}
	if len(list) == 0 {
		body := mutedStyle.Render("No budgets yet. Create one with `cbudget budgets add --amount 50000`.")
		b.WriteString(components.ContentCard(title, body, cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	labelW := 24
	if a.isCompactLayout() {
		labelW = 18
	}
	amountW := 2 * len(cli.FormatMoney(0))
	for _, bp := range list {
		w := lipgloss.Width(cli.FormatMoney(bp.Spent) + " / " + cli.FormatMoney(bp.Budget.Amount))
		if w > amountW {
			amountW = w
		}
	}
	barW := innerW - labelW - amountW - 10
	if barW < 8 {
		barW = 8
	}

	// Each budget takes two lines: bar and period/remaining.
	visible := (h - lipgloss.Height(b.String()) - 4) / 2
	if visible < 2 {
		visible = 2
	}
	offset := 0
	if a.budgetState.cursor >= visible {
		offset = a.budgetState.cursor - visible + 1
	}
	end := offset + visible
	if end > len(list) {
		end = len(list)
	}

	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	for i := offset; i < end; i++ {
		bp := list[i]
		marker := spaceStyle.Render("  ")
		if i == a.budgetState.cursor {
			marker = markerStyle.Render("▸ ")
		}
		body.WriteString(marker)
		body.WriteString(components.BudgetBar(budgetName(bp.Budget), bp, labelW, barW))
		body.WriteString("\n")

		detail := pipeline.PeriodLabel(bp.Budget)
		if !isCurrent(bp.Budget, a.now()) {
			detail += " (past)"
		}
		if err := pipeline.ValidateBudget(bp.Budget); err != nil {
			detail += " · invalid: " + err.Error()
		}
		body.WriteString(spaceStyle.Render("  "))
		body.WriteString(dimStyle.Render(fmt.Sprintf("%-*s ", labelW, cli.Truncate(detail, labelW))))
		body.WriteString(components.RemainingLine(bp))
		body.WriteString(spaceStyle.Render("  "))
		body.WriteString(cli.StateStyle(bp.State).Render(cli.StateLabel(bp.State)))
		if i < end-1 {
			body.WriteString("\n")
		}
	}
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d  [j/k] navigate  [f] current only", a.budgetState.cursor+1, len(list))))

	b.WriteString(components.ContentCard(title, body.String(), cw))
	return b.String()
}
