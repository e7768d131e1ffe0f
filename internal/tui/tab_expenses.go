package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	all    []model.Expense // window, log order
	shown  []model.Expense // all narrowed by query
	cursor int
	offset int

	searching   bool
	searchInput textinput.Model
	query       string
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description, category, notes, payment method"
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// clamp refreshes the shown list and keeps the cursor inside it.
func (s *expensesState) clamp() {
	s.shown = pipeline.FilterExpenses(s.all, pipeline.LogFilter{Search: s.query})
	if s.cursor >= len(s.shown) {
		s.cursor = len(s.shown) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *expensesState) move(d int) {
	s.cursor += d
	if s.cursor >= len(s.shown) {
		s.cursor = len(s.shown) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *expensesState) setQuery(q string) {
	s.query = q
	s.cursor = 0
	s.offset = 0
	s.clamp()
}

// updateExpensesKeys handles list navigation. handled is false for keys
// that fall through to the global bindings.
func (a App) updateExpensesKeys(key string) (m tea.Model, cmd tea.Cmd, handled bool) {
	halfPage := (a.height - scrollOverhead) / 2
	if halfPage < minHalfPageScroll {
		halfPage = minHalfPageScroll
	}

	switch key {
	case "/":
		a.expState.searching = true
		a.expState.searchInput = newSearchInput()
		a.expState.searchInput.SetValue(a.expState.query)
		a.expState.searchInput.Focus()
		return a, a.expState.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.expState.query != "" {
			a.expState.setQuery("")
		}
		return a, nil, true
	case "enter":
		if a.expState.cursor >= len(a.expState.shown) {
			return a, nil, true
		}
		cfg := loadConfigOrDefault()
		a.addVals = editExpenseValues(a.expState.shown[a.expState.cursor])
		a.addForm = newExpenseForm(config.Categories(cfg), &a.addVals).WithWidth(formWidth(a.width))
		return a, a.addForm.Init(), true
	case "j", "down":
		a.expState.move(1)
	case "k", "up":
		a.expState.move(-1)
	case "g", "home":
		a.expState.cursor = 0
		a.expState.offset = 0
	case "G", "end":
		a.expState.cursor = len(a.expState.shown) - 1
		a.expState.move(0)
	case "ctrl+d":
		a.expState.move(halfPage)
	case "ctrl+u":
		a.expState.move(-halfPage)
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updateExpensesSearch handles key events while in search mode.
func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.expState.searching = false
		a.expState.setQuery(strings.TrimSpace(a.expState.searchInput.Value()))
		return a, nil
	case "esc":
		a.expState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.expState.searchInput, cmd = a.expState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	es := a.expState
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	if es.searching {
		b.WriteString(components.ContentCard("Search", es.searchInput.View(), cw))
		b.WriteString("\n")
		h -= lipgloss.Height(b.String())
	}

	title := fmt.Sprintf("Expenses [%dd]", a.days)
	if es.query != "" {
		title = fmt.Sprintf("Expenses [%dd] matching %q", a.days, es.query)
	}

	if len(es.shown) == 0 {
		msg := "No expenses in this window"
		if es.query != "" {
			msg = "No expenses match. Esc clears the search."
		}
		b.WriteString(components.ContentCard(title, mutedStyle.Render(msg), cw))
		return b.String()
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard(title, a.renderExpenseList(components.CardInnerWidth(cw), h), cw))
		return b.String()
	}

	leftW := cw * 3 / 5
	rightW := cw - leftW
	left := components.ContentCard(title, a.renderExpenseList(components.CardInnerWidth(leftW), h), leftW)
	right := components.ContentCard("Details", a.renderExpenseDetail(components.CardInnerWidth(rightW)), rightW)
	b.WriteString(components.CardRow([]string{left, right}))
	return b.String()
}

func (a App) renderExpenseList(innerW, h int) string {
	t := theme.Active
	es := a.expState

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	dateW, amountW := 10, 14
	catW := 14
	descW := innerW - dateW - catW - amountW - 3
	if descW < 8 {
		descW = 8
	}

	visible := h - 6 // card border (2) + title (1) + header (1) + footer (2)
	if visible < 3 {
		visible = 3
	}
	offset := es.offset
	if es.cursor < offset {
		offset = es.cursor
	}
	if es.cursor >= offset+visible {
		offset = es.cursor - visible + 1
	}
	end := offset + visible
	if end > len(es.shown) {
		end = len(es.shown)
	}

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %*s",
		dateW, "Date", catW, "Category", descW, "Description", amountW, "Amount")))
	body.WriteString("\n")

	for i := offset; i < end; i++ {
		e := es.shown[i]
		line := fmt.Sprintf("%-*s %-*s %-*s %*s",
			dateW, cli.Truncate(cli.FormatDate(e.Date), dateW),
			catW, cli.Truncate(e.EffectiveCategory(), catW),
			descW, cli.Truncate(e.Description, descW),
			amountW, cli.FormatMoney(e.Amount))
		if i == es.cursor {
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d/%d · %s  [/] search  [enter] edit  [j/k] navigate",
		es.cursor+1, len(es.shown), cli.FormatMoney(pipeline.Total(es.shown)))))
	return body.String()
}

func (a App) renderExpenseDetail(innerW int) string {
	t := theme.Active
	es := a.expState
	if es.cursor >= len(es.shown) {
		return ""
	}
	e := es.shown[es.cursor]

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	body.WriteString(amountStyle.Render(cli.FormatMoney(e.Amount)))
	body.WriteString("\n")
	body.WriteString(dimStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	rows := []struct{ label, value string }{
		{"Date", cli.FormatDate(e.Date)},
		{"Category", e.EffectiveCategory()},
		{"Description", e.Description},
		{"Payment", e.PaymentMethod},
		{"Notes", e.Notes},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-12s ", r.label)))
		body.WriteString(valueStyle.Render(cli.Truncate(r.value, innerW-13)))
		body.WriteString("\n")
	}

	// Budgets this expense counts toward.
	var matched []string
	for _, bp := range a.progress {
		if pipeline.Matches(e, bp.Budget) {
			matched = append(matched, budgetName(bp.Budget)+" "+cli.FormatPercent(bp.Ratio))
		}
	}
	if len(matched) > 0 {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render("Counts toward"))
		body.WriteString("\n")
		for _, m := range matched {
			body.WriteString(valueStyle.Render("  " + cli.Truncate(m, innerW-2)))
			body.WriteString("\n")
		}
	}

	if !e.CreatedAt.IsZero() {
		body.WriteString("\n")
		body.WriteString(dimStyle.Render("added " + e.CreatedAt.Local().Format("2 Jan 2006 15:04")))
	}
	return body.String()
}
