package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports about the loaded data.
type StatusInfo struct {
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Over        int // budgets over their limit
	Near        int // budgets near their limit
	Note        string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	nearStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	left := mutedStyle.Render(" ") +
		keyStyle.Render("[?]") + mutedStyle.Render("help ") +
		keyStyle.Render("[a]") + mutedStyle.Render("dd ") +
		keyStyle.Render("[r]") + mutedStyle.Render("efresh ") +
		keyStyle.Render("[q]") + mutedStyle.Render("uit")

	var right []string
	if info.Note != "" {
		right = append(right, mutedStyle.Render(info.Note))
	}
	if info.Over > 0 {
		right = append(right, overStyle.Render(fmt.Sprintf("%d over", info.Over)))
	}
	if info.Near > 0 {
		right = append(right, nearStyle.Render(fmt.Sprintf("%d near", info.Near)))
	}
	switch {
	case info.Refreshing:
		right = append(right, keyStyle.Render("↻ refreshing"))
	case info.AutoRefresh:
		right = append(right, mutedStyle.Render("auto"))
	}
	if info.DataAge != "" {
		right = append(right, mutedStyle.Render("Data: "+info.DataAge))
	}
	rightStr := strings.Join(right, mutedStyle.Render("  ")) + mutedStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return barStyle.Width(width).Render(left + barStyle.Render(strings.Repeat(" ", padding)) + rightStr)
}
