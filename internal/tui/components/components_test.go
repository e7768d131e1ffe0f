package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

func TestTabVisualWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for _, tab := range Tabs {
		if got, want := TabVisualWidth(tab, true), len(tab.Name)+2; got != want {
			t.Errorf("active %s width = %d, want %d", tab.Name, got, want)
		}
		want := len(tab.Name) + 2
		if tab.KeyPos < 0 {
			want += 3
		}
		if got := TabVisualWidth(tab, false); got != want {
			t.Errorf("inactive %s width = %d, want %d", tab.Name, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('u'); got != 2 {
		t.Errorf("TabIdxByKey('u') = %d, want 2", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestRemainingLine(t *testing.T) {
	cli.SetCurrency("USD")
	defer cli.SetCurrency("")

	under := model.BudgetProgress{Budget: model.Budget{Amount: 100}, Spent: 40}
	if got := RemainingLine(under); !strings.Contains(got, "$60.00 left") {
		t.Errorf("RemainingLine(under) = %q", got)
	}
	over := model.BudgetProgress{Budget: model.Budget{Amount: 100}, Spent: 130}
	if got := RemainingLine(over); !strings.Contains(got, "$30.00 over") {
		t.Errorf("RemainingLine(over) = %q", got)
	}
	zero := model.BudgetProgress{}
	if got := RemainingLine(zero); !strings.Contains(got, "no limit set") {
		t.Errorf("RemainingLine(zero) = %q", got)
	}
}

func TestHBarScales(t *testing.T) {
	cli.SetCurrency("USD")
	defer cli.SetCurrency("")

	full := HBar("Food", 50, 50, 8, 10, theme.Active.Blue)
	if n := strings.Count(full, "█"); n != 10 {
		t.Errorf("full bar has %d blocks, want 10", n)
	}
	half := HBar("Transport", 25, 50, 8, 10, theme.Active.Blue)
	if n := strings.Count(half, "█"); n != 5 {
		t.Errorf("half bar has %d blocks, want 5", n)
	}
	if !strings.Contains(half, "Transpo…") {
		t.Errorf("label not truncated: %q", half)
	}
	if w := lipgloss.Width(HBar("x", 0, 0, 8, 10, theme.Active.Blue)); w < 19 {
		t.Errorf("empty bar width = %d", w)
	}
}

func TestBarChartHeight(t *testing.T) {
	out := BarChart([]float64{1, 5, 3, 8}, []string{"Mar", "2", "3", "4"}, theme.Active.Blue, 40, 6)
	if lipgloss.Height(out) < 6 {
		t.Errorf("chart height = %d, want at least 6", lipgloss.Height(out))
	}
	if BarChart(nil, nil, theme.Active.Blue, 40, 6) != "" {
		t.Error("empty chart should render nothing")
	}
}
