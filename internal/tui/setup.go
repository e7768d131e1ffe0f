package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// setupValues is bound to the first-run form fields.
type setupValues struct {
	Currency string
	Days     int
	Theme    string
	InboxDir string
}

var daysOptions = []huh.Option[int]{
	huh.NewOption("7 days", 7),
	huh.NewOption("30 days", 30),
	huh.NewOption("90 days", 90),
}

func newSetupValues(cfg config.Config, inboxDir string) setupValues {
	v := setupValues{
		Currency: cfg.General.Currency,
		Days:     cfg.General.DefaultDays,
		Theme:    cfg.Appearance.Theme,
		InboxDir: cfg.Data.InboxDir,
	}
	if v.InboxDir == "" {
		v.InboxDir = inboxDir
	}
	if v.Days != 7 && v.Days != 90 {
		v.Days = 30
	}
	return v
}

func newSetupForm(expenseCount int, dbPath string, vals *setupValues) *huh.Form {
	welcome := fmt.Sprintf("Found %s expenses in %s.", cli.FormatNumber(int64(expenseCount)), dbPath)
	if expenseCount == 0 {
		welcome = "No expenses yet. Add them with [a] or drop CSV/JSON/YAML/XLSX files in an inbox folder."
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cbudget").
				Description(welcome+"\n\nA few settings and you are done."),
			huh.NewSelect[string]().
				Title("Currency").
				Description("Amounts are shown in this currency. Nothing is converted.").
				Options(huh.NewOptions(config.CurrencyCodes()...)...).
				Value(&vals.Currency),
			huh.NewSelect[int]().
				Title("Default time range").
				Options(daysOptions...).
				Value(&vals.Days),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Inbox folder").
				Description("Expense files dropped here are imported on every refresh. Leave empty to skip.").
				Placeholder("~/Documents/expenses").
				Value(&vals.InboxDir),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()

	if vals := a.setupVals; vals.Currency != "" {
		cfg.General.Currency = vals.Currency
		cli.SetCurrency(vals.Currency)
	}
	if a.setupVals.Days > 0 {
		cfg.General.DefaultDays = a.setupVals.Days
		a.days = a.setupVals.Days
	}
	if theme.Known(a.setupVals.Theme) {
		cfg.Appearance.Theme = a.setupVals.Theme
		theme.SetActive(a.setupVals.Theme)
	}
	cfg.Data.InboxDir = strings.TrimSpace(a.setupVals.InboxDir)
	if cfg.Data.InboxDir != "" && a.inboxDir == "" {
		a.inboxDir = cfg.Data.InboxDir
	}

	return config.Save(cfg)
}
