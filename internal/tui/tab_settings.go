package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

const (
	settingsFieldCurrency = iota
	settingsFieldDays
	settingsFieldTheme
	settingsFieldInbox
	settingsFieldRemoteURL
	settingsFieldAnonKey
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) > 16:
		return key[:8] + "..." + key[len(key)-4:]
	default:
		return "****"
	}
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldCurrency:
		ti.Placeholder = strings.Join(config.CurrencyCodes(), ", ")
		ti.SetValue(cfg.General.Currency)
	case settingsFieldDays:
		ti.Placeholder = "30"
		ti.SetValue(strconv.Itoa(a.days))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldInbox:
		ti.Placeholder = "folder scanned for CSV/JSON/YAML/XLSX files (empty to disable)"
		ti.SetValue(cfg.Data.InboxDir)
	case settingsFieldRemoteURL:
		ti.Placeholder = "https://<project>.supabase.co"
		ti.SetValue(cfg.Remote.URL)
	case settingsFieldAnonKey:
		ti.Placeholder = "anon key"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
		ti.SetValue(cfg.Remote.AnonKey)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "30 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	a.settings.saveErr = nil

	switch a.settings.cursor {
	case settingsFieldCurrency:
		code := strings.ToUpper(val)
		if _, ok := config.LookupCurrency(code); !ok {
			a.settings.saveErr = fmt.Errorf("unknown currency %q", val)
			return
		}
		cfg.General.Currency = code
		cli.SetCurrency(code)
	case settingsFieldDays:
		d, err := strconv.Atoi(val)
		if err != nil || d <= 0 {
			a.settings.saveErr = fmt.Errorf("days must be a positive number")
			return
		}
		cfg.General.DefaultDays = d
		a.days = d
		a.recompute()
	case settingsFieldTheme:
		if !theme.Known(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldInbox:
		cfg.Data.InboxDir = val
		a.inboxDir = val
	case settingsFieldRemoteURL:
		cfg.Remote.URL = strings.TrimRight(val, "/")
	case settingsFieldAnonKey:
		cfg.Remote.AnonKey = val
	case settingsFieldAutoRefresh:
		cfg.TUI.AutoRefresh = val == "true" || val == "1" || val == "yes"
		a.autoRefresh = cfg.TUI.AutoRefresh
	case settingsFieldRefreshInterval:
		interval, err := strconv.Atoi(val)
		if err != nil || time.Duration(interval)*time.Second < minRefreshInterval {
			a.settings.saveErr = fmt.Errorf("interval must be at least %d seconds", int(minRefreshInterval.Seconds()))
			return
		}
		cfg.TUI.RefreshIntervalSec = interval
		a.refreshInterval = time.Duration(interval) * time.Second
	}

	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orNotSet := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}

	fields := []struct{ label, value string }{
		{"Currency", cli.CurrentCurrency().Code + " (" + strings.TrimSpace(cli.CurrentCurrency().Symbol) + ")"},
		{"Default Days", strconv.Itoa(a.days)},
		{"Theme", cfg.Appearance.Theme},
		{"Inbox Folder", orNotSet(a.inboxDir)},
		{"Remote URL", orNotSet(cfg.Remote.URL)},
		{"Remote Key", maskKey(cfg.Remote.AnonKey)},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := innerW - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	remote := "not configured"
	if cfg.RemoteConfigured() {
		remote = "configured, run `cbudget sync` to pull"
	}

	var infoBody strings.Builder
	infoRows := []struct{ label, value string }{
		{"Database:", a.dbPath},
		{"Expenses loaded:", cli.FormatNumber(int64(len(a.expenses)))},
		{"Budgets loaded:", cli.FormatNumber(int64(len(a.budgets)))},
		{"Load time:", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
		{"Remote:", remote},
		{"Config file:", config.ConfigPath()},
	}
	for i, r := range infoRows {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-17s ", r.label)) + valueStyle.Render(r.value))
		if i < len(infoRows)-1 {
			infoBody.WriteString("\n")
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
