// Package tui provides the interactive Bubble Tea dashboard for cbudget.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/store"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"
)

// DataLoadedMsg is sent when the store snapshot has been read.
type DataLoadedMsg struct {
	Expenses   []model.Expense
	Budgets    []model.Budget
	Imported   int
	FileErrors int
	LoadTime   time.Duration
	Err        error
}

// ProgressMsg reports inbox import progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg DataLoadedMsg

// ExpenseSavedMsg is sent after the expense form was written to the store.
type ExpenseSavedMsg struct {
	Expense model.Expense
	Updated bool
	Err     error
}

// Tab indexes, in components.Tabs order.
const (
	tabOverview = iota
	tabBreakdown
	tabBudgets
	tabExpenses
	tabSettings
)

// App is the root Bubble Tea model.
type App struct {
	// Data
	expenses []model.Expense
	budgets  []model.Budget
	loaded   bool
	loadTime time.Duration
	loadErr  error
	note     string

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for current filter
	filtered    []model.Expense // category filter only
	window      []model.Expense // category filter and day window
	totals      model.PeriodTotals
	windowTotal float64
	prevTotal   float64
	daily       []model.DayTotal
	categories  []model.CategoryTotal
	months      []model.MonthTotal
	weekdays    []model.WeekdayTotal
	progress    []model.BudgetProgress
	insights    []model.Insight

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Filter state
	days     int
	category string

	// Per-tab state
	expState    expensesState
	budgetState budgetsState
	settings    settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Add/edit expense form
	addForm *huh.Form
	addVals expenseValues

	// Loading: channel-based progress subscription
	spinner   spinner.Model
	loadDone  int
	loadTotal int
	loadSub   chan tea.Msg

	dbPath   string
	inboxDir string
	now      func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	scrollOverhead    = 10
	minHalfPageScroll = 1
	minContentHeight  = 5

	minRefreshInterval = 10 * time.Second
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model. An empty inboxDir disables importing.
func NewApp(dbPath, inboxDir string, days int, category string) App {
	needSetup := !config.Exists()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()
	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshInterval {
		refreshInterval = 30 * time.Second
	}
	if days <= 0 {
		days = cfg.General.DefaultDays
	}

	return App{
		dbPath:          dbPath,
		inboxDir:        inboxDir,
		days:            days,
		category:        category,
		needSetup:       needSetup,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
		now:             time.Now,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dbPath, a.inboxDir, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a *App) recompute() {
	now := a.now()
	since := period.AddDays(period.Day(now), -(a.days - 1))

	a.filtered = pipeline.FilterByCategory(a.expenses, a.category)
	a.window = pipeline.FilterByTime(a.filtered, since, now)

	a.totals = pipeline.Dashboard(a.filtered, now)
	a.windowTotal = pipeline.Total(a.window)
	prevUntil := period.AddDays(since, -1)
	prevSince := period.AddDays(since, -a.days)
	a.prevTotal = pipeline.Total(pipeline.FilterByTime(a.filtered, prevSince, prevUntil))

	a.daily = pipeline.FillDays(pipeline.ByDay(a.window), since, now)
	a.categories = pipeline.ByCategory(a.window)
	a.months = pipeline.ByMonth(a.filtered)
	a.weekdays = pipeline.ByWeekday(a.window)

	// Budgets and insights always look at every expense.
	budgets := make([]model.Budget, len(a.budgets))
	copy(budgets, a.budgets)
	pipeline.SortBudgets(budgets)
	a.progress = pipeline.ProgressForAll(budgets, a.expenses)
	a.insights = pipeline.Insights(a.expenses, now)

	entries := make([]model.Expense, len(a.window))
	copy(entries, a.window)
	pipeline.SortLog(entries)
	a.expState.all = entries

	a.expState.clamp()
	a.budgetState.clamp(len(a.visibleBudgets()))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.addForm != nil {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			switch a.activeTab {
			case tabExpenses:
				if !a.expState.searching {
					a.expState.move(-1)
				}
			case tabBudgets:
				a.budgetState.move(-1, len(a.visibleBudgets()))
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			switch a.activeTab {
			case tabExpenses:
				if !a.expState.searching {
					a.expState.move(1)
				}
			case tabBudgets:
				a.budgetState.move(1, len(a.visibleBudgets()))
			}
			return a, nil

		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// Forms intercept all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.addForm != nil {
			return a.updateAddForm(msg)
		}

		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if a.activeTab == tabExpenses && a.expState.searching {
			return a.updateExpensesSearch(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabExpenses {
			if m, cmd, handled := a.updateExpensesKeys(key); handled {
				return m, cmd
			}
		}

		if a.activeTab == tabBudgets {
			switch key {
			case "j", "down":
				a.budgetState.move(1, len(a.visibleBudgets()))
				return a, nil
			case "k", "up":
				a.budgetState.move(-1, len(a.visibleBudgets()))
				return a, nil
			case "f":
				a.budgetState.currentOnly = !a.budgetState.currentOnly
				a.budgetState.cursor = 0
				return a, nil
			}
		}

		if a.activeTab == tabSettings {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		switch key {
		case "q":
			return a, tea.Quit

		case "a":
			cfg := loadConfigOrDefault()
			a.addVals = newExpenseValues(a.now())
			a.addForm = newExpenseForm(config.Categories(cfg), &a.addVals).WithWidth(formWidth(a.width))
			return a, a.addForm.Init()

		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, refreshDataCmd(a.dbPath, a.inboxDir)
			}
			return a, nil

		case "R":
			a.autoRefresh = !a.autoRefresh
			cfg := loadConfigOrDefault()
			cfg.TUI.AutoRefresh = a.autoRefresh
			_ = config.Save(cfg)
			return a, nil

		case "+", "=":
			a.days = nextWindow(a.days, 1)
			a.recompute()
			return a, nil

		case "-":
			a.days = nextWindow(a.days, -1)
			a.recompute()
			return a, nil
		}

		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
				return a, nil
			}
		}
		switch key {
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		}
		return a, nil

	case DataLoadedMsg:
		a.applyLoad(msg)
		a.loaded = true

		if a.needSetup {
			a.setupVals = newSetupValues(loadConfigOrDefault(), a.inboxDir)
			a.setupForm = newSetupForm(len(a.expenses), a.dbPath, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.loadDone = msg.Current
		a.loadTotal = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.addForm == nil {
			if a.now().Sub(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshDataCmd(a.dbPath, a.inboxDir))
			}
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.applyLoad(DataLoadedMsg(msg))
		return a, nil

	case ExpenseSavedMsg:
		if msg.Err != nil {
			a.note = "save failed: " + msg.Err.Error()
			return a, nil
		}
		verb := "added"
		if msg.Updated {
			verb = "updated"
		}
		a.note = fmt.Sprintf("%s %s %s", verb, cli.FormatMoney(msg.Expense.Amount), msg.Expense.EffectiveCategory())
		a.refreshing = true
		return a, refreshDataCmd(a.dbPath, a.inboxDir)
	}

	// Forward unhandled messages (cursor blinks, etc.) to an open form
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}

	return a, nil
}

// applyLoad swaps in a fresh snapshot. A failed reload keeps the old data.
func (a *App) applyLoad(msg DataLoadedMsg) {
	a.lastRefresh = a.now()
	a.loadTime = msg.LoadTime
	a.loadErr = msg.Err
	if msg.Err != nil && a.loaded {
		return
	}
	a.expenses = msg.Expenses
	a.budgets = msg.Budgets
	switch {
	case msg.Imported > 0:
		a.note = fmt.Sprintf("imported %d file%s", msg.Imported, pluralS(msg.Imported))
	case msg.FileErrors > 0:
		a.note = fmt.Sprintf("%d inbox file%s failed", msg.FileErrors, pluralS(msg.FileErrors))
	}
	a.recompute()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.note = "config not saved: " + err.Error()
		}
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.addForm = nil
		return a, nil
	}

	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		e := a.addVals.expense()
		a.addForm = nil
		return a, saveExpenseCmd(a.dbPath, e, a.addVals.editing())
	case huh.StateAborted:
		a.addForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.addForm != nil {
		return a.viewAddForm()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cbudget needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cbudget"))
	b.WriteString(subtitleStyle.Render(" · Spending & Budgets"))
	b.WriteString("\n\n")

	if a.loadTotal > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.loadDone) / float64(a.loadTotal)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Importing inbox\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.loadDone))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.loadTotal))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading expenses..."))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewAddForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	title := "◈ Add expense"
	if a.addVals.editing() {
		title = "◈ Edit expense " + cli.Truncate(a.addVals.id, 8)
	}
	body := titleStyle.Render(title) + "\n\n" +
		a.addForm.View() + "\n" +
		hintStyle.Render("Esc to cancel")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o b u e x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Navigate lists"},
			{"g G", "First / Last expense"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Add expense"},
			{"Enter", "Edit selected expense"},
			{"/", "Search expenses"},
			{"f", "Current budgets only"},
			{"+ -", "Widen / Narrow window"},
			{"Esc", "Back / Cancel"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	filterPillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	filterAccentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	filterStr := filterPillStyle.Render(" ") +
		filterAccentStyle.Render(fmt.Sprintf("%dd", a.days))
	if a.category != "" {
		filterStr += filterPillStyle.Render(" │ ") + filterAccentStyle.Render(a.category)
	}
	if q := a.expState.query; q != "" {
		filterStr += filterPillStyle.Render(" │ ") + filterAccentStyle.Render("/"+q)
	}
	filterStr += filterPillStyle.Render(" │ " + cli.CurrentCurrency().Code + " ")

	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRowStyle.Render(filterStr)

	// 2. Status bar
	states := pipeline.CountByState(a.currentProgress())
	info := components.StatusInfo{
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Over:        states[model.StateOver],
		Near:        states[model.StateNear],
		Note:        a.note,
	}
	if a.loadErr != nil {
		info.Note = "load failed: " + a.loadErr.Error()
	}
	statusBar := components.RenderStatusBar(w, info)

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabBreakdown:
		content = a.renderBreakdownTab(cw)
	case tabBudgets:
		content = a.renderBudgetsTab(cw, contentH)
	case tabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center when the terminal is wider than the content
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// windowSteps are the day windows cycled by + and -.
var windowSteps = []int{7, 14, 30, 60, 90, 180, 365}

func nextWindow(days, dir int) int {
	if dir > 0 {
		for _, d := range windowSteps {
			if d > days {
				return d
			}
		}
		return days
	}
	for i := len(windowSteps) - 1; i >= 0; i-- {
		if windowSteps[i] < days {
			return windowSteps[i]
		}
	}
	return days
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func formWidth(termW int) int {
	w := termW - 10
	if w > 70 {
		w = 70
	}
	if w < 40 {
		w = 40
	}
	return w
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// readSnapshot opens the store, imports the inbox if one is set, and reads
// every expense and budget.
func readSnapshot(dbPath, inboxDir string, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()
	var msg DataLoadedMsg

	st, err := store.Open(dbPath)
	if err != nil {
		msg.Err = err
		msg.LoadTime = time.Since(start)
		return msg
	}
	defer func() { _ = st.Close() }()

	if inboxDir != "" {
		res, err := pipeline.ImportDir(st, inboxDir, progressFn)
		if err != nil {
			msg.Err = err
		} else {
			msg.Imported = res.Imported
			msg.FileErrors = res.FileErrors
		}
	}

	if msg.Expenses, err = st.LoadExpenses(); err != nil {
		msg.Err = err
	}
	if msg.Budgets, err = st.LoadBudgets(); err != nil {
		msg.Err = err
	}
	msg.LoadTime = time.Since(start)
	return msg
}

// loadDataCmd starts loading in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dbPath, inboxDir string, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so the importer is never stalled by the UI.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- readSnapshot(dbPath, inboxDir, progressFn)
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress UI.
func refreshDataCmd(dbPath, inboxDir string) tea.Cmd {
	return func() tea.Msg {
		return RefreshDataMsg(readSnapshot(dbPath, inboxDir, nil))
	}
}

func saveExpenseCmd(dbPath string, e model.Expense, updated bool) tea.Cmd {
	return func() tea.Msg {
		st, err := store.Open(dbPath)
		if err != nil {
			return ExpenseSavedMsg{Expense: e, Updated: updated, Err: err}
		}
		defer func() { _ = st.Close() }()

		saved, err := st.SaveExpense(e)
		return ExpenseSavedMsg{Expense: saved, Updated: updated, Err: err}
	}
}

// chartDateLabels builds compact X-axis labels for an oldest-first series.
// First label and month boundaries show the month abbreviation; everything
// else shows the day number.
func chartDateLabels(days []model.DayTotal) []string {
	labels := make([]string, len(days))
	prevMonth := time.Month(0)
	for i, d := range days {
		dt, ok := period.Parse(d.Date)
		if !ok {
			labels[i] = "?"
			continue
		}
		m := dt.Month()
		switch {
		case i == 0:
			labels[i] = dt.Format("Jan")
		case i == len(days)-1:
			labels[i] = strconv.Itoa(dt.Day())
		case m != prevMonth:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = m
	}
	return labels
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
