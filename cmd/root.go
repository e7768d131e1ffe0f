// Package cmd implements the cbudget CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDays     int
	flagCategory string
	flagDBPath   string
	flagInbox    string
	flagNoInbox  bool
	flagQuiet    bool
)

// cfg is the config loaded before every command runs.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "cbudget",
	Short:             "Personal spending and budget tracker",
	Long:              "Track expenses, see where the money goes, and check budgets against real spending.",
	PersistentPreRunE: loadConfig,
	RunE:              runSummary,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 30, "Time window in days")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (substring match)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagInbox, "inbox", "", "Folder of CSV/JSON/YAML/XLSX files imported on every load")
	rootCmd.PersistentFlags().BoolVar(&flagNoInbox, "no-inbox", false, "Skip the inbox import")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	cli.SetCurrency(cfg.General.Currency)

	if !cmd.Flags().Changed("days") && cfg.General.DefaultDays > 0 {
		flagDays = cfg.General.DefaultDays
	}
	if flagDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", flagDays)
	}
	return nil
}

func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	if cfg.Data.DBPath != "" {
		return cfg.Data.DBPath
	}
	return store.DefaultPath()
}

func inboxDir() string {
	if flagNoInbox {
		return ""
	}
	if flagInbox != "" {
		return flagInbox
	}
	return cfg.Data.InboxDir
}

// dataset is everything a read-only command works from.
type dataset struct {
	Expenses []model.Expense
	Budgets  []model.Budget
	Import   *pipeline.ImportResult
}

func progressFunc(label string) pipeline.ProgressFunc {
	return func(current, total int) {
		if flagQuiet {
			return
		}
		if current%25 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  %s", cli.RenderProgressBar(label, current, total, 20))
		}
	}
}

// loadData is the shared data loading path used by all commands.
// The inbox, when set, is imported into the store before reading.
func loadData() (*dataset, error) {
	st, err := store.Open(dbPath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	ds := &dataset{}
	if dir := inboxDir(); dir != "" {
		res, err := pipeline.ImportDir(st, dir, progressFunc("Importing"))
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", dir, err)
		}
		ds.Import = res
		if !flagQuiet && res.TotalFiles > 0 {
			fmt.Fprintf(os.Stderr, "\r  Inbox: %d imported, %d unchanged", res.Imported, res.Unchanged)
			if res.FileErrors > 0 {
				fmt.Fprintf(os.Stderr, ", %d failed", res.FileErrors)
			}
			fmt.Fprintln(os.Stderr, "    ")
		}
	}

	if ds.Expenses, err = st.LoadExpenses(); err != nil {
		return nil, err
	}
	if ds.Budgets, err = st.LoadBudgets(); err != nil {
		return nil, err
	}
	return ds, nil
}

// applyFilters returns the category-filtered expenses and the window bounds.
// The window is --days calendar days ending today.
func applyFilters(expenses []model.Expense) ([]model.Expense, time.Time, time.Time) {
	now := time.Now()
	since := period.AddDays(period.Day(now), -(flagDays - 1))

	filtered := expenses
	if flagCategory != "" {
		filtered = pipeline.FilterByCategory(filtered, flagCategory)
	}
	return filtered, since, now
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

func noExpenses() {
	fmt.Println("\n  No expenses yet.")
	fmt.Println("  Add one with `cbudget add --amount 2500 --category Food` or import a file.")
}
