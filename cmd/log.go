package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Expense log with filters",
	RunE:  runLog,
}

var (
	logLimit  int
	logAll    bool
	logDate   string
	logSearch string
	logMin    float64
	logMax    float64
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "l", 30, "Number of expenses to show (0 for all)")
	logCmd.Flags().BoolVar(&logAll, "all", false, "Ignore the --days window")
	logCmd.Flags().StringVar(&logDate, "date", "", "Only expenses on this YYYY-MM-DD date")
	logCmd.Flags().StringVarP(&logSearch, "search", "s", "", "Search description, notes, category and payment method")
	logCmd.Flags().Float64Var(&logMin, "min", 0, "Minimum amount (inclusive)")
	logCmd.Flags().Float64Var(&logMax, "max", 0, "Maximum amount (inclusive)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}
	if len(ds.Expenses) == 0 {
		noExpenses()
		return nil
	}

	filtered, since, until := applyFilters(ds.Expenses)
	if !logAll && logDate == "" {
		filtered = pipeline.FilterByTime(filtered, since, until)
	}

	f := pipeline.LogFilter{Search: logSearch}
	if logDate != "" {
		d, ok := period.Parse(logDate)
		if !ok {
			return fmt.Errorf("--date must be YYYY-MM-DD, got %q", logDate)
		}
		f.Date = period.Format(d)
	}
	if cmd.Flags().Changed("min") {
		f.MinAmount = &logMin
	}
	if cmd.Flags().Changed("max") {
		f.MaxAmount = &logMax
	}
	expenses := pipeline.FilterExpenses(filtered, f)

	if len(expenses) == 0 {
		fmt.Println("\n  No expenses match.")
		return nil
	}

	total := pipeline.Total(expenses)
	shown := expenses
	if logLimit > 0 && len(shown) > logLimit {
		shown = shown[:logLimit]
	}

	title := fmt.Sprintf("EXPENSES  Last %dd", flagDays)
	switch {
	case f.Date != "":
		title = "EXPENSES  " + cli.FormatDate(f.Date)
	case logAll:
		title = "EXPENSES  All time"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s (showing %d of %d)", title, len(shown), len(expenses))))
	fmt.Println()

	rows := make([][]string, 0, len(shown)+2)
	for _, e := range shown {
		rows = append(rows, logRow(e))
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"", "", "TOTAL", "", cli.FormatMoney(total), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Description", "Amount", "Paid with"},
		Rows:    rows,
	}))
	return nil
}

func logRow(e model.Expense) []string {
	date := e.Date
	if date == "" {
		date = "-"
	}
	return []string{
		shortID(e.ID),
		date,
		cli.Truncate(e.EffectiveCategory(), 14),
		cli.Truncate(e.Description, 28),
		cli.FormatMoney(e.Amount),
		cli.Truncate(e.PaymentMethod, 12),
	}
}
