package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Spending summary with budget status",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}

	if len(ds.Expenses) == 0 {
		noExpenses()
		return nil
	}

	filtered, since, until := applyFilters(ds.Expenses)
	window := pipeline.FilterByTime(filtered, since, until)
	totals := pipeline.Dashboard(filtered, until)

	// Previous window of the same length for comparison
	prevSince := period.AddDays(since, -flagDays)
	prevUntil := period.AddDays(since, -1)
	prevTotal := pipeline.Total(pipeline.FilterByTime(filtered, prevSince, prevUntil))
	windowTotal := pipeline.Total(window)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPENDING  Last %dd", flagDays)))
	fmt.Println()

	rows := [][]string{
		{"Today", cli.FormatMoney(totals.Today.Total), formatNumber(int64(totals.Today.Count))},
		{"This week", cli.FormatMoney(totals.Week.Total), formatNumber(int64(totals.Week.Count))},
		{"This month", cli.FormatMoney(totals.Month.Total), formatNumber(int64(totals.Month.Count))},
		{"All time", cli.FormatMoney(totals.All.Total), formatNumber(int64(totals.All.Count))},
		{"---"},
		{fmt.Sprintf("Last %dd", flagDays), cli.FormatMoney(windowTotal), formatNumber(int64(len(window)))},
	}

	perDay := fmt.Sprintf("%s/day", cli.FormatMoney(windowTotal/float64(flagDays)))
	if prevTotal > 0 {
		perDay += fmt.Sprintf("  (%s vs prev %dd)", cli.FormatDelta(windowTotal, prevTotal), flagDays)
	}
	rows = append(rows, []string{"Average", perDay, ""})

	if cats := pipeline.ByCategory(window); len(cats) > 0 {
		share := ""
		if windowTotal > 0 {
			share = cli.FormatPercent(cats[0].Total / windowTotal)
		}
		rows = append(rows, []string{"Top category", cats[0].Category + "  " + cli.FormatMoney(cats[0].Total), share})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Spent", "Expenses"},
		Rows:    rows,
	}))

	printCurrentBudgets(ds.Budgets, ds.Expenses, until)

	if ds.Import != nil && ds.Import.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d inbox files could not be parsed\n", ds.Import.FileErrors)
	}
	return nil
}

// printCurrentBudgets shows a bar per budget whose period contains now.
func printCurrentBudgets(budgets []model.Budget, expenses []model.Expense, now time.Time) {
	var current []model.Budget
	for _, b := range budgets {
		if pipeline.IsCurrent(b, now) {
			current = append(current, b)
		}
	}
	if len(current) == 0 {
		return
	}
	pipeline.SortBudgets(current)

	fmt.Println("  Current budgets")
	for _, bp := range pipeline.ProgressForAll(current, expenses) {
		fmt.Printf("  %-22s %s\n", cli.Truncate(budgetLabel(bp.Budget), 22), cli.RenderBudgetBar(bp, 24))
	}
	fmt.Println()
}
