package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily spending table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
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
	days := pipeline.FillDays(pipeline.ByDay(window), since, until)

	if len(window) == 0 {
		fmt.Println("\n  No expenses in the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPENDING  Last %dd", flagDays)))
	fmt.Println()

	// Newest first, like the expense log.
	rows := make([][]string, 0, len(days)+2)
	vals := make([]float64, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		vals[i] = d.Total
		weekday := ""
		if dt, ok := period.Parse(d.Date); ok {
			weekday = cli.FormatDayOfWeek(int(dt.Weekday()))
		}
		rows = append(rows, []string{
			d.Date,
			weekday,
			formatNumber(int64(d.Count)),
			cli.FormatMoney(d.Total),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", formatNumber(int64(len(window))), cli.FormatMoney(pipeline.Total(window))})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Expenses", "Spent"},
		Rows:    rows,
	}))

	fmt.Printf("  Trend  %s\n\n", cli.RenderSparkline(vals))
	return nil
}
