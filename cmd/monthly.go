package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Spending per calendar month",
	RunE:  runMonthly,
}

var monthlyLimit int

func init() {
	monthlyCmd.Flags().IntVarP(&monthlyLimit, "limit", "l", 12, "Number of months to show (0 for all)")
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}
	if len(ds.Expenses) == 0 {
		noExpenses()
		return nil
	}

	// Months ignore --days: the whole history is bucketed.
	filtered, _, _ := applyFilters(ds.Expenses)
	months := pipeline.ByMonth(filtered)
	if len(months) == 0 {
		fmt.Println("\n  No dated expenses.")
		return nil
	}
	if monthlyLimit > 0 && len(months) > monthlyLimit {
		months = months[len(months)-monthlyLimit:]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY SPENDING  Last %d months", len(months))))
	fmt.Println()

	maxTotal := 0.0
	for _, m := range months {
		if m.Total > maxTotal {
			maxTotal = m.Total
		}
	}

	rows := make([][]string, 0, len(months))
	vals := make([]float64, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		vals[i] = m.Total
		delta := ""
		if i > 0 && months[i-1].Total > 0 {
			delta = cli.FormatDelta(m.Total, months[i-1].Total)
		}
		rows = append(rows, []string{
			cli.FormatMonth(m.Month),
			cli.FormatMoney(m.Total),
			delta,
			cli.RenderHorizontalBar("", m.Total, maxTotal, 24),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Spent", "vs Prev", ""},
		Rows:    rows,
	}))

	fmt.Printf("  Trend  %s\n\n", cli.RenderSparkline(vals))
	return nil
}
