package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Spending by day of week",
	RunE:  runWeekdays,
}

func init() {
	rootCmd.AddCommand(weekdaysCmd)
}

func runWeekdays(_ *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}
	if len(ds.Expenses) == 0 {
		noExpenses()
		return nil
	}

	filtered, since, until := applyFilters(ds.Expenses)
	days := pipeline.ByWeekday(pipeline.FilterByTime(filtered, since, until))

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPENDING BY WEEKDAY  Last %dd", flagDays)))
	fmt.Println()

	// Find max for bar scaling
	maxTotal := 0.0
	peak := -1
	for i, d := range days {
		if d.Total > maxTotal {
			maxTotal = d.Total
			peak = i
		}
	}

	maxBarWidth := 40
	for _, idx := range []int{1, 2, 3, 4, 5, 6, 0} {
		d := days[idx]
		barLen := 0
		if maxTotal > 0 {
			barLen = int(d.Total / maxTotal * float64(maxBarWidth))
		}
		bar := strings.Repeat("█", barLen)
		fmt.Printf("  %s │ %12s │ %3d │ %s\n",
			cli.FormatDayOfWeek(int(d.Weekday)), cli.FormatMoney(d.Total), d.Count, bar)
	}

	if peak < 0 {
		fmt.Println("\n  No spending in the selected period.")
		return nil
	}
	fmt.Printf("\n  Peak: %s (%s across %d expense%s)\n\n",
		cli.FormatWeekday(int(days[peak].Weekday)), cli.FormatMoney(days[peak].Total),
		days[peak].Count, plural(days[peak].Count))
	return nil
}
