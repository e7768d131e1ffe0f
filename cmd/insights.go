package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Observations about this month's spending",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}
	if len(ds.Expenses) == 0 {
		noExpenses()
		return nil
	}

	filtered, _, _ := applyFilters(ds.Expenses)
	insights := pipeline.Insights(filtered, time.Now())

	fmt.Println()
	fmt.Println(cli.RenderTitle("INSIGHTS"))
	fmt.Println()

	if len(insights) == 0 {
		fmt.Println("  Not enough recent spending for insights yet.")
		fmt.Println()
		return nil
	}
	fmt.Print(cli.RenderInsights(insights))
	fmt.Println()
	return nil
}
