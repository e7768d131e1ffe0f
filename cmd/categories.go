package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/pipeline"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
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
	cats := pipeline.ByCategory(window)
	if len(cats) == 0 {
		fmt.Println("\n  No expenses in the selected period.")
		return nil
	}

	counts := make(map[string]int)
	for _, e := range window {
		counts[e.EffectiveCategory()]++
	}
	total := pipeline.Total(window)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CATEGORIES  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(cats)+2)
	for _, c := range cats {
		share := ""
		if total > 0 {
			share = cli.FormatPercent(c.Total / total)
		}
		rows = append(rows, []string{
			c.Category,
			formatNumber(int64(counts[c.Category])),
			cli.FormatMoney(c.Total),
			share,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", formatNumber(int64(len(window))), cli.FormatMoney(total), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Expenses", "Spent", "Share"},
		Rows:    rows,
	}))

	if n := countUncategorized(window); n > 0 {
		fmt.Printf("  %d expense%s without a category counted as %s\n\n", n, plural(n), model.OtherCategory)
	}
	return nil
}

func countUncategorized(expenses []model.Expense) int {
	n := 0
	for _, e := range expenses {
		if strings.TrimSpace(e.Category) == "" {
			n++
		}
	}
	return n
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
