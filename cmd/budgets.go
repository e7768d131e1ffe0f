package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Budget progress against spending",
	RunE:  runBudgets,
}

var budgetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or update a budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsAdd,
}

var budgetsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsRm,
}

var (
	budgetsCurrentOnly bool

	budgetID       string
	budgetAmount   string
	budgetCategory string
	budgetPeriod   string
	budgetStart    string
)

func init() {
	budgetsCmd.Flags().BoolVar(&budgetsCurrentOnly, "current", false, "Only budgets whose period contains today")

	budgetsAddCmd.Flags().StringVar(&budgetID, "id", "", "Existing budget id to update")
	budgetsAddCmd.Flags().StringVar(&budgetAmount, "amount", "", "Budget limit (required)")
	budgetsAddCmd.Flags().StringVar(&budgetCategory, "for", "", "Limit one category instead of all spending")
	budgetsAddCmd.Flags().StringVarP(&budgetPeriod, "period", "p", "month", "Period type: day, week or month")
	budgetsAddCmd.Flags().StringVar(&budgetStart, "start", "", "Any date inside the period, YYYY-MM-DD (default today)")
	_ = budgetsAddCmd.MarkFlagRequired("amount")

	budgetsCmd.AddCommand(budgetsAddCmd)
	budgetsCmd.AddCommand(budgetsRmCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgets(_ *cobra.Command, _ []string) error {
	ds, err := loadData()
	if err != nil {
		return err
	}
	if len(ds.Budgets) == 0 {
		fmt.Println("\n  No budgets yet.")
		fmt.Println("  Create one with `cbudget budgets add --amount 150000` (monthly, all spending).")
		return nil
	}

	now := time.Now()
	budgets := make([]model.Budget, 0, len(ds.Budgets))
	for _, b := range ds.Budgets {
		if budgetsCurrentOnly && !pipeline.IsCurrent(b, now) {
			continue
		}
		budgets = append(budgets, b)
	}
	if len(budgets) == 0 {
		fmt.Println("\n  No budgets cover today.")
		return nil
	}
	pipeline.SortBudgets(budgets)

	// Budgets always measure every expense; --category and --days do not apply.
	progress := pipeline.ProgressForAll(budgets, ds.Expenses)

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS"))
	fmt.Println()

	rows := make([][]string, 0, len(progress)+2)
	var spent, limit float64
	for _, bp := range progress {
		name := budgetLabel(bp.Budget)
		if !pipeline.IsCurrent(bp.Budget, now) {
			name += " (past)"
		}
		rows = append(rows, []string{
			shortID(bp.Budget.ID),
			name,
			pipeline.PeriodLabel(bp.Budget),
			cli.FormatMoney(bp.Spent),
			cli.FormatMoney(bp.Budget.Amount),
			cli.RenderBudgetBar(bp, 16) + " " + fmt.Sprintf("%.0f%%", bp.Ratio*100),
			cli.StateStyle(bp.State).Render(cli.StateLabel(bp.State)),
		})
		spent += bp.Spent
		limit += bp.Budget.Amount
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"", "TOTAL", "", cli.FormatMoney(spent), cli.FormatMoney(limit), "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Budget", "Period", "Spent", "Limit", "Progress", "State"},
		Rows:    rows,
	}))

	counts := pipeline.CountByState(progress)
	fmt.Printf("  %d on track, %d near limit, %d over\n\n",
		counts[model.StateOK], counts[model.StateNear], counts[model.StateOver])
	return nil
}

func runBudgetsAdd(_ *cobra.Command, _ []string) error {
	pt := model.PeriodType(strings.ToLower(strings.TrimSpace(budgetPeriod)))
	if !pt.Valid() {
		return fmt.Errorf("%w: %q (use day, week or month)", pipeline.ErrBudgetPeriodType, budgetPeriod)
	}

	date := time.Now()
	if budgetStart != "" {
		d, ok := period.Parse(budgetStart)
		if !ok {
			return fmt.Errorf("%w: %q", pipeline.ErrBudgetPeriodStart, budgetStart)
		}
		date = d
	}

	b := model.Budget{
		ID:          budgetID,
		Scope:       model.ScopeOverall,
		PeriodType:  pt,
		PeriodStart: pipeline.PeriodStartFor(pt, date),
		Amount:      model.ToAmount(budgetAmount),
	}
	if c := strings.TrimSpace(budgetCategory); c != "" {
		b.Scope = model.ScopeCategory
		b.Category = c
	}
	b = pipeline.NormalizeBudget(b)
	if err := pipeline.ValidateBudget(b); err != nil {
		return err
	}

	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	saved, err := st.SaveBudget(b)
	if err != nil {
		return err
	}
	fmt.Printf("  Saved %s budget %s: %s for %s\n",
		strings.ToLower(saved.PeriodType.Label()), shortID(saved.ID),
		cli.FormatMoney(saved.Amount), pipeline.PeriodLabel(saved))
	if b.Scope == model.ScopeCategory && !config.KnownCategory(cfg, b.Category) {
		fmt.Printf("  Note: %q is not one of your categories yet\n", b.Category)
	}
	return nil
}

func runBudgetsRm(_ *cobra.Command, args []string) error {
	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := resolveBudgetID(st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteBudget(id); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget %s\n", shortID(id))
	return nil
}

// resolveBudgetID accepts a full id or the unique prefix shown in listings.
func resolveBudgetID(st *store.Store, prefix string) (string, error) {
	budgets, err := st.LoadBudgets()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(budgets))
	for i, b := range budgets {
		ids[i] = b.ID
	}
	return matchID(ids, prefix)
}

// matchID returns the single id starting with prefix.
func matchID(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errors.New("empty id")
	}
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, store.ErrNotFound)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("id prefix %q matches %d records", prefix, len(found))
}

func budgetLabel(b model.Budget) string {
	scope := "Overall"
	if b.Scope == model.ScopeCategory {
		scope = model.EffectiveCategory(b.Category)
	}
	return scope + " · " + b.PeriodType.Label()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
