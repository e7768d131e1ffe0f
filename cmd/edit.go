package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id> [description]",
	Short: "Change an expense by id or id prefix",
	Long: `Change fields of a recorded expense. Only the flags you pass are
updated; the id and creation time are kept.`,
	Example: `  cbudget edit 3f9a --amount 4200
  cbudget edit 3f9a --category Transport --date 2024-03-02 "Taxi home"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEdit,
}

var (
	editAmount   string
	editCategory string
	editDate     string
	editPayment  string
	editNotes    string
)

func init() {
	editCmd.Flags().StringVar(&editAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category (empty clears it)")
	editCmd.Flags().StringVar(&editDate, "date", "", "New date, YYYY-MM-DD")
	editCmd.Flags().StringVar(&editPayment, "paid-with", "", "New payment method")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "New notes")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	expenses, err := st.LoadExpenses()
	if err != nil {
		return err
	}
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	id, err := matchID(ids, args[0])
	if err != nil {
		return err
	}

	orig, err := st.GetExpense(id)
	if err != nil {
		return err
	}
	updated, changed, err := applyEdit(orig, cmd.Flags().Changed, args[1:])
	if err != nil {
		return err
	}
	if !changed {
		return errors.New("nothing to change: pass --amount, --category, --date, --paid-with, --notes or a description")
	}

	saved, err := st.SaveExpense(updated)
	if err != nil {
		return err
	}

	fmt.Printf("  Updated %s: %s %s on %s\n",
		shortID(saved.ID), cli.FormatMoney(saved.Amount), saved.EffectiveCategory(), cli.FormatDate(saved.Date))
	if saved.Category != orig.Category && saved.Category != "" && !config.KnownCategory(cfg, saved.Category) {
		fmt.Printf("  Note: %q is a new category\n", saved.Category)
	}
	return nil
}

// applyEdit overlays the flags set on the command line onto e. ID and
// CreatedAt are never touched.
func applyEdit(e model.Expense, set func(flag string) bool, args []string) (model.Expense, bool, error) {
	changed := len(args) > 0
	if changed {
		e.Description = strings.TrimSpace(args[0])
	}

	if set("amount") {
		amount, err := parseAmountFlag(editAmount)
		if err != nil {
			return e, false, err
		}
		e.Amount, changed = amount, true
	}
	if set("date") {
		date, err := parseDateFlag(editDate)
		if err != nil {
			return e, false, err
		}
		e.Date, changed = date, true
	}
	if set("category") {
		e.Category, changed = strings.TrimSpace(editCategory), true
	}
	if set("paid-with") {
		e.PaymentMethod, changed = strings.TrimSpace(editPayment), true
	}
	if set("notes") {
		e.Notes, changed = strings.TrimSpace(editNotes), true
	}
	return e, changed, nil
}
