package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense by id or id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(_ *cobra.Command, args []string) error {
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

	e, err := st.GetExpense(id)
	if err != nil {
		return err
	}
	if err := st.DeleteExpense(id); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s %s from %s\n", cli.FormatMoney(e.Amount), e.EffectiveCategory(), cli.FormatDate(e.Date))
	return nil
}
