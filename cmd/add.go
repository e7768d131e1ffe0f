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
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Record an expense",
	Example: `  cbudget add --amount 3500 --category Food "Lunch with Ada"
  cbudget add --amount 12000 --category Transport --date 2024-03-01 --paid-with Card`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

var (
	addAmount   string
	addCategory string
	addDate     string
	addPayment  string
	addNotes    string
)

func init() {
	addCmd.Flags().StringVar(&addAmount, "amount", "", "Amount spent (required)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Expense category")
	addCmd.Flags().StringVar(&addDate, "date", "", "Date spent, YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&addPayment, "paid-with", "", "Payment method")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	_ = addCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	e, err := buildExpense(args, time.Now())
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	saved, err := st.SaveExpense(e)
	if err != nil {
		return err
	}

	fmt.Printf("  Added %s %s on %s (%s)\n",
		cli.FormatMoney(saved.Amount), saved.EffectiveCategory(), cli.FormatDate(saved.Date), shortID(saved.ID))
	if saved.Category != "" && !config.KnownCategory(cfg, saved.Category) {
		fmt.Printf("  Note: %q is a new category\n", saved.Category)
	}
	return nil
}

func buildExpense(args []string, now time.Time) (model.Expense, error) {
	amount, err := parseAmountFlag(addAmount)
	if err != nil {
		return model.Expense{}, err
	}

	date := period.Format(now)
	if addDate != "" {
		if date, err = parseDateFlag(addDate); err != nil {
			return model.Expense{}, err
		}
	}

	var desc string
	if len(args) > 0 {
		desc = strings.TrimSpace(args[0])
	}

	return model.Expense{
		ID:            model.NewID(),
		Date:          date,
		Category:      strings.TrimSpace(addCategory),
		Description:   desc,
		Amount:        amount,
		PaymentMethod: strings.TrimSpace(addPayment),
		Notes:         strings.TrimSpace(addNotes),
		CreatedAt:     now,
	}, nil
}

func parseAmountFlag(s string) (float64, error) {
	amount := model.ToAmount(strings.TrimSpace(s))
	if !(amount > 0) {
		return 0, errors.New("amount must be greater than 0")
	}
	return amount, nil
}

func parseDateFlag(s string) (string, error) {
	d, ok := period.Parse(s)
	if !ok {
		return "", fmt.Errorf("--date must be YYYY-MM-DD, got %q", s)
	}
	return period.Format(d), nil
}
