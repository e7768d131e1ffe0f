package tui

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/period"
)

// expenseValues is bound to the expense form fields. id and createdAt are
// set when the form edits an existing expense.
type expenseValues struct {
	Date          string
	Category      string
	Description   string
	Amount        string
	PaymentMethod string
	Notes         string

	id        string
	createdAt time.Time
}

func newExpenseValues(now time.Time) expenseValues {
	return expenseValues{
		Date:          period.Format(now),
		Category:      model.OtherCategory,
		PaymentMethod: model.DefaultPaymentMethods[0],
	}
}

// editExpenseValues prefills the form from a stored expense.
func editExpenseValues(e model.Expense) expenseValues {
	return expenseValues{
		Date:          e.Date,
		Category:      e.Category,
		Description:   e.Description,
		Amount:        strconv.FormatFloat(e.Amount, 'f', -1, 64),
		PaymentMethod: e.PaymentMethod,
		Notes:         e.Notes,
		id:            e.ID,
		createdAt:     e.CreatedAt,
	}
}

func (v expenseValues) editing() bool { return v.id != "" }

func validateDate(s string) error {
	if _, ok := period.Parse(strings.TrimSpace(s)); !ok {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateAmount(s string) error {
	if model.ToAmount(strings.TrimSpace(s)) <= 0 {
		return errors.New("amount must be greater than 0")
	}
	return nil
}

func newExpenseForm(categories []string, vals *expenseValues) *huh.Form {
	categories = withOption(categories, vals.Category)
	methods := withOption(model.DefaultPaymentMethods, vals.PaymentMethod)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Validate(validateDate).
				Value(&vals.Date),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Validate(validateAmount).
				Value(&vals.Amount),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(categories...)...).
				Value(&vals.Category),
			huh.NewInput().
				Title("Description").
				Value(&vals.Description),
			huh.NewSelect[string]().
				Title("Payment method").
				Options(huh.NewOptions(methods...)...).
				Value(&vals.PaymentMethod),
			huh.NewText().
				Title("Notes").
				Lines(2).
				Value(&vals.Notes),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// withOption appends v to opts when a stored value is missing from the
// select's choices.
func withOption(opts []string, v string) []string {
	if v == "" || slices.Contains(opts, v) {
		return opts
	}
	return append(slices.Clip(opts), v)
}

// expense converts the submitted form into an expense. An edited expense
// keeps its id and creation time.
func (v expenseValues) expense() model.Expense {
	date := strings.TrimSpace(v.Date)
	if d, ok := period.Parse(date); ok {
		date = period.Format(d)
	}
	id, created := v.id, v.createdAt
	if id == "" {
		id, created = model.NewID(), time.Now()
	}
	return model.Expense{
		ID:            id,
		Date:          date,
		Category:      strings.TrimSpace(v.Category),
		Description:   strings.TrimSpace(v.Description),
		Amount:        model.ToAmount(strings.TrimSpace(v.Amount)),
		PaymentMethod: v.PaymentMethod,
		Notes:         strings.TrimSpace(v.Notes),
		CreatedAt:     created,
	}
}
