package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

// rowID is a primary key that may arrive as a string or a number.
type rowID string

func (id *rowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = rowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		*id = rowID(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("id %s: %w", data, err)
	}
	*id = rowID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ExpenseRow is one row of the expenses table.
// Amount may be a JSON number or a numeric string, so it stays raw until coerced.
type ExpenseRow struct {
	ID            rowID           `json:"id"`
	Date          *string         `json:"date"`
	Category      *string         `json:"category"`
	Description   *string         `json:"description"`
	Amount        json.RawMessage `json:"amount"`
	PaymentMethod *string         `json:"payment_method"`
	Notes         *string         `json:"notes"`
	CreatedAt     *string         `json:"created_at"`
}

// BudgetRow is one row of the budgets table.
type BudgetRow struct {
	ID          rowID           `json:"id"`
	Scope       *string         `json:"scope"`
	Category    *string         `json:"category"`
	PeriodType  *string         `json:"period_type"`
	PeriodStart *string         `json:"period_start"`
	Amount      json.RawMessage `json:"amount"`
	CreatedAt   *string         `json:"created_at"`
}

// Snapshot is the result of pulling both tables.
type Snapshot struct {
	Expenses  []model.Expense
	Budgets   []model.Budget
	FetchedAt time.Time
	Error     error
}

func (r ExpenseRow) toExpense() model.Expense {
	return model.Expense{
		ID:            string(r.ID),
		Date:          deref(r.Date),
		Category:      deref(r.Category),
		Description:   deref(r.Description),
		Amount:        model.ToAmount(r.Amount),
		PaymentMethod: deref(r.PaymentMethod),
		Notes:         deref(r.Notes),
		CreatedAt:     parseTimestamp(r.CreatedAt),
	}
}

func (r BudgetRow) toBudget() model.Budget {
	scope := model.Scope(deref(r.Scope))
	if scope == "" {
		scope = model.ScopeOverall
	}
	pt := model.PeriodType(deref(r.PeriodType))
	if pt == "" {
		pt = model.PeriodMonth
	}
	return model.Budget{
		ID:          string(r.ID),
		Scope:       scope,
		Category:    deref(r.Category),
		PeriodType:  pt,
		PeriodStart: deref(r.PeriodStart),
		Amount:      model.ToAmount(r.Amount),
		CreatedAt:   parseTimestamp(r.CreatedAt),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseTimestamp accepts Postgres timestamptz output with or without the "T".
func parseTimestamp(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05.999999-07:00"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return t
		}
	}
	return time.Time{}
}
