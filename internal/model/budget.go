package model

import "time"

// Scope says whether a budget limits all spending or one category.
type Scope string

// Budget scopes.
const (
	ScopeOverall  Scope = "overall"
	ScopeCategory Scope = "category"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeOverall, ScopeCategory:
		return true
	}
	return false
}

// PeriodType is the length of the calendar span a budget covers.
type PeriodType string

// Budget period types.
const (
	PeriodDay   PeriodType = "day"
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
)

// Valid reports whether p is a known period type.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Label returns the adjective used in listings ("Daily", "Weekly", "Monthly").
func (p PeriodType) Label() string {
	switch p {
	case PeriodDay:
		return "Daily"
	case PeriodWeek:
		return "Weekly"
	case PeriodMonth:
		return "Monthly"
	}
	return string(p)
}

// State classifies a budget's standing.
type State string

// Budget states.
const (
	StateOK   State = "ok"
	StateNear State = "near"
	StateOver State = "over"
)

// Budget is a spending limit for one period, optionally scoped to a category.
// PeriodStart is the canonical first day of the period (YYYY-MM-DD).
type Budget struct {
	ID          string     `json:"id"`
	Scope       Scope      `json:"scope"`
	Category    string     `json:"category,omitempty"`
	PeriodType  PeriodType `json:"periodType"`
	PeriodStart string     `json:"periodStart"`
	Amount      float64    `json:"amount"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// BudgetProgress is the derived standing of a budget against a set of expenses.
// It is recomputed on every evaluation and never stored.
type BudgetProgress struct {
	Budget   Budget  `json:"budget"`
	Spent    float64 `json:"spent"`
	Ratio    float64 `json:"ratio"`    // unclamped spent/amount
	Progress float64 `json:"progress"` // min(1, Ratio)
	State    State   `json:"state"`
}

// Remaining returns how much of the limit is left, never below zero.
func (bp BudgetProgress) Remaining() float64 {
	r := bp.Budget.Amount - bp.Spent
	if r < 0 {
		return 0
	}
	return r
}
