package model

import "time"

// InsightKind identifies which derived fact an Insight carries.
type InsightKind string

// Insight kinds, in the order they are produced.
const (
	InsightTopCategories  InsightKind = "top_categories"
	InsightBiggestExpense InsightKind = "biggest_expense"
	InsightMonthOverMonth InsightKind = "month_over_month"
	InsightNoSpendStreak  InsightKind = "no_spend_streak"
	InsightSpendStreak    InsightKind = "spend_streak"
	InsightBusiestWeekday InsightKind = "busiest_weekday"
)

// Direction is the sign of a month-over-month change.
type Direction string

// Change directions.
const (
	DirectionUp        Direction = "up"
	DirectionDown      Direction = "down"
	DirectionUnchanged Direction = "unchanged"
)

// CategoryShare is one entry of the top-categories insight.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  int     `json:"percent"`
}

// MonthChange compares the current month's total to the previous month's.
// NoBaseline is set when the previous month had no spending, in which case
// Percent and Direction are unset.
type MonthChange struct {
	Current    float64   `json:"current"`
	Previous   float64   `json:"previous"`
	Diff       float64   `json:"diff"`
	Percent    int       `json:"percent"`
	Direction  Direction `json:"direction,omitempty"`
	NoBaseline bool      `json:"noBaseline"`
}

// Insight is one derived fact. Only the fields relevant to Kind are set.
type Insight struct {
	Kind       InsightKind     `json:"kind"`
	Categories []CategoryShare `json:"categories,omitempty"`
	Expense    *Expense        `json:"expense,omitempty"`
	Change     *MonthChange    `json:"change,omitempty"`
	StreakDays int             `json:"streakDays,omitempty"`
	Weekday    time.Weekday    `json:"weekday"`
	Total      float64         `json:"total,omitempty"`
}
