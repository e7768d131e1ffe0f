package model

import "time"

// CategoryTotal is the summed amount for one category.
type CategoryTotal struct {
	Category string
	Total    float64
}

// MonthTotal is the summed amount for one YYYY-MM month.
type MonthTotal struct {
	Month string
	Total float64
}

// DayTotal is the summed amount for one YYYY-MM-DD date.
type DayTotal struct {
	Date  string
	Total float64
	Count int
}

// WeekdayTotal holds the summed amount for one day of the week.
type WeekdayTotal struct {
	Weekday time.Weekday
	Total   float64
	Count   int
}

// PeriodTotal is a total and record count for one dashboard period.
type PeriodTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// PeriodTotals holds the dashboard cards: today, this week, this month, all time.
type PeriodTotals struct {
	Today PeriodTotal `json:"today"`
	Week  PeriodTotal `json:"week"`
	Month PeriodTotal `json:"month"`
	All   PeriodTotal `json:"all"`
}
