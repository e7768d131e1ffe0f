// Package model defines domain types for cbudget expenses, budgets and derived metrics.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OtherCategory is the bucket for expenses without a category.
const OtherCategory = "Other"

// Expense is one recorded spend. Date is a local calendar date in
// YYYY-MM-DD form and may be empty or malformed when it came from an import.
type Expense struct {
	ID            string    `json:"id" yaml:"id"`
	Date          string    `json:"date" yaml:"date"`
	Category      string    `json:"category" yaml:"category"`
	Description   string    `json:"description" yaml:"description"`
	Amount        float64   `json:"amount" yaml:"amount"`
	PaymentMethod string    `json:"paymentMethod,omitempty" yaml:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// EffectiveCategory returns the category, or OtherCategory when it is blank.
func (e Expense) EffectiveCategory() string {
	return EffectiveCategory(e.Category)
}

// EffectiveCategory maps a blank category label to OtherCategory.
func EffectiveCategory(category string) string {
	if strings.TrimSpace(category) == "" {
		return OtherCategory
	}
	return category
}

// NewID returns a fresh opaque identifier for an expense or budget.
func NewID() string {
	return uuid.NewString()
}

// DefaultCategories is the picker list offered by forms.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Shopping",
	"Bills",
	"Entertainment",
	"Health",
	"Education",
	OtherCategory,
}

// DefaultPaymentMethods is the picker list offered by forms.
var DefaultPaymentMethods = []string{
	"Cash",
	"Card",
	"Bank Transfer",
	"Mobile Money",
}
