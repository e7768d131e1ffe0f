package config

import "strings"

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "NGN"

// Currency describes how amounts are displayed. No conversion is ever done.
type Currency struct {
	Code     string
	Symbol   string
	Decimals int
}

var currencies = map[string]Currency{
	"NGN": {Code: "NGN", Symbol: "₦", Decimals: 2},
	"USD": {Code: "USD", Symbol: "$", Decimals: 2},
	"EUR": {Code: "EUR", Symbol: "€", Decimals: 2},
	"GBP": {Code: "GBP", Symbol: "£", Decimals: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Decimals: 0},
	"INR": {Code: "INR", Symbol: "₹", Decimals: 2},
	"KES": {Code: "KES", Symbol: "KSh", Decimals: 2},
	"GHS": {Code: "GHS", Symbol: "GH₵", Decimals: 2},
	"ZAR": {Code: "ZAR", Symbol: "R", Decimals: 2},
}

// LookupCurrency returns display info for a currency code. Unknown codes
// use the code itself as the symbol.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	if c, ok := currencies[code]; ok {
		return c, true
	}
	return Currency{Code: code, Symbol: code + " ", Decimals: 2}, false
}

// CurrencyCodes returns the supported codes with the default first.
func CurrencyCodes() []string {
	return []string{"NGN", "USD", "EUR", "GBP", "JPY", "INR", "KES", "GHS", "ZAR"}
}
