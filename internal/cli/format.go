// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/period"
)

var (
	printer = message.NewPrinter(language.English)

	currencyMu sync.RWMutex
	currency   = mustCurrency(config.DefaultCurrency)
)

func mustCurrency(code string) config.Currency {
	c, _ := config.LookupCurrency(code)
	return c
}

// SetCurrency sets the currency used by FormatMoney.
func SetCurrency(code string) {
	currencyMu.Lock()
	currency = mustCurrency(code)
	currencyMu.Unlock()
}

// CurrentCurrency returns the currency used by FormatMoney.
func CurrentCurrency() config.Currency {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	return currency
}

// FormatMoney formats an amount with the currency symbol and thousands
// separators. e.g., 1234.5 -> "₦1,234.50"
func FormatMoney(v float64) string {
	c := CurrentCurrency()
	if v < 0 {
		return "-" + c.Symbol + printer.Sprint(number.Decimal(-v, number.Scale(c.Decimals)))
	}
	return c.Symbol + printer.Sprint(number.Decimal(v, number.Scale(c.Decimals)))
}

// FormatMoneyShort formats an amount with a K/M/B suffix for compact labels.
// e.g., 1234 -> "₦1.2K", 950 -> "₦950"
func FormatMoneyShort(v float64) string {
	sym := CurrentCurrency().Symbol
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s%s%.1fB", sign, sym, abs/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s%s%.1fM", sign, sym, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s%s%.1fK", sign, sym, abs/1_000)
	default:
		return fmt.Sprintf("%s%s%.0f", sign, sym, abs)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the signed difference between two amounts.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	if weekday >= 0 && weekday < 7 {
		return weekdayNames[weekday][:3]
	}
	return "???"
}

// FormatWeekday returns the full day name for a weekday number.
func FormatWeekday(weekday int) string {
	if weekday >= 0 && weekday < 7 {
		return weekdayNames[weekday]
	}
	return "Unknown"
}

// FormatDate renders a YYYY-MM-DD date as "Mon 2 Jan". Unparseable dates
// are returned as-is, and an empty date as "-".
func FormatDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	d, ok := period.Parse(s)
	if !ok {
		return s
	}
	return d.Format("Mon 2 Jan")
}

// FormatMonth renders a YYYY-MM key as "Jan 2006".
func FormatMonth(key string) string {
	d, ok := period.Parse(key + "-01")
	if !ok {
		return key
	}
	return d.Format("Jan 2006")
}

// Truncate shortens s to max runes, adding an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
