// Package timeconv converts between (hours, minutes) pairs, decimal hours
// and their display forms. Callers guarantee minutes in [0,59]; values are
// not validated here.
package timeconv

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimalHours returns hours + minutes/60 without rounding. Rounding is a
// presentation concern, see SplitDecimalHours.
func ToDecimalHours(hours, minutes int) float64 {
	return float64(hours) + float64(minutes)/60
}

// SplitDecimalHours breaks a decimal hour value back into whole hours and
// minutes. Hours are floored, minutes rounded; a remainder that rounds to 60
// carries into the hour component.
func SplitDecimalHours(dec float64) (hours, minutes int) {
	hours = int(math.Floor(dec))
	minutes = int(math.Round((dec - float64(hours)) * 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}
	return hours, minutes
}

// FormatDuration renders "Xh Ymin", omitting whichever component is zero.
// Both zero renders "0min".
func FormatDuration(hours, minutes int) string {
	if hours == 0 && minutes == 0 {
		return "0min"
	}
	var parts []string
	if hours != 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes != 0 {
		parts = append(parts, fmt.Sprintf("%dmin", minutes))
	}
	return strings.Join(parts, " ")
}

// FormatDecimalHours renders a decimal hour value through the same rule.
func FormatDecimalHours(dec float64) string {
	h, m := SplitDecimalHours(dec)
	return FormatDuration(h, m)
}

// FormatCurrency renders an euro amount in es-ES style: thousands separated
// by dots, comma decimals, trailing euro sign ("1.234,56 €").
func FormatCurrency(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(2)
	negative := rounded.IsNegative()
	fixed := rounded.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(" €")
	return b.String()
}

// RoundCurrency rounds an amount to cent precision, half away from zero.
func RoundCurrency(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return rounded
}
