// Package core defines the domain model and the money handling utilities
// shared by every monetary computation in the application.
//
// All amounts are decimal values carried as float64 and quantized to cent
// precision with Sanitize after every addition or subtraction, never only at
// input boundaries. That keeps repeated 0.10/0.20 style operations from
// accumulating binary floating-point drift.
package core

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Sanitize rounds a monetary value to the nearest cent.
//
// It must be applied after every monetary addition or subtraction. All
// comparisons ("is the budget exceeded", "is the balance negative") are made
// on sanitized values.
func Sanitize(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ValidAmount reports whether the value is a finite number the ledger may
// accept. NaN and infinities are invalid input, never coerced to zero.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Cents returns the amount as an integer number of cents.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ParseAmount converts a decimal string to a positive cent-quantized amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up on the third decimal place. Returns ErrInvalidAmount for
// malformed input, negative values, or zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive magnitudes allowed
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	amount, _ := d.Float64()
	return amount, nil
}

// FormatAmount renders an amount with exactly two decimals and no sign,
// the fixed-point form used by the CSV export contract.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(Sanitize(amount)).StringFixed(2)
}

// FormatCurrency renders an amount for display in the wallet's currency.
// Unknown currency codes fall back to the plain fixed-point form.
func FormatCurrency(amount float64, code string) string {
	if money.GetCurrency(code) == nil {
		return FormatAmount(amount)
	}
	return money.New(Cents(amount), code).Display()
}
