package store

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount is the largest value a decimal(12,2) column holds
var maxAmount = decimal.RequireFromString("9999999999.99")

// checkAmount records a violation when amount is out of range for a money column.
// Strict amounts must be positive, lenient ones only non-negative.
func checkAmount(v *ValidationError, field string, amount decimal.Decimal, strict bool) {
	switch {
	case strict && !amount.IsPositive():
		v.Add(field, "must be greater than 0")
	case amount.IsNegative():
		v.Add(field, "must not be negative")
	case amount.GreaterThan(maxAmount):
		v.Add(field, "exceeds the maximum amount")
	case !amount.Equal(amount.Round(2)):
		v.Add(field, "must have at most 2 decimal places")
	}
}

// checkRequired records a violation when s is blank
func checkRequired(v *ValidationError, field, s string) {
	if strings.TrimSpace(s) == "" {
		v.Add(field, "is required")
	}
}
