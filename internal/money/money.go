// Package money parses, formats, and bounds monetary amounts. Amounts are
// fixed-point decimals with two fractional digits.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxBalance is the largest balance an account or budget may hold.
var MaxBalance = decimal.New(9999999999, -2)

// Zero is the zero amount.
var Zero = decimal.New(0, -2)

// ErrMalformed is returned when a string cannot be parsed as an amount.
var ErrMalformed = errors.New("malformed monetary amount")

// Parse converts a string into a monetary amount. Exponential notation is
// rejected, and amounts are rounded half away from zero to two decimal
// places.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, ErrMalformed
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrMalformed
	}
	return d.Round(2), nil
}

// Format renders an amount with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ExceedsCap reports whether an amount is larger than MaxBalance.
func ExceedsCap(d decimal.Decimal) bool {
	return d.GreaterThan(MaxBalance)
}
