package money

import (
	"github.com/shopspring/decimal"
)

// PercentOf returns amount * rate/100, rounded to 2 decimal places.
func PercentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}

// FromFloat converts a float64 to a decimal amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// FromString converts a string to a decimal amount.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Format renders an amount with 2 decimal places for display.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
