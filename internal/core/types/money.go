// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors. Intermediate
// arithmetic keeps full precision; only final persisted values are
// rounded to MoneyScale.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits stored for monetary values.
const MoneyScale = 2

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to MoneyScale using banker's-free half-up rounding.
// Apply only at persistence or presentation boundaries, never mid-calculation.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// TaxFromGross extracts the tax portion from a tax-inclusive amount.
// gross * rate / (100 + rate), full precision.
func TaxFromGross(gross Money, ratePercent Money) Money {
	hundred := decimal.NewFromInt(100)
	return gross.Mul(ratePercent).Div(hundred.Add(ratePercent))
}

// TaxFromNet computes tax on top of a tax-exclusive amount.
func TaxFromNet(net Money, ratePercent Money) Money {
	return net.Mul(ratePercent).Div(decimal.NewFromInt(100))
}

// SumMoney adds a slice of values at full precision.
func SumMoney(values []Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
