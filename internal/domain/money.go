package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is an amount in minor currency units (cents for CAD/USD).
type Money struct {
	Amount   int64
	Currency currency.Unit
}

// Decimal returns the amount in major units using the currency's standard scale.
func (m Money) Decimal() decimal.Decimal {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return decimal.New(m.Amount, -int32(scale))
}

func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return m.Currency.String() + " " + m.Decimal().StringFixed(int32(scale))
}

const (
	maxTaxRate = 100
	// rates below this are almost certainly a fraction (0.05) returned instead of a percentage (5.0)
	minNonZeroTaxRate = "0.25"
)

var hundred = decimal.NewFromInt(100)

// ValidateTaxRate accepts 0 or a percentage in [0.25, 100].
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() ||
		rate.GreaterThan(decimal.NewFromInt(maxTaxRate)) ||
		(rate.IsPositive() && rate.LessThan(decimal.RequireFromString(minNonZeroTaxRate))) {
		return &InvalidTaxRateError{Rate: rate}
	}

	return nil
}

// Subtotal sums price x quantity over all items.
func Subtotal(items []OrderItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Subtotal()
	}
	return sum
}

// Tax rounds each taxable item's tax half away from zero, then sums and floors at 0.
// rate is a percentage, 5.25 means 5.25%.
func Tax(items []OrderItem, rate decimal.Decimal) int64 {
	var sum int64
	for _, item := range items {
		if item.TaxExempt {
			continue
		}
		sum += decimal.NewFromInt(item.Subtotal()).Mul(rate).Div(hundred).Round(0).IntPart()
	}
	return max(sum, 0)
}

func Total(subtotal, tax int64) int64 {
	return max(subtotal+tax, 0)
}
