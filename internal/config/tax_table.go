package config

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/shopspring/decimal"
)

const defaultRegion = "*"

// TaxTable resolves tax rates by billing region. A country and state pair
// ("CA-ON") wins over the country ("CA"), which wins over the "*" default.
type TaxTable struct {
	rates map[string]decimal.Decimal
}

// ParseTaxTable parses "CA-ON=13,CA=5,*=0". Every rate must pass domain.ValidateTaxRate.
func ParseTaxTable(s string) (TaxTable, error) {
	t := TaxTable{rates: map[string]decimal.Decimal{}}

	for _, entry := range splitList(s) {
		region, value, ok := strings.Cut(entry, "=")
		region = strings.ToUpper(strings.TrimSpace(region))
		if !ok || region == "" {
			return TaxTable{}, fmt.Errorf("tax rate entry[%s] is not region=rate", entry)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return TaxTable{}, fmt.Errorf("tax rate entry[%s]: %w", entry, err)
		}
		if err := domain.ValidateTaxRate(rate); err != nil {
			return TaxTable{}, fmt.Errorf("tax rate entry[%s]: %w", entry, err)
		}

		t.rates[region] = rate
	}

	return t, nil
}

func (t TaxTable) TaxRate(billing *domain.Address) (decimal.NullDecimal, error) {
	if billing != nil && billing.CountryCode != "" {
		country := strings.ToUpper(billing.CountryCode)

		if billing.StateCode != "" {
			if rate, ok := t.rates[country+"-"+strings.ToUpper(billing.StateCode)]; ok {
				return decimal.NewNullDecimal(rate), nil
			}
		}
		if rate, ok := t.rates[country]; ok {
			return decimal.NewNullDecimal(rate), nil
		}
	}

	if rate, ok := t.rates[defaultRegion]; ok {
		return decimal.NewNullDecimal(rate), nil
	}

	return decimal.NullDecimal{}, nil
}
