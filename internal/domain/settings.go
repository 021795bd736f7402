package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	ProviderMoneris       = "moneris"
	ProviderStripe        = "stripe"
	ProviderStripeConnect = "stripe_connect"
	ProviderPayPal        = "paypal"
	ProviderCheque        = "cheque"
	ProviderAdmin         = "admin"
	ProviderFree          = "free"
	ProviderPretend       = "pretend"
)

// TaxRateResolver returns the tax rate percentage for a billing address.
// An invalid NullDecimal means the rate can't be determined.
type TaxRateResolver interface {
	TaxRate(billing *Address) (decimal.NullDecimal, error)
}

type TaxRateFunc func(billing *Address) (decimal.NullDecimal, error)

func (f TaxRateFunc) TaxRate(billing *Address) (decimal.NullDecimal, error) {
	return f(billing)
}

// FlatTaxRate applies the same percentage everywhere.
func FlatTaxRate(rate decimal.Decimal) TaxRateResolver {
	return TaxRateFunc(func(*Address) (decimal.NullDecimal, error) {
		return decimal.NewNullDecimal(rate), nil
	})
}

type MailerSettings struct {
	SendOrderReceiptToAdmin  bool
	SendOrderReceiptToBuyer  bool
	SendOrderReceiptToSeller bool
	SubjectPrefix            string
}

// Settings is the immutable configuration shared by carts and orders.
type Settings struct {
	RequireBillingAddress  bool
	RequireShippingAddress bool
	CollectNoteRequired    bool
	SkipUserValidation     bool

	// MinimumCharge is nil when there's no minimum.
	MinimumCharge   *int64
	AllowFreeOrders bool

	PaymentProviders      map[string]struct{}
	OtherPaymentProviders map[string]struct{}

	TaxRates     TaxRateResolver
	ObfuscateIDs bool
	Currency     currency.Unit

	StripeConnectEnabled bool
	Mailer               MailerSettings
}

func ProviderSet(providers ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		set[p] = struct{}{}
	}
	return set
}

func (s Settings) IsKnownProvider(provider string) bool {
	_, ok := s.PaymentProviders[provider]
	return ok
}

// IsAllowedProvider also accepts the administrative providers (admin, free, pretend...).
func (s Settings) IsAllowedProvider(provider string) bool {
	if s.IsKnownProvider(provider) {
		return true
	}
	_, ok := s.OtherPaymentProviders[provider]
	return ok
}

// AllowedProviders lists every provider IsAllowedProvider accepts, sorted.
func (s Settings) AllowedProviders() []string {
	all := maps.Clone(s.PaymentProviders)
	if all == nil {
		all = map[string]struct{}{}
	}
	maps.Copy(all, s.OtherPaymentProviders)
	return slices.Sorted(maps.Keys(all))
}

func (s Settings) taxRate(billing *Address) (decimal.NullDecimal, error) {
	if s.TaxRates == nil {
		return decimal.NullDecimal{}, nil
	}
	return s.TaxRates.TaxRate(billing)
}
