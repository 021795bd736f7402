package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type ValidateOptions struct {
	// SkipBuyerValidations is the administrative flag: user, note, tax and address rules are skipped.
	SkipBuyerValidations bool
}

const (
	msgBlank   = "can't be blank"
	msgInvalid = "is invalid"
)

// Validate checks the order against s. Totals must have been assigned.
func (o *Order) Validate(s Settings, opts ValidateOptions) ValidationErrors {
	errs := ValidationErrors{}
	buyer := !opts.SkipBuyerValidations

	if buyer && !s.SkipUserValidation {
		if o.UserID == "" {
			errs.Add("user_id", msgBlank)
		} else if o.User != nil && (!o.User.Valid() || o.User.ID != o.UserID) {
			errs.Add("user", msgInvalid)
		}
	}

	if buyer && s.CollectNoteRequired && o.Note == "" {
		errs.Add("note", msgBlank)
	}

	if buyer {
		if !o.TaxRate.Valid {
			errs.Add("tax_rate", "can't be determined based on billing address")
		} else if o.TaxRate.Decimal.IsNegative() {
			errs.Add("tax_rate", "must be greater than or equal to 0")
		}
		if o.Tax == nil {
			errs.Add("tax", msgBlank)
		}
	}

	// an admin creating a new pending order is not required to have addresses
	addresses := buyer && !(o.IsNew() && o.IsPending())
	if addresses && s.RequireBillingAddress {
		validateAddress(errs, "billing_address", o.BillingAddress)
	}
	if addresses && s.RequireShippingAddress {
		validateAddress(errs, "shipping_address", o.ShippingAddress)
	}

	if o.Subtotal == nil {
		errs.Add("subtotal", msgBlank)
	}
	if o.Total == nil {
		errs.Add("total", msgBlank)
	} else if s.MinimumCharge != nil && !(s.AllowFreeOrders && *o.Total == 0) && *o.Total < *s.MinimumCharge {
		minimum := Money{Amount: *s.MinimumCharge, Currency: s.Currency}
		errs.Add("total", fmt.Sprintf("A minimum order of %s is required. Please add additional items to your cart.", minimum))
	}

	if len(o.Items) == 0 {
		errs.Add("order_items", "No items are present. Please add one or more item to your cart.")
	}
	for i, item := range o.Items {
		for field, messages := range item.Validate() {
			for _, msg := range messages {
				errs.Add(fmt.Sprintf("order_items[%d].%s", i, field), msg)
			}
		}
	}
	if subtotalOverflows(o.Items) {
		errs.Add("subtotal", "is too large")
	}

	if o.IsPurchased() {
		if o.PurchasedAt == nil {
			errs.Add("purchased_at", msgBlank)
		}
		if len(o.Payment) == 0 {
			errs.Add("payment", msgBlank)
		}
		switch {
		case o.PaymentProvider == "":
			errs.Add("payment_provider", msgBlank)
		case !s.IsAllowedProvider(o.PaymentProvider):
			errs.Add("payment_provider", "is not included in the list")
		}
		if o.PaymentCard == "" {
			errs.Add("payment_card", msgBlank)
		}
	}

	return errs
}

func subtotalOverflows(items []OrderItem) bool {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromInt(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || sum.LessThan(decimal.NewFromInt(math.MinInt64))
}

func validateAddress(errs ValidationErrors, field string, a *Address) {
	switch {
	case a.IsBlank():
		errs.Add(field, msgBlank)
	case !a.Valid():
		errs.Add(field, msgInvalid)
	}
}
