package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 2147483647")
	ErrOrderImmutable   = errors.New("unable to alter a purchased or declined order")
	ErrAlreadyPurchased = errors.New("order already purchased")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrStaleOrder       = errors.New("order was modified concurrently")
	ErrUnresolvedItem   = errors.New("cart item purchasable is not resolved")
	ErrInvalidOwner     = errors.New("cart must belong to exactly one of user or session")
)

type InvalidTaxRateError struct {
	Rate decimal.Decimal
}

func (e *InvalidTaxRateError) Error() string {
	return fmt.Sprintf("expected a tax rate between 0.25 (0.25%%) and 100.0 (100%%) or 0, got %s; return 5.25 for 5.25%% tax", e.Rate)
}

type UnknownProviderError struct {
	Provider string
	Known    []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q, known providers are %v", e.Provider, e.Known)
}

// ValidationErrors maps a field name to its validation messages.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// FullMessages returns "field message" strings sorted by field.
func (v ValidationErrors) FullMessages() []string {
	var messages []string
	for _, field := range slices.Sorted(maps.Keys(v)) {
		for _, msg := range v[field] {
			messages = append(messages, field+" "+msg)
		}
	}
	return messages
}

func (v ValidationErrors) Error() string {
	return strings.Join(v.FullMessages(), ", ")
}

// OrderPurchaseError reports a purchase that could not be persisted.
// The order's in-memory state has been rolled back when it is returned.
type OrderPurchaseError struct {
	Errors ValidationErrors
	Err    error
}

func (e *OrderPurchaseError) Error() string {
	if len(e.Errors) > 0 {
		return "failed to purchase order: " + e.Errors.Error()
	}
	return fmt.Sprintf("failed to purchase order: %v", e.Err)
}

func (e *OrderPurchaseError) Unwrap() error {
	if len(e.Errors) > 0 {
		return e.Errors
	}
	return e.Err
}

type OrderDeclineError struct {
	Errors ValidationErrors
	Err    error
}

func (e *OrderDeclineError) Error() string {
	if len(e.Errors) > 0 {
		return "failed to decline order: " + e.Errors.Error()
	}
	return fmt.Sprintf("failed to decline order: %v", e.Err)
}

func (e *OrderDeclineError) Unwrap() error {
	if len(e.Errors) > 0 {
		return e.Errors
	}
	return e.Err
}
