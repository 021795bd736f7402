package domain

import "fmt"

type PurchaseState string

const (
	StateDraft     PurchaseState = "draft"
	StatePending   PurchaseState = "pending"
	StatePurchased PurchaseState = "purchased"
	StateDeclined  PurchaseState = "declined"
)

// IsFinal reports whether order items can no longer change.
func (s PurchaseState) IsFinal() bool {
	return s == StatePurchased || s == StateDeclined
}

func (s PurchaseState) String() string {
	return string(s)
}

// ParsePurchaseState maps the stored column value, where NULL (empty) is a draft.
func ParsePurchaseState(s string) (PurchaseState, error) {
	switch PurchaseState(s) {
	case "", StateDraft:
		return StateDraft, nil
	case StatePending, StatePurchased, StateDeclined:
		return PurchaseState(s), nil
	}
	return "", fmt.Errorf("purchase state[%s] is not valid", s)
}

// Column is the persisted value; drafts are stored as NULL.
func (s PurchaseState) Column() (string, bool) {
	if s == StateDraft || s == "" {
		return "", false
	}
	return string(s), true
}
