package domain

import (
	"fmt"
	"math"
	"time"
)

// Quantities and unit prices are bounded so that an item subtotal fits int64
// and a quantity fits the int4 column.
const (
	MaxQuantity = math.MaxInt32
	MaxPrice    = math.MaxInt32
)

func validQuantity(quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity
}

// OrderItem is a snapshot of a purchasable taken when it was added to an order.
type OrderItem struct {
	ID          int64
	OrderID     int64
	Title       string
	Quantity    int
	Price       int64
	TaxExempt   bool
	SellerID    string
	Purchasable PurchasableRef

	CreatedAt time.Time

	purchasable Purchasable
}

func newOrderItem(p Purchasable, quantity int) OrderItem {
	return OrderItem{
		Title:       p.Title(),
		Quantity:    quantity,
		Price:       p.Price(),
		TaxExempt:   p.TaxExempt(),
		SellerID:    p.SellerID(),
		Purchasable: p.Ref(),
		purchasable: p,
	}
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// LivePurchasable returns the purchasable the item was built from, if still held in memory.
func (i OrderItem) LivePurchasable() Purchasable {
	return i.purchasable
}

func (i *OrderItem) AttachPurchasable(p Purchasable) {
	i.purchasable = p
}

func (i OrderItem) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if i.Title == "" {
		errs.Add("title", "can't be blank")
	}
	if !validQuantity(i.Quantity) {
		errs.Add("quantity", fmt.Sprintf("must be between 1 and %d", MaxQuantity))
	}
	if i.Price > MaxPrice || i.Price < -MaxPrice {
		errs.Add("price", fmt.Sprintf("must be between %d and %d", -MaxPrice, MaxPrice))
	}
	if i.Purchasable.IsZero() {
		errs.Add("purchasable", "can't be blank")
	}
	return errs
}
