package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchasableRef is a tagged reference to a purchasable owned by the host application.
type PurchasableRef struct {
	Type string
	ID   string
}

func (r PurchasableRef) IsZero() bool {
	return r.Type == "" || r.ID == ""
}

func (r PurchasableRef) String() string {
	return r.Type + "#" + r.ID
}

// Purchasable is anything that can be sold. Callbacks run after the order
// transition is committed; a returned error is logged and does not revert it.
type Purchasable interface {
	Ref() PurchasableRef
	Title() string
	Price() int64
	TaxExempt() bool
	// SellerID is empty unless the purchasable is sold on behalf of a marketplace seller.
	SellerID() string

	Purchased(ctx context.Context, order *Order, item *OrderItem) error
	Declined(ctx context.Context, order *Order, item *OrderItem) error
}

const ProductType = "Product"

// Product is the built-in purchasable used for custom admin order lines.
type Product struct {
	ID            uuid.UUID
	ProductTitle  string
	ProductPrice  int64
	IsTaxExempt   bool
	ProductSeller string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) Ref() PurchasableRef {
	return PurchasableRef{Type: ProductType, ID: p.ID.String()}
}

func (p *Product) Title() string {
	if p.ProductTitle == "" {
		return "New Product"
	}
	return p.ProductTitle
}

func (p *Product) Price() int64     { return p.ProductPrice }
func (p *Product) TaxExempt() bool  { return p.IsTaxExempt }
func (p *Product) SellerID() string { return p.ProductSeller }

func (p *Product) Purchased(context.Context, *Order, *OrderItem) error { return nil }
func (p *Product) Declined(context.Context, *Order, *OrderItem) error  { return nil }

func (p *Product) Validate() error {
	errs := ValidationErrors{}
	if p.ProductTitle == "" {
		errs.Add("title", "can't be blank")
	}
	if p.ProductPrice <= 0 || p.ProductPrice > MaxPrice {
		errs.Add("price", fmt.Sprintf("must be between 1 and %d, got %d", MaxPrice, p.ProductPrice))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
