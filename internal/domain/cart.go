package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// CartOwner is either an authenticated user or an anonymous session.
type CartOwner struct {
	UserID       string
	SessionToken string
}

func (o CartOwner) Validate() error {
	if (o.UserID == "") == (o.SessionToken == "") {
		return ErrInvalidOwner
	}
	return nil
}

// Orphaned carts have neither a user nor a session and must be reclaimed.
func (o CartOwner) Orphaned() bool {
	return o.UserID == "" && o.SessionToken == ""
}

type Cart struct {
	ID    uuid.UUID
	Owner CartOwner
	Items []CartItem

	CreatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	Ref       PurchasableRef
	Quantity  int
	CreatedAt time.Time

	// Purchasable is the live purchasable, nil until resolved.
	Purchasable Purchasable
}

// AddItem appends p, or increases the quantity of the item already referencing it.
func (c *Cart) AddItem(p Purchasable, quantity int) (CartItem, error) {
	if !validQuantity(quantity) {
		return CartItem{}, ErrInvalidQuantity
	}

	ref := p.Ref()
	if i := c.indexOf(ref); i >= 0 {
		if !validQuantity(c.Items[i].Quantity + quantity) {
			return CartItem{}, ErrInvalidQuantity
		}
		c.Items[i].Quantity += quantity
		c.Items[i].Purchasable = p
		return c.Items[i], nil
	}

	item := CartItem{
		ID:          uuid.New(),
		Ref:         ref,
		Quantity:    quantity,
		Purchasable: p,
	}
	c.Items = append(c.Items, item)

	return item, nil
}

func (c *Cart) RemoveItem(id uuid.UUID) bool {
	n := len(c.Items)
	c.Items = slices.DeleteFunc(c.Items, func(item CartItem) bool {
		return item.ID == id
	})
	return len(c.Items) != n
}

// Merge moves every item of other into c. Items referencing the same
// purchasable are combined, capped at MaxQuantity. other is left empty.
func (c *Cart) Merge(other *Cart) {
	for _, item := range other.Items {
		if i := c.indexOf(item.Ref); i >= 0 {
			c.Items[i].Quantity = min(c.Items[i].Quantity+item.Quantity, MaxQuantity)
			if c.Items[i].Purchasable == nil {
				c.Items[i].Purchasable = item.Purchasable
			}
			continue
		}
		c.Items = append(c.Items, item)
	}
	other.Items = nil
}

// Size is the sum of quantities.
func (c *Cart) Size() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(ref PurchasableRef) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.Ref == ref
	})
}
