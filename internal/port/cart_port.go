package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
)

type CartRepository interface {
	// GetCart returns domain.ErrCartNotFound when owner has no cart.
	GetCart(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
	CreateCart(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, item domain.CartItem) error
	DeleteItem(ctx context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	// MergeCarts moves every item of from into into and deletes from.
	MergeCarts(ctx context.Context, from, into uuid.UUID) error
	DeleteOrphanedCarts(ctx context.Context) (int64, error)
}
