package port

import (
	"context"
	"errors"

	"github.com/nikolayk812/effective-orders/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache holds carts read from the repository. Get returns ErrCacheMiss when absent.
// Cached carts carry purchasable references only.
type CartCache interface {
	Get(ctx context.Context, owner domain.CartOwner) (domain.Cart, error)
	Set(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context, owner domain.CartOwner) error
}
