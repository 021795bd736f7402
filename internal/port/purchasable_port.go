package port

import (
	"context"

	"github.com/nikolayk812/effective-orders/internal/domain"
)

// PurchasableResolver loads the live purchasable behind a tagged reference.
type PurchasableResolver interface {
	Resolve(ctx context.Context, ref domain.PurchasableRef) (domain.Purchasable, error)
}

// UserDirectory is the host application's user store.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}
