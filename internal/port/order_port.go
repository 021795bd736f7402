package port

import (
	"context"

	"github.com/nikolayk812/effective-orders/internal/domain"
)

type OrderRepository interface {
	// CreateOrder inserts the order and its items, assigning ids and timestamps.
	CreateOrder(ctx context.Context, order *domain.Order) error
	// UpdateOrder persists the order if its stored state still equals expected,
	// otherwise it returns domain.ErrStaleOrder. Items without an id are inserted.
	UpdateOrder(ctx context.Context, order *domain.Order, expected domain.PurchaseState) error
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}

type OrderFilter struct {
	UserID string
	State  domain.PurchaseState
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}
