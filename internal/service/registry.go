package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
)

var ErrUnknownPurchasableType = errors.New("unknown purchasable type")

// Loader loads one purchasable type by id.
type Loader func(ctx context.Context, id string) (domain.Purchasable, error)

// Registry resolves purchasable references by dispatching on their type.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

func NewRegistry() *Registry {
	return &Registry{loaders: map[string]Loader{}}
}

func (r *Registry) Register(purchasableType string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaders[purchasableType] = loader
}

func (r *Registry) Resolve(ctx context.Context, ref domain.PurchasableRef) (domain.Purchasable, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("purchasable ref is empty")
	}

	r.mu.RLock()
	loader, ok := r.loaders[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("purchasable[%s]: %w", ref, ErrUnknownPurchasableType)
	}

	p, err := loader(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("load purchasable[%s]: %w", ref, err)
	}

	return p, nil
}

// ProductLoader loads the built-in products.
func ProductLoader(products port.ProductRepository) Loader {
	return func(ctx context.Context, id string) (domain.Purchasable, error) {
		product, err := products.GetProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("products.GetProduct: %w", err)
		}
		return &product, nil
	}
}
