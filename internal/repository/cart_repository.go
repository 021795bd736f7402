package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/effective-orders/internal/db"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}

	var (
		dbCart db.Cart
		err    error
	)
	if owner.UserID != "" {
		dbCart, err = r.q.GetCartByUser(ctx, pgText(owner.UserID))
	} else {
		dbCart, err = r.q.GetCartBySession(ctx, pgText(owner.SessionToken))
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	rows, err := r.q.GetCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	cart := mapCartToDomain(dbCart)
	cart.Items = mapGetCartItemsRowsToDomain(rows)

	return cart, nil
}

func (r *cartRepository) CreateCart(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}

	dbCart, err := r.q.CreateCart(ctx, db.CreateCartParams{
		ID:           uuid.New(),
		UserID:       pgText(owner.UserID),
		SessionToken: pgText(owner.SessionToken),
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.CreateCart: %w", err)
	}

	return mapCartToDomain(dbCart), nil
}

// AddItem inserts item, or adds its quantity to the item already referencing the same purchasable.
func (r *cartRepository) AddItem(ctx context.Context, cartID uuid.UUID, item domain.CartItem) error {
	if cartID == uuid.Nil {
		return fmt.Errorf("cartID is empty")
	}
	if item.Ref.IsZero() {
		return fmt.Errorf("item purchasable is empty")
	}
	if item.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	err := r.q.AddItem(ctx, db.AddItemParams{
		ID:              id,
		CartID:          cartID,
		PurchasableType: item.Ref.Type,
		PurchasableID:   item.Ref.ID,
		Quantity:        int32(item.Quantity),
	})
	if err != nil {
		return fmt.Errorf("q.AddItem: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error) {
	if cartID == uuid.Nil {
		return false, fmt.Errorf("cartID is empty")
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		CartID: cartID,
		ID:     itemID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if err := r.q.ClearItems(ctx, cartID); err != nil {
		return fmt.Errorf("q.ClearItems: %w", err)
	}
	return nil
}

func (r *cartRepository) MergeCarts(ctx context.Context, from, into uuid.UUID) error {
	if from == into {
		return fmt.Errorf("cannot merge cart[%s] into itself", from)
	}

	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		if err := q.MergeCartItems(ctx, db.MergeCartItemsParams{IntoCartID: into, FromCartID: from}); err != nil {
			return struct{}{}, fmt.Errorf("q.MergeCartItems: %w", err)
		}

		if _, err := q.DeleteCart(ctx, from); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCart: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

func (r *cartRepository) DeleteOrphanedCarts(ctx context.Context) (int64, error) {
	n, err := r.q.DeleteOrphanedCarts(ctx)
	if err != nil {
		return 0, fmt.Errorf("q.DeleteOrphanedCarts: %w", err)
	}
	return n, nil
}

func mapCartToDomain(c db.Cart) domain.Cart {
	return domain.Cart{
		ID: c.ID,
		Owner: domain.CartOwner{
			UserID:       textValue(c.UserID),
			SessionToken: textValue(c.SessionToken),
		},
		CreatedAt: c.CreatedAt,
	}
}

func mapGetCartItemsRowsToDomain(rows []db.GetCartItemsRow) []domain.CartItem {
	var items []domain.CartItem

	for _, row := range rows {
		items = append(items, domain.CartItem{
			ID:        row.ID,
			Ref:       domain.PurchasableRef{Type: row.PurchasableType, ID: row.PurchasableID},
			Quantity:  int(row.Quantity),
			CreatedAt: row.CreatedAt,
		})
	}

	return items
}
