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

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) (port.ProductRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &productRepository{q: db.New(pool)}, nil
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{q: db.New(tx)}
}

// CreateProduct assigns an id when missing and fills the timestamps.
func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return fmt.Errorf("product is nil")
	}
	if err := product.Validate(); err != nil {
		return fmt.Errorf("product.Validate: %w", err)
	}

	id := product.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row, err := r.q.CreateProduct(ctx, db.CreateProductParams{
		ID:        id,
		Title:     product.ProductTitle,
		Price:     product.ProductPrice,
		TaxExempt: product.IsTaxExempt,
		SellerID:  pgText(product.ProductSeller),
	})
	if err != nil {
		return fmt.Errorf("q.CreateProduct: %w", err)
	}

	product.ID = id
	product.CreatedAt = row.CreatedAt
	product.UpdatedAt = row.UpdatedAt

	return nil
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product id[%s] is not valid: %w", id, domain.ErrProductNotFound)
	}

	row, err := r.q.GetProduct(ctx, productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	return domain.Product{
		ID:            row.ID,
		ProductTitle:  row.Title,
		ProductPrice:  row.Price,
		IsTaxExempt:   row.TaxExempt,
		ProductSeller: textValue(row.SellerID),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
