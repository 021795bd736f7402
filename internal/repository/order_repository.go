package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/effective-orders/internal/db"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
)

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) (port.OrderRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

type orderWriteResult struct {
	row   db.CreateOrderRow
	items []domain.OrderItem
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if !order.IsNew() {
		return fmt.Errorf("order[%d] is already persisted", order.ID)
	}

	params, err := mapOrderToCreateParams(order)
	if err != nil {
		return fmt.Errorf("mapOrderToCreateParams: %w", err)
	}

	result, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (orderWriteResult, error) {
		row, err := q.CreateOrder(ctx, params)
		if err != nil {
			return orderWriteResult{}, fmt.Errorf("q.CreateOrder: %w", err)
		}

		items, err := insertOrderItems(ctx, q, row.ID, order.Items)
		if err != nil {
			return orderWriteResult{}, fmt.Errorf("insertOrderItems: %w", err)
		}

		return orderWriteResult{row: row, items: items}, nil
	})
	if err != nil {
		return err
	}

	order.ID = result.row.ID
	order.CreatedAt = result.row.CreatedAt
	order.UpdatedAt = result.row.UpdatedAt
	order.Items = result.items
	order.MarkStored()

	return nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order *domain.Order, expected domain.PurchaseState) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.IsNew() {
		return fmt.Errorf("order is not persisted")
	}

	params, err := mapOrderToUpdateParams(order, expected)
	if err != nil {
		return fmt.Errorf("mapOrderToUpdateParams: %w", err)
	}

	result, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (orderWriteResult, error) {
		updatedAt, err := q.UpdateOrder(ctx, params)
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := q.GetOrder(ctx, order.ID); errors.Is(getErr, pgx.ErrNoRows) {
				return orderWriteResult{}, domain.ErrOrderNotFound
			}
			return orderWriteResult{}, domain.ErrStaleOrder
		}
		if err != nil {
			return orderWriteResult{}, fmt.Errorf("q.UpdateOrder: %w", err)
		}

		items, err := insertOrderItems(ctx, q, order.ID, order.Items)
		if err != nil {
			return orderWriteResult{}, fmt.Errorf("insertOrderItems: %w", err)
		}

		return orderWriteResult{row: db.CreateOrderRow{UpdatedAt: updatedAt}, items: items}, nil
	})
	if err != nil {
		return err
	}

	order.UpdatedAt = result.row.UpdatedAt
	order.Items = result.items
	order.MarkStored()

	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	row, err := r.q.GetOrder(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	itemRows, err := r.q.GetOrderItems(ctx, []int64{id})
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapOrderToDomain(row, itemRows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapOrderToDomain: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	params := db.ListOrdersParams{UserID: pgText(filter.UserID)}
	if filter.State != "" {
		params.PurchaseState = pgState(filter.State)
		if !params.PurchaseState.Valid {
			return nil, fmt.Errorf("filtering by state[%s] is not supported", filter.State)
		}
	}

	rows, err := r.q.ListOrders(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	itemRows, err := r.q.GetOrderItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	itemsByOrder := make(map[int64][]db.OrderItem, len(rows))
	for _, item := range itemRows {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := mapOrderToDomain(row, itemsByOrder[row.ID])
		if err != nil {
			return nil, fmt.Errorf("mapOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// insertOrderItems persists the items that have no id yet and returns the full list with ids assigned.
func insertOrderItems(ctx context.Context, q *db.Queries, orderID int64, items []domain.OrderItem) ([]domain.OrderItem, error) {
	result := make([]domain.OrderItem, len(items))
	copy(result, items)

	for i, item := range result {
		if item.ID != 0 {
			continue
		}

		row, err := q.CreateOrderItem(ctx, db.CreateOrderItemParams{
			OrderID:         orderID,
			Title:           item.Title,
			Quantity:        int32(item.Quantity),
			Price:           item.Price,
			TaxExempt:       item.TaxExempt,
			SellerID:        pgText(item.SellerID),
			PurchasableType: item.Purchasable.Type,
			PurchasableID:   item.Purchasable.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("q.CreateOrderItem: %w", err)
		}

		result[i].ID = row.ID
		result[i].OrderID = orderID
		result[i].CreatedAt = row.CreatedAt
	}

	return result, nil
}

type orderColumns struct {
	payment         []byte
	billingAddress  []byte
	shippingAddress []byte
}

func marshalOrderColumns(o *domain.Order) (orderColumns, error) {
	var (
		cols orderColumns
		err  error
	)

	if cols.payment, err = marshalPayment(o.Payment); err != nil {
		return orderColumns{}, fmt.Errorf("marshalPayment: %w", err)
	}
	if cols.billingAddress, err = marshalAddress(o.BillingAddress); err != nil {
		return orderColumns{}, fmt.Errorf("marshalAddress billing: %w", err)
	}
	if cols.shippingAddress, err = marshalAddress(o.ShippingAddress); err != nil {
		return orderColumns{}, fmt.Errorf("marshalAddress shipping: %w", err)
	}

	return cols, nil
}

func mapOrderToCreateParams(o *domain.Order) (db.CreateOrderParams, error) {
	cols, err := marshalOrderColumns(o)
	if err != nil {
		return db.CreateOrderParams{}, err
	}

	return db.CreateOrderParams{
		UserID:          pgText(o.UserID),
		PurchaseState:   pgState(o.State),
		PurchasedAt:     pgTimestamptz(o.PurchasedAt),
		Note:            o.Note,
		Payment:         cols.payment,
		PaymentProvider: o.PaymentProvider,
		PaymentCard:     o.PaymentCard,
		TaxRate:         o.TaxRate,
		Subtotal:        valueOrZero(o.Subtotal),
		Tax:             pgInt8(o.Tax),
		Total:           valueOrZero(o.Total),
		BillingAddress:  cols.billingAddress,
		ShippingAddress: cols.shippingAddress,
	}, nil
}

func mapOrderToUpdateParams(o *domain.Order, expected domain.PurchaseState) (db.UpdateOrderParams, error) {
	cols, err := marshalOrderColumns(o)
	if err != nil {
		return db.UpdateOrderParams{}, err
	}

	return db.UpdateOrderParams{
		UserID:          pgText(o.UserID),
		PurchaseState:   pgState(o.State),
		PurchasedAt:     pgTimestamptz(o.PurchasedAt),
		Note:            o.Note,
		Payment:         cols.payment,
		PaymentProvider: o.PaymentProvider,
		PaymentCard:     o.PaymentCard,
		TaxRate:         o.TaxRate,
		Subtotal:        valueOrZero(o.Subtotal),
		Tax:             pgInt8(o.Tax),
		Total:           valueOrZero(o.Total),
		BillingAddress:  cols.billingAddress,
		ShippingAddress: cols.shippingAddress,
		ID:              o.ID,
		ExpectedState:   pgState(expected),
	}, nil
}

func mapOrderToDomain(row db.Order, itemRows []db.OrderItem) (domain.Order, error) {
	state, err := domain.ParsePurchaseState(textValue(row.PurchaseState))
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.ParsePurchaseState: %w", err)
	}

	payment, err := unmarshalPayment(row.Payment)
	if err != nil {
		return domain.Order{}, fmt.Errorf("unmarshalPayment: %w", err)
	}

	billing, err := unmarshalAddress(row.BillingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("unmarshalAddress billing: %w", err)
	}

	shipping, err := unmarshalAddress(row.ShippingAddress)
	if err != nil {
		return domain.Order{}, fmt.Errorf("unmarshalAddress shipping: %w", err)
	}

	subtotal, total := row.Subtotal, row.Total

	order := domain.Order{
		ID:              row.ID,
		UserID:          textValue(row.UserID),
		State:           state,
		PurchasedAt:     timeValue(row.PurchasedAt),
		Note:            row.Note,
		Payment:         payment,
		PaymentProvider: row.PaymentProvider,
		PaymentCard:     row.PaymentCard,
		TaxRate:         row.TaxRate,
		Subtotal:        &subtotal,
		Tax:             int8Value(row.Tax),
		Total:           &total,
		BillingAddress:  billing,
		ShippingAddress: shipping,
		Items:           mapOrderItemsToDomain(itemRows),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	order.MarkStored()

	return order, nil
}

func mapOrderItemsToDomain(rows []db.OrderItem) []domain.OrderItem {
	var items []domain.OrderItem

	for _, row := range rows {
		items = append(items, domain.OrderItem{
			ID:          row.ID,
			OrderID:     row.OrderID,
			Title:       row.Title,
			Quantity:    int(row.Quantity),
			Price:       row.Price,
			TaxExempt:   row.TaxExempt,
			SellerID:    textValue(row.SellerID),
			Purchasable: domain.PurchasableRef{Type: row.PurchasableType, ID: row.PurchasableID},
			CreatedAt:   row.CreatedAt,
		})
	}

	return items
}
