package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
)

type AddItemRequestDTO struct {
	PurchasableType string `json:"purchasable_type"`
	PurchasableID   string `json:"purchasable_id"`
	Quantity        int    `json:"quantity"`
}

type CustomLineDTO struct {
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	TaxExempt bool   `json:"tax_exempt"`
}

type CreatePendingRequestDTO struct {
	UserID             string          `json:"user_id"`
	Note               string          `json:"note"`
	SendPaymentRequest bool            `json:"send_payment_request"`
	Lines              []CustomLineDTO `json:"lines"`
}

type CartItemDTO struct {
	ID              uuid.UUID `json:"id"`
	PurchasableType string    `json:"purchasable_type"`
	PurchasableID   string    `json:"purchasable_id"`
	Title           string    `json:"title,omitempty"`
	Price           int64     `json:"price,omitempty"`
	Quantity        int       `json:"quantity"`
}

type CartDTO struct {
	ID    uuid.UUID     `json:"id"`
	Size  int           `json:"size"`
	Items []CartItemDTO `json:"items"`
}

type OrderItemDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	TaxExempt bool   `json:"tax_exempt"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderDTO struct {
	OrderNumber     string          `json:"order_number"`
	State           string          `json:"state"`
	PurchasedAt     *time.Time      `json:"purchased_at,omitempty"`
	Note            string          `json:"note,omitempty"`
	PaymentProvider string          `json:"payment_provider,omitempty"`
	Currency        string          `json:"currency"`
	Subtotal        int64           `json:"subtotal"`
	Tax             int64           `json:"tax"`
	Total           int64           `json:"total"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	Items           []OrderItemDTO  `json:"items"`
}

func toCartDTO(cart domain.Cart) CartDTO {
	dto := CartDTO{
		ID:    cart.ID,
		Size:  cart.Size(),
		Items: make([]CartItemDTO, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		itemDTO := CartItemDTO{
			ID:              item.ID,
			PurchasableType: item.Ref.Type,
			PurchasableID:   item.Ref.ID,
			Quantity:        item.Quantity,
		}
		if item.Purchasable != nil {
			itemDTO.Title = item.Purchasable.Title()
			itemDTO.Price = item.Purchasable.Price()
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}

func toOrderDTO(order domain.Order, s domain.Settings) OrderDTO {
	totals := order.Totals()

	dto := OrderDTO{
		OrderNumber:     order.Param(s),
		State:           order.State.String(),
		PurchasedAt:     order.PurchasedAt,
		Note:            order.Note,
		PaymentProvider: order.PaymentProvider,
		Currency:        s.Currency.String(),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Total:           totals.Total,
		BillingAddress:  order.BillingAddress,
		ShippingAddress: order.ShippingAddress,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
			TaxExempt: item.TaxExempt,
			Subtotal:  item.Subtotal(),
		})
	}
	return dto
}
