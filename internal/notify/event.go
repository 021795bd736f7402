package notify

import (
	"context"
	"time"

	"github.com/nikolayk812/effective-orders/internal/domain"
)

// Event is the JSON payload of a notification message.
type Event struct {
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	To          string `json:"to,omitempty"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id,omitempty"`
	SellerID    string `json:"seller_id,omitempty"`
	State       string `json:"state"`

	Currency        string `json:"currency"`
	Subtotal        int64  `json:"subtotal"`
	Tax             int64  `json:"tax"`
	Total           int64  `json:"total"`
	PaymentProvider string `json:"payment_provider,omitempty"`

	Items      []EventItem `json:"items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type EventItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	TaxExempt bool   `json:"tax_exempt"`
	SellerID  string `json:"seller_id,omitempty"`
}

func eventItems(items []domain.OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, item := range items {
		out = append(out, EventItem{
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     item.Price,
			TaxExempt: item.TaxExempt,
			SellerID:  item.SellerID,
		})
	}
	return out
}

// Nop drops every notification.
type Nop struct{}

func (Nop) SendReceiptToAdmin(context.Context, domain.Order) error { return nil }
func (Nop) SendReceiptToBuyer(context.Context, domain.Order) error { return nil }
func (Nop) SendReceiptToSeller(context.Context, domain.Order, string, []domain.OrderItem) error {
	return nil
}
func (Nop) SendPaymentRequestToBuyer(context.Context, domain.Order) error { return nil }
func (Nop) SendPendingInvoiceToBuyer(context.Context, domain.Order) error { return nil }
