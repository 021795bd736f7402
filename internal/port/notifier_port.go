package port

import (
	"context"

	"github.com/nikolayk812/effective-orders/internal/domain"
)

// Notifier delivers order emails on a best-effort basis. Every call may fail
// independently without affecting the order.
type Notifier interface {
	SendReceiptToAdmin(ctx context.Context, order domain.Order) error
	SendReceiptToBuyer(ctx context.Context, order domain.Order) error
	SendReceiptToSeller(ctx context.Context, order domain.Order, sellerID string, items []domain.OrderItem) error
	SendPaymentRequestToBuyer(ctx context.Context, order domain.Order) error
	SendPendingInvoiceToBuyer(ctx context.Context, order domain.Order) error
}
