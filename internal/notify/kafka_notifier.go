package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types carried in the event_type header.
const (
	EventReceiptToAdmin  = "order_receipt_to_admin"
	EventReceiptToBuyer  = "order_receipt_to_buyer"
	EventReceiptToSeller = "order_receipt_to_seller"
	EventPaymentRequest  = "payment_request_to_buyer"
	EventPendingInvoice  = "pending_order_invoice_to_buyer"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes one event per notification for the host mailer.
type KafkaNotifier struct {
	writer   messageWriter
	settings domain.Settings
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewKafkaNotifier(writer messageWriter, settings domain.Settings, logger *zerolog.Logger) (*KafkaNotifier, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &KafkaNotifier{
		writer:   writer,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// NewWriter returns the kafka writer used by NewKafkaNotifier.
func NewWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (n *KafkaNotifier) SendReceiptToAdmin(ctx context.Context, order domain.Order) error {
	event := n.event(EventReceiptToAdmin, order, "Order Receipt: #"+order.Param(n.settings))
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) SendReceiptToBuyer(ctx context.Context, order domain.Order) error {
	event := n.event(EventReceiptToBuyer, order, "Order Receipt: #"+order.Param(n.settings))
	event.To = buyerEmail(order)
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) SendReceiptToSeller(ctx context.Context, order domain.Order, sellerID string, items []domain.OrderItem) error {
	verb := "have"
	if len(items) == 1 {
		verb = "has"
	}

	event := n.event(EventReceiptToSeller, order, fmt.Sprintf("%d of your products %s been purchased", len(items), verb))
	event.SellerID = sellerID
	event.Items = eventItems(items)
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) SendPaymentRequestToBuyer(ctx context.Context, order domain.Order) error {
	event := n.event(EventPaymentRequest, order, "Request for Payment: Invoice #"+order.Param(n.settings))
	event.To = buyerEmail(order)
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) SendPendingInvoiceToBuyer(ctx context.Context, order domain.Order) error {
	event := n.event(EventPendingInvoice, order, "Pending Order: #"+order.Param(n.settings))
	event.To = buyerEmail(order)
	return n.publish(ctx, event)
}

func (n *KafkaNotifier) event(eventType string, order domain.Order, subject string) Event {
	totals := order.Totals()

	return Event{
		Type:            eventType,
		Subject:         n.subject(subject),
		OrderID:         order.ID,
		OrderNumber:     order.Param(n.settings),
		UserID:          order.UserID,
		State:           order.State.String(),
		Currency:        n.settings.Currency.String(),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Total:           totals.Total,
		PaymentProvider: order.PaymentProvider,
		Items:           eventItems(order.Items),
		OccurredAt:      n.now().UTC(),
	}
}

func (n *KafkaNotifier) subject(subject string) string {
	return strings.TrimSpace(strings.TrimSpace(n.settings.Mailer.SubjectPrefix) + " " + subject)
}

func (n *KafkaNotifier) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	msg := kafka.Message{
		// one partition per order keeps its notifications ordered
		Key:   []byte(event.OrderNumber),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	n.logger.Debug().
		Int64("order_id", event.OrderID).
		Str("notification", event.Type).
		Msg("notification published")

	return nil
}

func buyerEmail(order domain.Order) string {
	if order.User == nil {
		return ""
	}
	return order.User.Email
}
