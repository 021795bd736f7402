package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/rs/zerolog"
)

const providerNone = "none"

type OrderService struct {
	orders   port.OrderRepository
	resolver port.PurchasableResolver
	notifier port.Notifier
	settings domain.Settings
	logger   *zerolog.Logger

	users    port.UserDirectory
	products port.ProductRepository
	now      func() time.Time
}

type OrderServiceOption func(*OrderService)

// WithUsers attaches buyers loaded from the host application to orders.
func WithUsers(users port.UserDirectory) OrderServiceOption {
	return func(s *OrderService) { s.users = users }
}

// WithProducts enables orders built from custom product lines.
func WithProducts(products port.ProductRepository) OrderServiceOption {
	return func(s *OrderService) { s.products = products }
}

func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(
	orders port.OrderRepository,
	resolver port.PurchasableResolver,
	notifier port.Notifier,
	settings domain.Settings,
	logger *zerolog.Logger,
	opts ...OrderServiceOption,
) (*OrderService, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders repository is nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("purchasable resolver is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &OrderService{
		orders:   orders,
		resolver: resolver,
		notifier: notifier,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *OrderService) Settings() domain.Settings {
	return s.settings
}

type SaveOptions struct {
	SkipValidation       bool
	SkipBuyerValidations bool
}

// Save assigns totals, validates and persists the order. An update only succeeds
// while the store still holds the state the order was loaded with.
func (s *OrderService) Save(ctx context.Context, order *domain.Order, opts SaveOptions) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	// saving without validation keeps already assigned totals
	switch {
	case order.TotalsPinned():
		// pinned totals stay, the rate is still recorded for the billing address
		if err := order.AssignTaxRate(s.settings); err != nil {
			return fmt.Errorf("order.AssignTaxRate: %w", err)
		}
	case !opts.SkipValidation || order.Total == nil:
		if err := order.AssignTotals(s.settings); err != nil {
			return fmt.Errorf("order.AssignTotals: %w", err)
		}
	}

	if !opts.SkipValidation {
		errs := order.Validate(s.settings, domain.ValidateOptions{SkipBuyerValidations: opts.SkipBuyerValidations})
		if len(errs) > 0 {
			return errs
		}
	}

	if order.IsNew() {
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.CreateOrder: %w", err)
		}
		return nil
	}

	if err := s.orders.UpdateOrder(ctx, order, order.StoredState()); err != nil {
		return fmt.Errorf("orders.UpdateOrder: %w", err)
	}

	return nil
}

type PurchaseParams struct {
	Details  map[string]string
	Provider string
	Card     string

	SkipValidation       bool
	SkipBuyerValidations bool
	SkipEmail            bool
}

// Purchase marks the order purchased and persists it. It reports false without
// side effects when the order is already purchased. On failure the order is
// rolled back and an *domain.OrderPurchaseError is returned.
func (s *OrderService) Purchase(ctx context.Context, order *domain.Order, p PurchaseParams) (bool, error) {
	if order == nil {
		return false, fmt.Errorf("order is nil")
	}
	if order.IsPurchased() {
		return false, nil
	}

	checkpoint := order.Checkpoint()
	order.MarkPurchased(p.Details, providerOrNone(p.Provider), p.Card, s.now())

	err := s.Save(ctx, order, SaveOptions{
		SkipValidation:       p.SkipValidation,
		SkipBuyerValidations: p.SkipBuyerValidations,
	})
	if err != nil {
		order.Rollback(checkpoint)

		var errs domain.ValidationErrors
		errors.As(err, &errs)
		return false, &domain.OrderPurchaseError{Errors: errs, Err: err}
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("provider", order.PaymentProvider).
		Int64("total", order.Totals().Total).
		Msg("order purchased")

	s.runCallbacks(ctx, order, true)

	if !p.SkipEmail {
		s.SendOrderReceipts(ctx, order)
	}

	return true, nil
}

type DeclineParams struct {
	Details  map[string]string
	Provider string
	Card     string

	SkipValidation bool
}

// Decline marks the order declined and persists it. It reports false when the
// order is already declined and fails with domain.ErrAlreadyPurchased for a purchased order.
func (s *OrderService) Decline(ctx context.Context, order *domain.Order, p DeclineParams) (bool, error) {
	if order == nil {
		return false, fmt.Errorf("order is nil")
	}
	if order.IsDeclined() {
		return false, nil
	}
	if order.IsPurchased() {
		return false, domain.ErrAlreadyPurchased
	}

	checkpoint := order.Checkpoint()
	order.MarkDeclined(p.Details, providerOrNone(p.Provider), p.Card)

	if err := s.Save(ctx, order, SaveOptions{SkipValidation: p.SkipValidation}); err != nil {
		order.Rollback(checkpoint)

		var errs domain.ValidationErrors
		errors.As(err, &errs)
		return false, &domain.OrderDeclineError{Errors: errs, Err: err}
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("provider", order.PaymentProvider).
		Msg("order declined")

	s.runCallbacks(ctx, order, false)

	return true, nil
}

// CreateAsPending is the administrative checkout: buyer validations are skipped
// and invalid addresses are dropped.
func (s *OrderService) CreateAsPending(ctx context.Context, order *domain.Order, sendPaymentRequest bool) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	checkpoint := order.Checkpoint()
	order.MarkPending()

	if hasInvalidAddress(order) {
		order.BillingAddress = nil
		order.ShippingAddress = nil
	}

	if err := s.Save(ctx, order, SaveOptions{SkipBuyerValidations: true}); err != nil {
		order.Rollback(checkpoint)
		return err
	}

	if sendPaymentRequest {
		s.SendPaymentRequest(ctx, order)
	}

	return nil
}

// CheckoutByCheque leaves the order pending until the cheque is received.
func (s *OrderService) CheckoutByCheque(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.State.IsFinal() {
		return domain.ErrOrderImmutable
	}

	checkpoint := order.Checkpoint()
	order.MarkPending()
	order.PaymentProvider = domain.ProviderCheque

	if err := s.Save(ctx, order, SaveOptions{}); err != nil {
		order.Rollback(checkpoint)
		return err
	}

	s.SendPendingInvoice(ctx, order)

	return nil
}

// CreateFromCart builds a pending order for userID from the cart items.
func (s *OrderService) CreateFromCart(ctx context.Context, userID string, cart domain.Cart) (*domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}
	if cart.IsEmpty() {
		errs := domain.ValidationErrors{}
		errs.Add("order_items", "No items are present. Please add one or more item to your cart.")
		return nil, errs
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(user, s.settings)
	order.UserID = userID

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Purchasable != nil {
			continue
		}
		p, err := s.resolver.Resolve(ctx, item.Ref)
		if err != nil {
			return nil, fmt.Errorf("resolver.Resolve: %w", err)
		}
		item.Purchasable = p
	}

	if _, err := order.AddCart(cart); err != nil {
		return nil, fmt.Errorf("order.AddCart: %w", err)
	}

	order.MarkPending()
	if err := s.Save(ctx, order, SaveOptions{}); err != nil {
		return nil, err
	}

	return order, nil
}

type CustomLine struct {
	Title     string
	Price     int64
	Quantity  int
	TaxExempt bool
}

// CreateCustomPending creates a product for every custom line and saves an
// administrative pending order for userID.
func (s *OrderService) CreateCustomPending(ctx context.Context, userID, note string, lines []CustomLine, sendPaymentRequest bool) (*domain.Order, error) {
	if s.products == nil {
		return nil, fmt.Errorf("custom products are not enabled")
	}
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	for i, line := range lines {
		if line.Quantity > domain.MaxQuantity {
			return nil, fmt.Errorf("line[%d]: %w", i, domain.ErrInvalidQuantity)
		}
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(user, s.settings)
	order.UserID = userID
	order.Note = note

	for i, line := range lines {
		product := &domain.Product{
			ProductTitle: line.Title,
			ProductPrice: line.Price,
			IsTaxExempt:  line.TaxExempt,
		}
		if err := s.products.CreateProduct(ctx, product); err != nil {
			return nil, fmt.Errorf("products.CreateProduct line[%d]: %w", i, err)
		}

		if _, err := order.Add(max(line.Quantity, 1), product); err != nil {
			return nil, fmt.Errorf("order.Add: %w", err)
		}
	}

	if err := s.CreateAsPending(ctx, order, sendPaymentRequest); err != nil {
		return nil, err
	}

	return order, nil
}

// Get loads an order by its public order number.
func (s *OrderService) Get(ctx context.Context, param string) (domain.Order, error) {
	id, err := domain.ParseOrderParam(param, s.settings)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if s.users != nil && order.UserID != "" {
		user, err := s.users.GetUser(ctx, order.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("buyer not loaded")
		} else {
			order.User = &user
		}
	}

	return order, nil
}

func (s *OrderService) ListPurchasedBy(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	orders, err := s.orders.ListOrders(ctx, port.OrderFilter{UserID: userID, State: domain.StatePurchased})
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return orders, nil
}

// SendOrderReceipts sends the receipts enabled in the mailer settings.
func (s *OrderService) SendOrderReceipts(ctx context.Context, order *domain.Order) {
	mailer := s.settings.Mailer

	if mailer.SendOrderReceiptToAdmin {
		s.SendOrderReceiptToAdmin(ctx, order)
	}
	if mailer.SendOrderReceiptToBuyer {
		s.SendOrderReceiptToBuyer(ctx, order)
	}
	if mailer.SendOrderReceiptToSeller {
		s.SendOrderReceiptToSellers(ctx, order)
	}
}

func (s *OrderService) SendOrderReceiptToAdmin(ctx context.Context, order *domain.Order) bool {
	if !order.IsPurchased() {
		return false
	}
	return s.deliver(order, "order_receipt_to_admin", func() error {
		return s.notifier.SendReceiptToAdmin(ctx, *order)
	})
}

func (s *OrderService) SendOrderReceiptToBuyer(ctx context.Context, order *domain.Order) bool {
	if !order.IsPurchased() {
		return false
	}
	return s.deliver(order, "order_receipt_to_buyer", func() error {
		return s.notifier.SendReceiptToBuyer(ctx, *order)
	})
}

// SendOrderReceiptToSellers sends one receipt per marketplace seller. Only
// stripe_connect purchases have sellers.
func (s *OrderService) SendOrderReceiptToSellers(ctx context.Context, order *domain.Order) bool {
	if !s.settings.StripeConnectEnabled {
		return false
	}
	purchased, err := order.IsPurchasedBy(domain.ProviderStripeConnect, s.settings)
	if err != nil || !purchased {
		return false
	}

	groups := order.SellerItems()
	sent := len(groups) > 0
	for _, sellerID := range slices.Sorted(maps.Keys(groups)) {
		items := groups[sellerID]
		ok := s.deliver(order, "order_receipt_to_seller", func() error {
			return s.notifier.SendReceiptToSeller(ctx, *order, sellerID, items)
		})
		sent = sent && ok
	}

	return sent
}

func (s *OrderService) SendPaymentRequest(ctx context.Context, order *domain.Order) bool {
	if order.IsPurchased() {
		return false
	}
	return s.deliver(order, "payment_request_to_buyer", func() error {
		return s.notifier.SendPaymentRequestToBuyer(ctx, *order)
	})
}

func (s *OrderService) SendPendingInvoice(ctx context.Context, order *domain.Order) bool {
	if order.IsPurchased() {
		return false
	}
	return s.deliver(order, "pending_order_invoice_to_buyer", func() error {
		return s.notifier.SendPendingInvoiceToBuyer(ctx, *order)
	})
}

func (s *OrderService) deliver(order *domain.Order, notification string, send func() error) bool {
	if err := send(); err != nil {
		s.logger.Error().
			Err(err).
			Int64("order_id", order.ID).
			Str("notification", notification).
			Msg("notification failed")
		return false
	}
	return true
}

// runCallbacks notifies every purchasable of the committed transition. Errors are logged.
func (s *OrderService) runCallbacks(ctx context.Context, order *domain.Order, purchased bool) {
	for i := range order.Items {
		item := &order.Items[i]

		p, err := s.purchasableFor(ctx, item)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Str("purchasable", item.Purchasable.String()).
				Msg("purchasable not resolved")
			continue
		}

		if purchased {
			err = p.Purchased(ctx, order, item)
		} else {
			err = p.Declined(ctx, order, item)
		}
		if err != nil {
			s.logger.Error().
				Err(err).
				Int64("order_id", order.ID).
				Str("purchasable", item.Purchasable.String()).
				Bool("purchased", purchased).
				Msg("purchasable callback failed")
		}
	}
}

func (s *OrderService) purchasableFor(ctx context.Context, item *domain.OrderItem) (domain.Purchasable, error) {
	if p := item.LivePurchasable(); p != nil {
		return p, nil
	}

	p, err := s.resolver.Resolve(ctx, item.Purchasable)
	if err != nil {
		return nil, err
	}
	item.AttachPurchasable(p)

	return p, nil
}

func (s *OrderService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	if s.users == nil {
		return nil, nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("users.GetUser: %w", err)
	}

	return &user, nil
}

func hasInvalidAddress(o *domain.Order) bool {
	return (o.BillingAddress != nil && !o.BillingAddress.Valid()) ||
		(o.ShippingAddress != nil && !o.ShippingAddress.Valid())
}

func providerOrNone(provider string) string {
	if provider == "" {
		return providerNone
	}
	return provider
}
