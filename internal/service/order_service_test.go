package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type orderFixture struct {
	settings domain.Settings
	repo     *fakeOrderRepo
	notifier *fakeNotifier
	registry *service.Registry
	widgets  map[string]*widget
	buyer    domain.User
	now      time.Time
	svc      *service.OrderService
}

func testSettings() domain.Settings {
	return domain.Settings{
		RequireBillingAddress: true,
		AllowFreeOrders:       true,
		PaymentProviders: domain.ProviderSet(domain.ProviderMoneris, domain.ProviderStripe,
			domain.ProviderStripeConnect, domain.ProviderPayPal, domain.ProviderCheque),
		OtherPaymentProviders: domain.ProviderSet(domain.ProviderAdmin, domain.ProviderFree, domain.ProviderPretend),
		TaxRates:              domain.FlatTaxRate(decimal.NewFromInt(5)),
		Currency:              currency.CAD,
		Mailer: domain.MailerSettings{
			SendOrderReceiptToAdmin:  true,
			SendOrderReceiptToBuyer:  true,
			SendOrderReceiptToSeller: true,
		},
	}
}

func newOrderFixture(t *testing.T, mutate ...func(s *domain.Settings)) *orderFixture {
	t.Helper()

	f := &orderFixture{
		settings: testSettings(),
		repo:     newFakeOrderRepo(),
		notifier: &fakeNotifier{},
		registry: service.NewRegistry(),
		widgets:  map[string]*widget{},
		now:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
	for _, m := range mutate {
		m(&f.settings)
	}

	f.buyer = domain.User{
		ID:    gofakeit.UUID(),
		Email: gofakeit.Email(),
		BillingAddress: &domain.Address{
			FullName:    gofakeit.Name(),
			Address1:    gofakeit.Street(),
			City:        gofakeit.City(),
			StateCode:   "ON",
			CountryCode: "CA",
			PostalCode:  "K1A 0B1",
		},
	}

	f.registry.Register(widgetType, func(_ context.Context, id string) (domain.Purchasable, error) {
		w, ok := f.widgets[id]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		return w, nil
	})

	svc, err := service.NewOrderService(f.repo, f.registry, f.notifier, f.settings, nil,
		service.WithClock(func() time.Time { return f.now }),
		service.WithUsers(fakeUsers{f.buyer.ID: f.buyer}),
	)
	require.NoError(t, err)
	f.svc = svc

	return f
}

func (f *orderFixture) widget(price int64) *widget {
	w := &widget{id: gofakeit.UUID(), title: gofakeit.ProductName(), price: price}
	f.widgets[w.id] = w
	return w
}

// newOrder is the 1000 x 2 + 3000 x 1 order, 5250 with 5% tax.
func (f *orderFixture) newOrder(t *testing.T) (*domain.Order, []*widget) {
	t.Helper()

	first, second := f.widget(1000), f.widget(3000)

	order := domain.NewOrder(&f.buyer, f.settings)
	_, err := order.Add(2, first)
	require.NoError(t, err)
	_, err = order.Add(1, second)
	require.NoError(t, err)

	return order, []*widget{first, second}
}

func TestNewOrderService(t *testing.T) {
	_, err := service.NewOrderService(nil, service.NewRegistry(), &fakeNotifier{}, testSettings(), nil)
	assert.EqualError(t, err, "orders repository is nil")

	_, err = service.NewOrderService(newFakeOrderRepo(), nil, &fakeNotifier{}, testSettings(), nil)
	assert.EqualError(t, err, "purchasable resolver is nil")

	_, err = service.NewOrderService(newFakeOrderRepo(), service.NewRegistry(), nil, testSettings(), nil)
	assert.EqualError(t, err, "notifier is nil")
}

func TestSave_AssignsTotals(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)

	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	assert.NotZero(t, order.ID)
	assert.Equal(t, domain.Totals{Subtotal: 5000, Tax: 250, Total: 5250}, order.Totals())
	assert.True(t, order.TaxRate.Decimal.Equal(decimal.NewFromInt(5)))

	stored := f.repo.stored(order.ID)
	assert.Equal(t, int64(5250), *stored.Total)
	assert.Equal(t, domain.StateDraft, stored.State)
}

func TestSave_PinnedTotalsKept(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	order.PinTotals(4000, 0, 4000)

	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	assert.Equal(t, domain.Totals{Subtotal: 4000, Tax: 0, Total: 4000}, order.Totals())
	assert.True(t, order.TotalsPinned())
	require.True(t, order.TaxRate.Valid)
	assert.True(t, order.TaxRate.Decimal.Equal(decimal.NewFromInt(5)))
}

func TestPurchase_PinnedTotalsKept(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	order.PinTotals(4000, 200, 4200)

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{
		Provider: domain.ProviderMoneris,
		Card:     "V",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, domain.StatePurchased, order.State)
	assert.Equal(t, domain.Totals{Subtotal: 4000, Tax: 200, Total: 4200}, order.Totals())

	stored := f.repo.stored(order.ID)
	assert.Equal(t, domain.StatePurchased, stored.State)
	assert.Equal(t, domain.Totals{Subtotal: 4000, Tax: 200, Total: 4200}, stored.Totals())
}

func TestSave_ValidationErrors(t *testing.T) {
	f := newOrderFixture(t)
	order := domain.NewOrder(&f.buyer, f.settings)

	err := f.svc.Save(t.Context(), order, service.SaveOptions{})

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "order_items")
	assert.True(t, order.IsNew())
}

func TestSave_InvalidTaxRate(t *testing.T) {
	f := newOrderFixture(t, func(s *domain.Settings) {
		s.TaxRates = domain.FlatTaxRate(decimal.RequireFromString("0.05"))
	})
	order, _ := f.newOrder(t)

	err := f.svc.Save(t.Context(), order, service.SaveOptions{})

	var rateErr *domain.InvalidTaxRateError
	assert.ErrorAs(t, err, &rateErr)
}

func TestPurchase(t *testing.T) {
	f := newOrderFixture(t)
	order, widgets := f.newOrder(t)

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{
		Details:  map[string]string{"txn_num": "123"},
		Provider: domain.ProviderMoneris,
		Card:     "V",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, domain.StatePurchased, order.State)
	require.NotNil(t, order.PurchasedAt)
	assert.Equal(t, f.now, *order.PurchasedAt)
	assert.Equal(t, domain.ProviderMoneris, order.PaymentProvider)
	assert.Equal(t, "V", order.PaymentCard)
	assert.Equal(t, domain.Totals{Subtotal: 5000, Tax: 250, Total: 5250}, order.Totals())

	stored := f.repo.stored(order.ID)
	assert.Equal(t, domain.StatePurchased, stored.State)
	assert.Equal(t, map[string]string{"txn_num": "123"}, stored.Payment)

	for _, w := range widgets {
		purchased, declined := w.calls()
		assert.Equal(t, 1, purchased)
		assert.Zero(t, declined)
	}

	// seller receipts only go out for stripe_connect purchases
	assert.Equal(t, []string{"admin", "buyer"}, f.notifier.kinds())
}

func TestPurchase_AlreadyPurchased(t *testing.T) {
	f := newOrderFixture(t)
	order, widgets := f.newOrder(t)

	params := service.PurchaseParams{Provider: domain.ProviderMoneris}
	_, err := f.svc.Purchase(t.Context(), order, params)
	require.NoError(t, err)

	ok, err := f.svc.Purchase(t.Context(), order, params)
	require.NoError(t, err)
	assert.False(t, ok)

	purchased, _ := widgets[0].calls()
	assert.Equal(t, 1, purchased)
	assert.Len(t, f.notifier.kinds(), 2)
}

func TestPurchase_Defaults(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{SkipValidation: true, SkipEmail: true})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, map[string]string{"details": "none"}, order.Payment)
	assert.Equal(t, "none", order.PaymentProvider)
	assert.Equal(t, "none", order.PaymentCard)
	assert.Empty(t, f.notifier.kinds())
}

func TestPurchase_ValidationFailureRollsBack(t *testing.T) {
	f := newOrderFixture(t)
	order, widgets := f.newOrder(t)
	order.UserID = ""
	order.User = nil

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: domain.ProviderMoneris})
	assert.False(t, ok)

	var purchaseErr *domain.OrderPurchaseError
	require.ErrorAs(t, err, &purchaseErr)
	assert.Contains(t, purchaseErr.Errors, "user_id")
	assert.Contains(t, err.Error(), "user_id can't be blank")

	assert.Equal(t, domain.StateDraft, order.State)
	assert.Nil(t, order.PurchasedAt)
	assert.Nil(t, order.Payment)
	assert.Empty(t, order.PaymentProvider)
	assert.True(t, order.IsNew())

	purchased, _ := widgets[0].calls()
	assert.Zero(t, purchased)
	assert.Empty(t, f.notifier.kinds())
}

func TestPurchase_UnknownProviderRejected(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)

	_, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: "bitcoin"})

	var purchaseErr *domain.OrderPurchaseError
	require.ErrorAs(t, err, &purchaseErr)
	assert.Contains(t, purchaseErr.Errors, "payment_provider")
	assert.Equal(t, domain.StateDraft, order.State)
}

func TestPurchase_PersistenceFailureRollsBack(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	earlier := f.now.Add(-time.Hour)
	order.PurchasedAt = &earlier
	order.Payment = map[string]string{"attempt": "1"}

	dbErr := errors.New("connection reset")
	f.repo.failWrites = dbErr

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: domain.ProviderMoneris})
	assert.False(t, ok)
	assert.ErrorIs(t, err, dbErr)

	var purchaseErr *domain.OrderPurchaseError
	require.ErrorAs(t, err, &purchaseErr)
	assert.Empty(t, purchaseErr.Errors)

	assert.Equal(t, domain.StateDraft, order.State)
	assert.Equal(t, &earlier, order.PurchasedAt)
	assert.Equal(t, map[string]string{"attempt": "1"}, order.Payment)
	assert.Equal(t, domain.StateDraft, f.repo.stored(order.ID).State)
}

func TestPurchase_StaleOrder(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	order.MarkPending()
	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	// a concurrent postback purchased the order first
	f.repo.setState(order.ID, domain.StatePurchased)

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: domain.ProviderMoneris})
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrStaleOrder)
	assert.Equal(t, domain.StatePending, order.State)
	assert.Empty(t, f.notifier.kinds())
}

func TestPurchase_CallbackFailureIsolated(t *testing.T) {
	f := newOrderFixture(t)
	order, widgets := f.newOrder(t)
	widgets[0].failWith = errors.New("inventory service down")

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: domain.ProviderMoneris})
	require.NoError(t, err)
	assert.True(t, ok)

	for _, w := range widgets {
		purchased, _ := w.calls()
		assert.Equal(t, 1, purchased)
	}
	assert.Equal(t, domain.StatePurchased, f.repo.stored(order.ID).State)
	assert.Len(t, f.notifier.kinds(), 2)
}

func TestPurchase_ResolvesPurchasablesOfLoadedOrder(t *testing.T) {
	f := newOrderFixture(t)
	order, widgets := f.newOrder(t)
	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	loaded, err := f.svc.Get(t.Context(), order.Param(f.settings))
	require.NoError(t, err)
	for i := range loaded.Items {
		loaded.Items[i].AttachPurchasable(nil)
	}

	_, err = f.svc.Purchase(t.Context(), &loaded, service.PurchaseParams{Provider: domain.ProviderAdmin, SkipEmail: true})
	require.NoError(t, err)

	for _, w := range widgets {
		purchased, _ := w.calls()
		assert.Equal(t, 1, purchased)
	}
}

func TestPurchase_NotificationFailureKeepsPurchase(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	f.notifier.fail = errors.New("broker unavailable")

	ok, err := f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: domain.ProviderMoneris})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.StatePurchased, f.repo.stored(order.ID).State)
}

func TestDecline(t *testing.T) {
	tests := []struct {
		name      string
		start     func(t *testing.T, f *orderFixture, o *domain.Order)
		wantOK    bool
		wantErr   error
		wantState domain.PurchaseState
		wantCalls int
	}{
		{
			name: "pending order: declined",
			start: func(t *testing.T, f *orderFixture, o *domain.Order) {
				o.MarkPending()
				require.NoError(t, f.svc.Save(t.Context(), o, service.SaveOptions{}))
			},
			wantOK:    true,
			wantState: domain.StateDeclined,
			wantCalls: 1,
		},
		{
			name:      "draft order: declined",
			start:     func(*testing.T, *orderFixture, *domain.Order) {},
			wantOK:    true,
			wantState: domain.StateDeclined,
			wantCalls: 1,
		},
		{
			name: "already declined: no-op",
			start: func(t *testing.T, f *orderFixture, o *domain.Order) {
				_, err := f.svc.Decline(t.Context(), o, service.DeclineParams{})
				require.NoError(t, err)
			},
			wantState: domain.StateDeclined,
			wantCalls: 1,
		},
		{
			name: "purchased order: error",
			start: func(t *testing.T, f *orderFixture, o *domain.Order) {
				_, err := f.svc.Purchase(t.Context(), o, service.PurchaseParams{Provider: domain.ProviderMoneris})
				require.NoError(t, err)
			},
			wantErr:   domain.ErrAlreadyPurchased,
			wantState: domain.StatePurchased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			order, widgets := f.newOrder(t)
			tt.start(t, f, order)

			ok, err := f.svc.Decline(t.Context(), order, service.DeclineParams{
				Details:  map[string]string{"message": "DECLINED"},
				Provider: domain.ProviderMoneris,
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantState, order.State)

			_, declined := widgets[0].calls()
			assert.Equal(t, tt.wantCalls, declined)

			if tt.wantState == domain.StateDeclined {
				assert.Nil(t, order.PurchasedAt)
				assert.Equal(t, domain.StateDeclined, f.repo.stored(order.ID).State)
			}
		})
	}
}

func TestDecline_PersistenceFailureRollsBack(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	order.MarkPending()
	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	f.repo.failWrites = errors.New("disk full")

	ok, err := f.svc.Decline(t.Context(), order, service.DeclineParams{Provider: domain.ProviderMoneris})
	assert.False(t, ok)

	var declineErr *domain.OrderDeclineError
	require.ErrorAs(t, err, &declineErr)
	assert.Equal(t, domain.StatePending, order.State)
}

func TestSendOrderReceiptToSellers(t *testing.T) {
	tests := []struct {
		name        string
		stripe      bool
		provider    string
		wantSellers []string
	}{
		{
			name:        "stripe connect purchase: one receipt per seller",
			stripe:      true,
			provider:    domain.ProviderStripeConnect,
			wantSellers: []string{"seller-a", "seller-b"},
		},
		{
			name:     "stripe connect disabled: none",
			provider: domain.ProviderStripeConnect,
		},
		{
			name:     "other provider: none",
			stripe:   true,
			provider: domain.ProviderMoneris,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, func(s *domain.Settings) {
				s.StripeConnectEnabled = tt.stripe
				s.Mailer = domain.MailerSettings{SendOrderReceiptToSeller: true}
			})

			a1, a2, b := f.widget(1000), f.widget(2000), f.widget(500)
			a1.seller, a2.seller, b.seller = "seller-a", "seller-a", "seller-b"
			house := f.widget(700)

			order := domain.NewOrder(&f.buyer, f.settings)
			_, err := order.Add(1, b, a1, house, a2)
			require.NoError(t, err)

			_, err = f.svc.Purchase(t.Context(), order, service.PurchaseParams{Provider: tt.provider})
			require.NoError(t, err)

			var sellers []string
			for _, n := range f.notifier.sent {
				require.Equal(t, "seller", n.kind)
				sellers = append(sellers, n.sellerID)
				if n.sellerID == "seller-a" {
					assert.Equal(t, 2, n.items)
				}
			}
			assert.Equal(t, tt.wantSellers, sellers)
		})
	}
}

func TestCreateAsPending(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)
	order.ShippingAddress = &domain.Address{City: "Ottawa"}
	order.UserID = ""
	order.User = nil

	require.NoError(t, f.svc.CreateAsPending(t.Context(), order, true))

	assert.Equal(t, domain.StatePending, order.State)
	assert.Nil(t, order.BillingAddress)
	assert.Nil(t, order.ShippingAddress)
	assert.Equal(t, domain.StatePending, f.repo.stored(order.ID).State)
	assert.Equal(t, []string{"payment_request"}, f.notifier.kinds())
}

func TestCreateAsPending_NoItems(t *testing.T) {
	f := newOrderFixture(t)
	order := domain.NewOrder(&f.buyer, f.settings)

	err := f.svc.CreateAsPending(t.Context(), order, true)

	var errs domain.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "order_items")
	assert.Equal(t, domain.StateDraft, order.State)
	assert.Empty(t, f.notifier.kinds())
}

func TestCheckoutByCheque(t *testing.T) {
	f := newOrderFixture(t)
	order, _ := f.newOrder(t)

	require.NoError(t, f.svc.CheckoutByCheque(t.Context(), order))

	assert.Equal(t, domain.StatePending, order.State)
	assert.Equal(t, domain.ProviderCheque, order.PaymentProvider)
	assert.Equal(t, []string{"pending_invoice"}, f.notifier.kinds())

	purchased := domain.NewOrder(&f.buyer, f.settings)
	purchased.MarkPurchased(nil, domain.ProviderAdmin, "", f.now)
	assert.ErrorIs(t, f.svc.CheckoutByCheque(t.Context(), purchased), domain.ErrOrderImmutable)
}

func TestCreateFromCart(t *testing.T) {
	f := newOrderFixture(t)
	w := f.widget(1500)

	cart := domain.Cart{Owner: domain.CartOwner{UserID: f.buyer.ID}}
	cart.Items = []domain.CartItem{{Ref: w.Ref(), Quantity: 2}}

	order, err := f.svc.CreateFromCart(t.Context(), f.buyer.ID, cart)
	require.NoError(t, err)

	assert.Equal(t, domain.StatePending, order.State)
	assert.Equal(t, f.buyer.ID, order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, w.title, order.Items[0].Title)
	assert.Equal(t, int64(1500), order.Items[0].Price)
	assert.Equal(t, domain.Totals{Subtotal: 3000, Tax: 150, Total: 3150}, order.Totals())
	assert.Equal(t, f.buyer.BillingAddress.City, order.BillingAddress.City)

	_, err = f.svc.CreateFromCart(t.Context(), f.buyer.ID, domain.Cart{})
	var errs domain.ValidationErrors
	assert.ErrorAs(t, err, &errs)

	missing := domain.Cart{Items: []domain.CartItem{{Ref: domain.PurchasableRef{Type: widgetType, ID: "gone"}, Quantity: 1}}}
	_, err = f.svc.CreateFromCart(t.Context(), f.buyer.ID, missing)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGet(t *testing.T) {
	f := newOrderFixture(t, func(s *domain.Settings) { s.ObfuscateIDs = true })
	order, _ := f.newOrder(t)
	require.NoError(t, f.svc.Save(t.Context(), order, service.SaveOptions{}))

	param := order.Param(f.settings)
	assert.Regexp(t, `^\d{3}-\d{4}-\d{3}$`, param)

	got, err := f.svc.Get(t.Context(), param)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, f.buyer.Email, got.User.Email)

	_, err = f.svc.Get(t.Context(), "12")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListPurchasedBy(t *testing.T) {
	f := newOrderFixture(t)

	purchased, _ := f.newOrder(t)
	_, err := f.svc.Purchase(t.Context(), purchased, service.PurchaseParams{Provider: domain.ProviderMoneris, SkipEmail: true})
	require.NoError(t, err)

	pending, _ := f.newOrder(t)
	require.NoError(t, f.svc.CheckoutByCheque(t.Context(), pending))

	orders, err := f.svc.ListPurchasedBy(t.Context(), f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, purchased.ID, orders[0].ID)

	_, err = f.svc.ListPurchasedBy(t.Context(), "")
	assert.Error(t, err)
}

func TestCreateCustomPending(t *testing.T) {
	f := newOrderFixture(t)
	products := &fakeProducts{}
	svc, err := service.NewOrderService(f.repo, f.registry, f.notifier, f.settings, nil,
		service.WithProducts(products))
	require.NoError(t, err)

	order, err := svc.CreateCustomPending(t.Context(), f.buyer.ID, "phone order", []service.CustomLine{
		{Title: "Consulting", Price: 10000, Quantity: 2},
		{Title: "Shipping", Price: 1500, TaxExempt: true},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, domain.StatePending, order.State)
	assert.Equal(t, "phone order", order.Note)
	assert.Len(t, products.created, 2)
	assert.Equal(t, domain.Totals{Subtotal: 21500, Tax: 1000, Total: 22500}, order.Totals())
	assert.Empty(t, f.notifier.kinds())

	_, err = svc.CreateCustomPending(t.Context(), f.buyer.ID, "", []service.CustomLine{{Title: "Free"}}, false)
	var errs domain.ValidationErrors
	assert.ErrorAs(t, err, &errs)

	_, err = f.svc.CreateCustomPending(t.Context(), f.buyer.ID, "", nil, false)
	assert.EqualError(t, err, "custom products are not enabled")
}

func TestCreateCustomPending_QuantityAboveMax(t *testing.T) {
	f := newOrderFixture(t)
	products := &fakeProducts{}
	svc, err := service.NewOrderService(f.repo, f.registry, f.notifier, f.settings, nil,
		service.WithProducts(products))
	require.NoError(t, err)

	_, err = svc.CreateCustomPending(t.Context(), f.buyer.ID, "", []service.CustomLine{
		{Title: "Consulting", Price: 10000, Quantity: 1},
		{Title: "Bulk", Price: 100, Quantity: 4294967297},
	}, false)

	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, products.created)
}

type fakeProducts struct {
	created []domain.Product
}

func (p *fakeProducts) CreateProduct(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	product.ID = [16]byte{byte(len(p.created) + 1)}
	p.created = append(p.created, *product)
	return nil
}

func (p *fakeProducts) GetProduct(_ context.Context, id string) (domain.Product, error) {
	for _, product := range p.created {
		if product.ID.String() == id {
			return product, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}
