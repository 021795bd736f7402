package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/gateway/moneris"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/rs/zerolog"
)

// Postback form fields sent by the hosted payment page.
const (
	postbackOrderID        = "response_order_id"
	postbackResult         = "result"
	postbackTransactionKey = "transactionKey"
	postbackCard           = "card"
	postbackPurchasedURL   = "rvar_purchased_redirect_url"
	postbackDeclinedURL    = "rvar_declined_redirect_url"
	postbackAuthenticity   = "rvar_authenticity_token"
)

type PostbackResult struct {
	Order       domain.Order
	Purchased   bool
	RedirectURL string
	// AuthenticityToken is the caller's CSRF token carried through the payment page.
	AuthenticityToken string
}

// MonerisPostback settles orders from Moneris hosted payment page postbacks.
type MonerisPostback struct {
	orders   *OrderService
	verifier port.TransactionVerifier
	logger   *zerolog.Logger
}

func NewMonerisPostback(orders *OrderService, verifier port.TransactionVerifier, logger *zerolog.Logger) (*MonerisPostback, error) {
	if orders == nil {
		return nil, fmt.Errorf("order service is nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &MonerisPostback{
		orders:   orders,
		verifier: verifier,
		logger:   logger,
	}, nil
}

// Handle purchases or declines the order named by the postback and returns the
// redirect URL supplied in the form.
func (m *MonerisPostback) Handle(ctx context.Context, form url.Values) (PostbackResult, error) {
	params := flatten(form)

	purchasedURL := params[postbackPurchasedURL]
	declinedURL := params[postbackDeclinedURL]
	authenticity := params[postbackAuthenticity]
	delete(params, postbackPurchasedURL)
	delete(params, postbackDeclinedURL)
	delete(params, postbackAuthenticity)

	order, err := m.orders.Get(ctx, params[postbackOrderID])
	if err != nil {
		return PostbackResult{}, fmt.Errorf("orders.Get: %w", err)
	}

	result := PostbackResult{AuthenticityToken: authenticity}
	card := params[postbackCard]

	if order.IsPurchased() {
		m.alreadyPurchased(ctx, &order, params)
		return m.result(result, order, purchasedURL, declinedURL), nil
	}

	if params[postbackResult] != "1" || params[postbackTransactionKey] == "" {
		err := m.decline(ctx, &order, params, card)
		return m.result(result, order, purchasedURL, declinedURL), err
	}

	verified := map[string]string{}
	raw, err := m.verifier.Verify(ctx, params[postbackTransactionKey])
	if err != nil {
		// unverified payments are declined
		m.logger.Error().Err(err).Int64("order_id", order.ID).Msg("moneris verification failed")
	} else {
		verified = moneris.ParseVerifyResponse(raw)
	}

	details := maps.Clone(params)
	maps.Copy(details, verified)

	// only the verification response is trusted for the code
	code := moneris.ResponseCode(verified)
	if !moneris.Approved(code) {
		m.logger.Info().Int64("order_id", order.ID).Int("response_code", code).Msg("moneris transaction not approved")
		err := m.decline(ctx, &order, details, card)
		return m.result(result, order, purchasedURL, declinedURL), err
	}

	err = m.purchase(ctx, &order, details, card)
	return m.result(result, order, purchasedURL, declinedURL), err
}

func (m *MonerisPostback) purchase(ctx context.Context, order *domain.Order, details map[string]string, card string) error {
	_, err := m.orders.Purchase(ctx, order, PurchaseParams{
		Details:  details,
		Provider: domain.ProviderMoneris,
		Card:     card,
	})
	if errors.Is(err, domain.ErrStaleOrder) {
		return m.reconcile(ctx, order, details)
	}
	if err != nil {
		return fmt.Errorf("orders.Purchase: %w", err)
	}
	return nil
}

func (m *MonerisPostback) decline(ctx context.Context, order *domain.Order, details map[string]string, card string) error {
	_, err := m.orders.Decline(ctx, order, DeclineParams{
		Details:  details,
		Provider: domain.ProviderMoneris,
		Card:     card,
	})
	if errors.Is(err, domain.ErrStaleOrder) {
		return m.reconcile(ctx, order, details)
	}
	if err != nil {
		return fmt.Errorf("orders.Decline: %w", err)
	}
	return nil
}

// reconcile reloads an order changed by a concurrent postback. A purchase that
// won the race is kept.
func (m *MonerisPostback) reconcile(ctx context.Context, order *domain.Order, details map[string]string) error {
	fresh, err := m.orders.Get(ctx, domain.FormatOrderParam(order.ID, m.orders.Settings()))
	if err != nil {
		return fmt.Errorf("orders.Get: %w", err)
	}
	*order = fresh

	if order.IsPurchased() {
		m.alreadyPurchased(ctx, order, details)
	}
	return nil
}

// alreadyPurchased records the postback fields missing from the stored payment.
// Callbacks and receipts are not repeated.
func (m *MonerisPostback) alreadyPurchased(ctx context.Context, order *domain.Order, details map[string]string) {
	if !order.MergePayment(details) {
		return
	}

	if err := m.orders.Save(ctx, order, SaveOptions{SkipValidation: true}); err != nil {
		m.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("payment details not merged")
	}
}

func (m *MonerisPostback) result(r PostbackResult, order domain.Order, purchasedURL, declinedURL string) PostbackResult {
	r.Order = order
	r.Purchased = order.IsPurchased()
	if r.Purchased {
		r.RedirectURL = purchasedURL
	} else {
		r.RedirectURL = declinedURL
	}
	return r
}

func flatten(form url.Values) map[string]string {
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
