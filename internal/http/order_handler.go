package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/service"
	"github.com/rs/zerolog"
)

type Orders interface {
	CreateFromCart(ctx context.Context, userID string, cart domain.Cart) (*domain.Order, error)
	CreateCustomPending(ctx context.Context, userID, note string, lines []service.CustomLine, sendPaymentRequest bool) (*domain.Order, error)
	CheckoutByCheque(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, param string) (domain.Order, error)
	ListPurchasedBy(ctx context.Context, userID string) ([]domain.Order, error)
	Settings() domain.Settings
}

type OrderHandler struct {
	orders Orders
	carts  Carts
	logger *zerolog.Logger
}

func NewOrderHandler(orders Orders, carts Carts, logger *zerolog.Logger) *OrderHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderHandler{orders: orders, carts: carts, logger: logger}
}

// Checkout turns the caller's cart into a pending order and empties the cart.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	if c.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to check out")
		return
	}

	cart, err := h.carts.Current(r.Context(), c.UserID, c.SessionToken)
	if err != nil {
		h.fail(w, err)
		return
	}

	order, err := h.orders.CreateFromCart(r.Context(), c.UserID, cart)
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.carts.Clear(r.Context(), cart.Owner); err != nil {
		h.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("cart not cleared after checkout")
	}

	respondJSON(w, http.StatusCreated, toOrderDTO(*order, h.orders.Settings()))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.owned(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order, h.orders.Settings()))
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())
	if c.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to list orders")
		return
	}

	orders, err := h.orders.ListPurchasedBy(r.Context(), c.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order, h.orders.Settings()))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *OrderHandler) PayByCheque(w http.ResponseWriter, r *http.Request) {
	order, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.orders.CheckoutByCheque(r.Context(), &order); err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order, h.orders.Settings()))
}

// CreatePending is the administrative order for custom product lines.
func (h *OrderHandler) CreatePending(w http.ResponseWriter, r *http.Request) {
	var req CreatePendingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}

	lines := make([]service.CustomLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.CustomLine{
			Title:     l.Title,
			Price:     l.Price,
			Quantity:  l.Quantity,
			TaxExempt: l.TaxExempt,
		})
	}

	order, err := h.orders.CreateCustomPending(r.Context(), req.UserID, req.Note, lines, req.SendPaymentRequest)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderDTO(*order, h.orders.Settings()))
}

// owned loads the order named in the path. Orders of other users are reported missing.
func (h *OrderHandler) owned(w http.ResponseWriter, r *http.Request) (domain.Order, bool) {
	c := callerFrom(r.Context())
	if c.UserID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to view orders")
		return domain.Order{}, false
	}

	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.fail(w, err)
		return domain.Order{}, false
	}
	if order.UserID != c.UserID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return domain.Order{}, false
	}

	return order, true
}

func (h *OrderHandler) fail(w http.ResponseWriter, err error) {
	if respondDomainError(w, err) {
		return
	}
	h.logger.Error().Err(err).Msg("order request failed")
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
