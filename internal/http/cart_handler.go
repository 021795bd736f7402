package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/rs/zerolog"
)

type Carts interface {
	Current(ctx context.Context, userID, sessionToken string) (domain.Cart, error)
	AddItem(ctx context.Context, owner domain.CartOwner, ref domain.PurchasableRef, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, owner domain.CartOwner, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, owner domain.CartOwner) error
	Resolve(ctx context.Context, cart *domain.Cart)
}

type CartHandler struct {
	carts  Carts
	logger *zerolog.Logger
}

func NewCartHandler(carts Carts, logger *zerolog.Logger) *CartHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.current(w, r)
	if !ok {
		return
	}

	h.carts.Resolve(r.Context(), &cart)
	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ref := domain.PurchasableRef{Type: req.PurchasableType, ID: req.PurchasableID}
	if ref.IsZero() {
		respondError(w, http.StatusBadRequest, "invalid_purchasable", "purchasable_type and purchasable_id are required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	current, ok := h.current(w, r)
	if !ok {
		return
	}

	cart, err := h.carts.AddItem(r.Context(), current.Owner, ref, req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartDTO(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id must be a uuid")
		return
	}

	current, ok := h.current(w, r)
	if !ok {
		return
	}

	removed, err := h.carts.RemoveItem(r.Context(), current.Owner, itemID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "not_found", "cart item not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// current returns the caller's cart and hands anonymous callers their session cookie.
func (h *CartHandler) current(w http.ResponseWriter, r *http.Request) (domain.Cart, bool) {
	c := callerFrom(r.Context())

	cart, err := h.carts.Current(r.Context(), c.UserID, c.SessionToken)
	if err != nil {
		h.fail(w, err)
		return domain.Cart{}, false
	}

	if token := cart.Owner.SessionToken; token != "" && token != c.SessionToken {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return cart, true
}

func (h *CartHandler) fail(w http.ResponseWriter, err error) {
	if respondDomainError(w, err) {
		return
	}
	h.logger.Error().Err(err).Msg("cart request failed")
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
