package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nikolayk812/effective-orders/internal/service"
	"github.com/rs/zerolog"
)

type Postbacks interface {
	Handle(ctx context.Context, form url.Values) (service.PostbackResult, error)
}

type PostbackHandler struct {
	postbacks Postbacks
	logger    *zerolog.Logger
}

func NewPostbackHandler(postbacks Postbacks, logger *zerolog.Logger) *PostbackHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &PostbackHandler{postbacks: postbacks, logger: logger}
}

// Moneris answers the hosted payment page postback with a redirect to the
// purchased or declined page carried in the form.
func (h *PostbackHandler) Moneris(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return
	}

	result, err := h.postbacks.Handle(r.Context(), r.PostForm)
	if err != nil {
		if result.RedirectURL == "" {
			if respondDomainError(w, err) {
				return
			}
			h.logger.Error().Err(err).Msg("moneris postback failed")
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		h.logger.Error().Err(err).Int64("order_id", result.Order.ID).Msg("moneris postback failed")
	}

	if result.RedirectURL == "" {
		respondJSON(w, http.StatusOK, map[string]bool{"purchased": result.Purchased})
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
