package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/service"
)

type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps service errors to status codes. It reports false for
// errors it doesn't know, which the caller must log and answer with a 500.
func respondDomainError(w http.ResponseWriter, err error) bool {
	var errs domain.ValidationErrors
	if errors.As(err, &errs) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  errs.Error(),
			Code:   "validation_failed",
			Fields: errs,
		})
		return true
	}

	var rateErr *domain.InvalidTaxRateError
	if errors.As(err, &rateErr) {
		respondError(w, http.StatusUnprocessableEntity, "invalid_tax_rate", rateErr.Error())
		return true
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, service.ErrUnknownPurchasableType):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrOrderImmutable),
		errors.Is(err, domain.ErrAlreadyPurchased),
		errors.Is(err, domain.ErrStaleOrder):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	default:
		return false
	}

	return true
}
