// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/salescrm/order-service/internal/model"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// stockError carries the offending product and shortfall alongside the
// generic error fields.
type stockError struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
	Shortfall int64  `json:"shortfall"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", ve.Error())
		return
	}
	var ise *model.InsufficientStockError
	if errors.As(err, &ise) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(stockError{
			Error:     "insufficient_stock",
			Details:   ise.Error(),
			ProductID: ise.ProductID,
			Requested: ise.Requested,
			Available: ise.Available,
			Shortfall: ise.Shortfall(),
		})
		return
	}
	switch {
	case errors.Is(err, model.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, model.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, "email_taken", err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
